package npcs

import (
	"context"
	"sync"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the NPC repository
type InMemoryRepository struct {
	mu   sync.RWMutex
	npcs map[string]*entities.NPC
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		npcs: make(map[string]*entities.NPC),
	}
}

// Create stores a new NPC
func (r *InMemoryRepository) Create(ctx context.Context, npc *entities.NPC) error {
	if npc == nil {
		return apperr.InvalidArgument("npc cannot be nil")
	}
	if npc.ID == "" {
		return apperr.InvalidArgument("npc ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.npcs[npc.ID]; exists {
		return apperr.AlreadyExistsf("npc with ID '%s' already exists", npc.ID).
			WithMeta("npc_id", npc.ID)
	}

	npcCopy := *npc
	r.npcs[npc.ID] = &npcCopy

	return nil
}

// Get retrieves an NPC by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*entities.NPC, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("npc ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	npc, exists := r.npcs[id]
	if !exists {
		return nil, apperr.NotFoundf("npc with ID '%s' not found", id).
			WithMeta("npc_id", id)
	}

	npcCopy := *npc
	return &npcCopy, nil
}

// GetByRoom retrieves all NPCs in a room
func (r *InMemoryRepository) GetByRoom(ctx context.Context, roomID string) ([]*entities.NPC, error) {
	if roomID == "" {
		return nil, apperr.InvalidArgument("room ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entities.NPC
	for _, npc := range r.npcs {
		if npc.RoomID == roomID {
			npcCopy := *npc
			result = append(result, &npcCopy)
		}
	}

	return result, nil
}

// Update saves changes to an existing NPC
func (r *InMemoryRepository) Update(ctx context.Context, npc *entities.NPC) error {
	if npc == nil {
		return apperr.InvalidArgument("npc cannot be nil")
	}
	if npc.ID == "" {
		return apperr.InvalidArgument("npc ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.npcs[npc.ID]; !exists {
		return apperr.NotFoundf("npc with ID '%s' not found", npc.ID).
			WithMeta("npc_id", npc.ID)
	}

	npcCopy := *npc
	r.npcs[npc.ID] = &npcCopy

	return nil
}
