package rooms

import (
	"context"
	"sync"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the room repository
type InMemoryRepository struct {
	mu    sync.RWMutex
	rooms map[string]*entities.Room
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rooms: make(map[string]*entities.Room),
	}
}

// Create stores a new room
func (r *InMemoryRepository) Create(ctx context.Context, room *entities.Room) error {
	if room == nil {
		return apperr.InvalidArgument("room cannot be nil")
	}
	if room.ID == "" {
		return apperr.InvalidArgument("room ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[room.ID]; exists {
		return apperr.AlreadyExistsf("room with ID '%s' already exists", room.ID).
			WithMeta("room_id", room.ID)
	}

	roomCopy := *room
	roomCopy.CharacterIDs = append([]string(nil), room.CharacterIDs...)
	r.rooms[room.ID] = &roomCopy

	return nil
}

// Get retrieves a room by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*entities.Room, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("room ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	room, exists := r.rooms[id]
	if !exists {
		return nil, apperr.NotFoundf("room with ID '%s' not found", id).
			WithMeta("room_id", id)
	}

	roomCopy := *room
	roomCopy.CharacterIDs = append([]string(nil), room.CharacterIDs...)
	return &roomCopy, nil
}

// AddCharacter registers a character as a member of a room
func (r *InMemoryRepository) AddCharacter(ctx context.Context, roomID, characterID string) error {
	if characterID == "" {
		return apperr.InvalidArgument("character ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, exists := r.rooms[roomID]
	if !exists {
		return apperr.NotFoundf("room with ID '%s' not found", roomID).
			WithMeta("room_id", roomID)
	}

	for _, id := range room.CharacterIDs {
		if id == characterID {
			return nil
		}
	}

	room.CharacterIDs = append(room.CharacterIDs, characterID)
	return nil
}
