package combatlog

import (
	"context"
	"sync"
	"time"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the combat log repository
type InMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]*entities.CombatLogEntry // roomID -> entries
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		entries: make(map[string][]*entities.CombatLogEntry),
	}
}

// Add appends a combat log entry for a room
func (r *InMemoryRepository) Add(ctx context.Context, entry *entities.CombatLogEntry) error {
	if entry == nil {
		return apperr.InvalidArgument("entry cannot be nil")
	}
	if entry.RoomID == "" {
		return apperr.InvalidArgument("entry room ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entryCopy := *entry
	entryCopy.CreatedAt = time.Now().UTC()
	r.entries[entry.RoomID] = append(r.entries[entry.RoomID], &entryCopy)

	return nil
}

// ListByRoom returns the most recent entries for a room in chronological order
func (r *InMemoryRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]*entities.CombatLogEntry, error) {
	if roomID == "" {
		return nil, apperr.InvalidArgument("room ID is required")
	}
	if limit <= 0 {
		return nil, apperr.InvalidArgument("limit must be positive")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.entries[roomID]
	start := 0
	if len(all) > limit {
		start = len(all) - limit
	}

	result := make([]*entities.CombatLogEntry, 0, len(all)-start)
	for _, entry := range all[start:] {
		entryCopy := *entry
		result = append(result, &entryCopy)
	}

	return result, nil
}

// LatestRound returns the round number of the newest entry for a room
func (r *InMemoryRepository) LatestRound(ctx context.Context, roomID string) (int, error) {
	if roomID == "" {
		return 0, apperr.InvalidArgument("room ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.entries[roomID]
	if len(all) == 0 {
		return 0, nil
	}

	return all[len(all)-1].Round, nil
}
