package messages

import (
	"context"
	"sync"
	"time"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the message repository
type InMemoryRepository struct {
	mu       sync.RWMutex
	messages map[string][]*entities.Message // roomID -> messages
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		messages: make(map[string][]*entities.Message),
	}
}

// Add appends a message to a room's history
func (r *InMemoryRepository) Add(ctx context.Context, msg *entities.Message) error {
	if msg == nil {
		return apperr.InvalidArgument("message cannot be nil")
	}
	if msg.RoomID == "" {
		return apperr.InvalidArgument("message room ID is required")
	}
	if msg.Role != entities.RolePlayer && msg.Role != entities.RoleGM {
		return apperr.InvalidArgumentf("invalid sender role '%s'", msg.Role)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	msgCopy := *msg
	msgCopy.CreatedAt = time.Now().UTC()
	r.messages[msg.RoomID] = append(r.messages[msg.RoomID], &msgCopy)

	return nil
}

// ListRecent returns the most recent messages for a room in chronological order
func (r *InMemoryRepository) ListRecent(ctx context.Context, roomID string, limit int) ([]*entities.Message, error) {
	if roomID == "" {
		return nil, apperr.InvalidArgument("room ID is required")
	}
	if limit <= 0 {
		return nil, apperr.InvalidArgument("limit must be positive")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.messages[roomID]
	start := 0
	if len(all) > limit {
		start = len(all) - limit
	}

	result := make([]*entities.Message, 0, len(all)-start)
	for _, msg := range all[start:] {
		msgCopy := *msg
		result = append(result, &msgCopy)
	}

	return result, nil
}
