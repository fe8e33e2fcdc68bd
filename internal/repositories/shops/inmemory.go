package shops

import (
	"context"
	"sync"
	"time"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the shop repository
type InMemoryRepository struct {
	mu    sync.RWMutex
	shops map[string]*entities.Shop // roomID -> shop
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		shops: make(map[string]*entities.Shop),
	}
}

// Set replaces the active shop for a room
func (r *InMemoryRepository) Set(ctx context.Context, shop *entities.Shop) error {
	if shop == nil {
		return apperr.InvalidArgument("shop cannot be nil")
	}
	if shop.RoomID == "" {
		return apperr.InvalidArgument("shop room ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	shopCopy := *shop
	shopCopy.UpdatedAt = time.Now().UTC()
	r.shops[shop.RoomID] = &shopCopy

	return nil
}

// Get retrieves the active shop for a room
func (r *InMemoryRepository) Get(ctx context.Context, roomID string) (*entities.Shop, error) {
	if roomID == "" {
		return nil, apperr.InvalidArgument("room ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	shop, exists := r.shops[roomID]
	if !exists {
		return nil, apperr.NotFoundf("no shop for room '%s'", roomID).
			WithMeta("room_id", roomID)
	}

	shopCopy := *shop
	return &shopCopy, nil
}
