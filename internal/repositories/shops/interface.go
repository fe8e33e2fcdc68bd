package shops

//go:generate mockgen -destination=mock/mock_repository.go -package=mockshops -source=interface.go

import (
	"context"

	"github.com/tavernkeep/gamemaster/internal/entities"
)

// Repository defines the interface for shop state storage.
// A room has at most one active shop; Set replaces it wholesale.
type Repository interface {
	// Set replaces the active shop for a room
	Set(ctx context.Context, shop *entities.Shop) error

	// Get retrieves the active shop for a room
	Get(ctx context.Context, roomID string) (*entities.Shop, error)
}
