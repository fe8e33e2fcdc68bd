package rooms

//go:generate mockgen -destination=mock/mock_repository.go -package=mockrooms -source=interface.go

import (
	"context"

	"github.com/tavernkeep/gamemaster/internal/entities"
)

// Repository defines the interface for room storage
type Repository interface {
	// Create stores a new room
	Create(ctx context.Context, room *entities.Room) error

	// Get retrieves a room by ID
	Get(ctx context.Context, id string) (*entities.Room, error)

	// AddCharacter registers a character as a member of a room
	AddCharacter(ctx context.Context, roomID, characterID string) error
}
