package characters

//go:generate mockgen -destination=mock/mock_repository.go -package=mockcharacters -source=interface.go

import (
	"context"

	"github.com/tavernkeep/gamemaster/internal/entities"
)

// Repository defines the interface for character storage
type Repository interface {
	// Create stores a new character
	Create(ctx context.Context, char *entities.Character) error

	// Get retrieves a character by ID
	Get(ctx context.Context, id string) (*entities.Character, error)

	// GetByRoom retrieves all characters in a room
	GetByRoom(ctx context.Context, roomID string) ([]*entities.Character, error)

	// GetByName retrieves a character in a room by display name
	GetByName(ctx context.Context, roomID, name string) (*entities.Character, error)

	// Update saves changes to an existing character
	Update(ctx context.Context, char *entities.Character) error

	// Delete removes a character
	Delete(ctx context.Context, id string) error
}
