package npcs

//go:generate mockgen -destination=mock/mock_repository.go -package=mocknpcs -source=interface.go

import (
	"context"

	"github.com/tavernkeep/gamemaster/internal/entities"
)

// Repository defines the interface for NPC storage
type Repository interface {
	// Create stores a new NPC
	Create(ctx context.Context, npc *entities.NPC) error

	// Get retrieves an NPC by ID
	Get(ctx context.Context, id string) (*entities.NPC, error)

	// GetByRoom retrieves all NPCs in a room
	GetByRoom(ctx context.Context, roomID string) ([]*entities.NPC, error)

	// Update saves changes to an existing NPC
	Update(ctx context.Context, npc *entities.NPC) error
}
