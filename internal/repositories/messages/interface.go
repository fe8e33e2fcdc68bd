package messages

//go:generate mockgen -destination=mock/mock_repository.go -package=mockmessages -source=interface.go

import (
	"context"

	"github.com/tavernkeep/gamemaster/internal/entities"
)

// Repository defines the interface for narrative message storage.
// Messages are append-only.
type Repository interface {
	// Add appends a message to a room's history
	Add(ctx context.Context, msg *entities.Message) error

	// ListRecent returns the most recent messages for a room in
	// chronological order, up to limit
	ListRecent(ctx context.Context, roomID string, limit int) ([]*entities.Message, error)
}
