package combatlog

//go:generate mockgen -destination=mock/mock_repository.go -package=mockcombatlog -source=interface.go

import (
	"context"

	"github.com/tavernkeep/gamemaster/internal/entities"
)

// Repository defines the interface for combat log storage.
// Entries are append-only and never mutated.
type Repository interface {
	// Add appends a combat log entry for a room
	Add(ctx context.Context, entry *entities.CombatLogEntry) error

	// ListByRoom returns the most recent entries for a room in
	// chronological order, up to limit
	ListByRoom(ctx context.Context, roomID string, limit int) ([]*entities.CombatLogEntry, error)

	// LatestRound returns the round number of the newest entry for a
	// room, 0 when the log is empty
	LatestRound(ctx context.Context, roomID string) (int, error)
}
