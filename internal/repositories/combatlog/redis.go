package combatlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

// redisRepo implements the Repository interface using a Redis list per room
type redisRepo struct {
	client redis.UniversalClient
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
}

// NewRedisRepository creates a new Redis-backed combat log repository
func NewRedisRepository(cfg *RedisRepoConfig) Repository {
	if cfg == nil {
		panic("RedisRepoConfig cannot be nil")
	}
	if cfg.Client == nil {
		panic("Redis client cannot be nil")
	}

	return &redisRepo{
		client: cfg.Client,
	}
}

func (r *redisRepo) key(roomID string) string {
	return fmt.Sprintf("room:%s:combat_log", roomID)
}

// Add appends a combat log entry for a room
func (r *redisRepo) Add(ctx context.Context, entry *entities.CombatLogEntry) error {
	if entry == nil {
		return apperr.InvalidArgument("entry cannot be nil")
	}
	if entry.RoomID == "" {
		return apperr.InvalidArgument("entry room ID is required")
	}

	entry.CreatedAt = time.Now().UTC()

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal combat log entry: %w", err)
	}

	if err := r.client.RPush(ctx, r.key(entry.RoomID), string(jsonData)).Err(); err != nil {
		return fmt.Errorf("failed to append combat log entry: %w", err)
	}

	return nil
}

// ListByRoom returns the most recent entries for a room in chronological order
func (r *redisRepo) ListByRoom(ctx context.Context, roomID string, limit int) ([]*entities.CombatLogEntry, error) {
	if roomID == "" {
		return nil, apperr.InvalidArgument("room ID is required")
	}
	if limit <= 0 {
		return nil, apperr.InvalidArgument("limit must be positive")
	}

	raw, err := r.client.LRange(ctx, r.key(roomID), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read combat log: %w", err)
	}

	entries := make([]*entities.CombatLogEntry, 0, len(raw))
	for _, item := range raw {
		var entry entities.CombatLogEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal combat log entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

// LatestRound returns the round number of the newest entry for a room
func (r *redisRepo) LatestRound(ctx context.Context, roomID string) (int, error) {
	if roomID == "" {
		return 0, apperr.InvalidArgument("room ID is required")
	}

	raw, err := r.client.LRange(ctx, r.key(roomID), -1, -1).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read combat log: %w", err)
	}
	if len(raw) == 0 {
		return 0, nil
	}

	var entry entities.CombatLogEntry
	if err := json.Unmarshal([]byte(raw[0]), &entry); err != nil {
		return 0, fmt.Errorf("failed to unmarshal combat log entry: %w", err)
	}

	return entry.Round, nil
}
