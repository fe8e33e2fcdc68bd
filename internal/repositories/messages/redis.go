package messages

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

// NewRedisRepository creates a new Redis-backed message repository
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
	return fmt.Sprintf("room:%s:gm_messages", roomID)
}

// Add appends a message to a room's history
func (r *redisRepo) Add(ctx context.Context, msg *entities.Message) error {
	if msg == nil {
		return apperr.InvalidArgument("message cannot be nil")
	}
	if msg.RoomID == "" {
		return apperr.InvalidArgument("message room ID is required")
	}
	if msg.Role != entities.RolePlayer && msg.Role != entities.RoleGM {
		return apperr.InvalidArgumentf("invalid sender role '%s'", msg.Role)
	}

	msg.CreatedAt = time.Now().UTC()

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := r.client.RPush(ctx, r.key(msg.RoomID), jsonData).Err(); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	return nil
}

// ListRecent returns the most recent messages for a room in chronological order
func (r *redisRepo) ListRecent(ctx context.Context, roomID string, limit int) ([]*entities.Message, error) {
	if roomID == "" {
		return nil, apperr.InvalidArgument("room ID is required")
	}
	if limit <= 0 {
		return nil, apperr.InvalidArgument("limit must be positive")
	}

	raw, err := r.client.LRange(ctx, r.key(roomID), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	msgs := make([]*entities.Message, 0, len(raw))
	for _, item := range raw {
		var msg entities.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}
		msgs = append(msgs, &msg)
	}

	return msgs, nil
}
