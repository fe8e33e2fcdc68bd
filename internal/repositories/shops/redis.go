package shops

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

// redisRepo implements the Repository interface using Redis
type redisRepo struct {
	client redis.UniversalClient
}

// RedisRepoConfig holds configuration for the Redis repository
type RedisRepoConfig struct {
	Client redis.UniversalClient
}

// NewRedisRepository creates a new Redis-backed shop repository
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
	return fmt.Sprintf("room:%s:shop", roomID)
}

// Set replaces the active shop for a room
func (r *redisRepo) Set(ctx context.Context, shop *entities.Shop) error {
	if shop == nil {
		return apperr.InvalidArgument("shop cannot be nil")
	}
	if shop.RoomID == "" {
		return apperr.InvalidArgument("shop room ID is required")
	}

	shop.UpdatedAt = time.Now().UTC()

	jsonData, err := json.Marshal(shop)
	if err != nil {
		return fmt.Errorf("failed to marshal shop: %w", err)
	}

	if err := r.client.Set(ctx, r.key(shop.RoomID), jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to set shop: %w", err)
	}

	return nil
}

// Get retrieves the active shop for a room
func (r *redisRepo) Get(ctx context.Context, roomID string) (*entities.Shop, error) {
	if roomID == "" {
		return nil, apperr.InvalidArgument("room ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(roomID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("no shop for room '%s'", roomID).
				WithMeta("room_id", roomID)
		}
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}

	var shop entities.Shop
	if err := json.Unmarshal([]byte(jsonData), &shop); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shop: %w", err)
	}

	return &shop, nil
}
