package rooms

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

// NewRedisRepository creates a new Redis-backed room repository
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

func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("room:%s", id)
}

// Create stores a new room
func (r *redisRepo) Create(ctx context.Context, room *entities.Room) error {
	if room == nil {
		return apperr.InvalidArgument("room cannot be nil")
	}
	if room.ID == "" {
		return apperr.InvalidArgument("room ID is required")
	}

	exists, err := r.client.Exists(ctx, r.key(room.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check room existence: %w", err)
	}
	if exists > 0 {
		return apperr.AlreadyExistsf("room with ID '%s' already exists", room.ID).
			WithMeta("room_id", room.ID)
	}

	room.CreatedAt = time.Now().UTC()
	room.UpdatedAt = room.CreatedAt

	jsonData, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	if err := r.client.Set(ctx, r.key(room.ID), jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

// Get retrieves a room by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*entities.Room, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("room ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("room with ID '%s' not found", id).
				WithMeta("room_id", id)
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	var room entities.Room
	if err := json.Unmarshal([]byte(jsonData), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

// AddCharacter registers a character as a member of a room
func (r *redisRepo) AddCharacter(ctx context.Context, roomID, characterID string) error {
	if characterID == "" {
		return apperr.InvalidArgument("character ID is required")
	}

	room, err := r.Get(ctx, roomID)
	if err != nil {
		return err
	}

	for _, id := range room.CharacterIDs {
		if id == characterID {
			return nil
		}
	}

	room.CharacterIDs = append(room.CharacterIDs, characterID)
	room.UpdatedAt = time.Now().UTC()

	jsonData, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	if err := r.client.Set(ctx, r.key(room.ID), jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}

	return nil
}
