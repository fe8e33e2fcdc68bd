package characters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
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

// NewRedisRepository creates a new Redis-backed character repository
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

// key generates the Redis key for a character
func (r *redisRepo) key(id string) string {
	return fmt.Sprintf("character:%s", id)
}

// roomCharactersKey generates the Redis key for a room's character set
func (r *redisRepo) roomCharactersKey(roomID string) string {
	return fmt.Sprintf("room:%s:characters", roomID)
}

// Create stores a new character
func (r *redisRepo) Create(ctx context.Context, char *entities.Character) error {
	if char == nil {
		return apperr.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return apperr.InvalidArgument("character ID is required")
	}
	if char.RoomID == "" {
		return apperr.InvalidArgument("character room ID is required")
	}

	exists, err := r.client.Exists(ctx, r.key(char.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check character existence: %w", err)
	}
	if exists > 0 {
		return apperr.AlreadyExistsf("character with ID '%s' already exists", char.ID).
			WithMeta("character_id", char.ID)
	}

	char.CreatedAt = time.Now().UTC()
	char.UpdatedAt = char.CreatedAt

	jsonData, err := json.Marshal(char)
	if err != nil {
		return fmt.Errorf("failed to marshal character: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(char.ID), string(jsonData), 0)
	pipe.SAdd(ctx, r.roomCharactersKey(char.RoomID), char.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create character: %w", err)
	}

	return nil
}

// Get retrieves a character by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*entities.Character, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("character ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("character with ID '%s' not found", id).
				WithMeta("character_id", id)
		}
		return nil, fmt.Errorf("failed to get character: %w", err)
	}

	var char entities.Character
	if err := json.Unmarshal([]byte(jsonData), &char); err != nil {
		return nil, fmt.Errorf("failed to unmarshal character: %w", err)
	}

	return &char, nil
}

// GetByRoom retrieves all characters in a room
func (r *redisRepo) GetByRoom(ctx context.Context, roomID string) ([]*entities.Character, error) {
	if roomID == "" {
		return nil, apperr.InvalidArgument("room ID is required")
	}

	ids, err := r.client.SMembers(ctx, r.roomCharactersKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room characters: %w", err)
	}

	chars := make([]*entities.Character, 0, len(ids))
	for _, id := range ids {
		char, err := r.Get(ctx, id)
		if err != nil {
			// Skip dangling index entries
			if apperr.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		chars = append(chars, char)
	}

	return chars, nil
}

// GetByName retrieves a character in a room by display name
func (r *redisRepo) GetByName(ctx context.Context, roomID, name string) (*entities.Character, error) {
	if name == "" {
		return nil, apperr.InvalidArgument("character name is required")
	}

	chars, err := r.GetByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	for _, char := range chars {
		if strings.EqualFold(char.Name, name) {
			return char, nil
		}
	}

	return nil, apperr.NotFoundf("character '%s' not found in room '%s'", name, roomID).
		WithMeta("room_id", roomID)
}

// Update saves changes to an existing character
func (r *redisRepo) Update(ctx context.Context, char *entities.Character) error {
	if char == nil {
		return apperr.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return apperr.InvalidArgument("character ID is required")
	}

	exists, err := r.client.Exists(ctx, r.key(char.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check character existence: %w", err)
	}
	if exists == 0 {
		return apperr.NotFoundf("character with ID '%s' not found", char.ID).
			WithMeta("character_id", char.ID)
	}

	char.UpdatedAt = time.Now().UTC()

	jsonData, err := json.Marshal(char)
	if err != nil {
		return fmt.Errorf("failed to marshal character: %w", err)
	}

	if err := r.client.Set(ctx, r.key(char.ID), string(jsonData), 0).Err(); err != nil {
		return fmt.Errorf("failed to update character: %w", err)
	}

	return nil
}

// Delete removes a character
func (r *redisRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperr.InvalidArgument("character ID is required")
	}

	char, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(id))
	pipe.SRem(ctx, r.roomCharactersKey(char.RoomID), id)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete character: %w", err)
	}

	return nil
}
