package npcs

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

// NewRedisRepository creates a new Redis-backed NPC repository
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
	return fmt.Sprintf("npc:%s", id)
}

func (r *redisRepo) roomNPCsKey(roomID string) string {
	return fmt.Sprintf("room:%s:npcs", roomID)
}

// Create stores a new NPC
func (r *redisRepo) Create(ctx context.Context, npc *entities.NPC) error {
	if npc == nil {
		return apperr.InvalidArgument("npc cannot be nil")
	}
	if npc.ID == "" {
		return apperr.InvalidArgument("npc ID is required")
	}
	if npc.RoomID == "" {
		return apperr.InvalidArgument("npc room ID is required")
	}

	exists, err := r.client.Exists(ctx, r.key(npc.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check npc existence: %w", err)
	}
	if exists > 0 {
		return apperr.AlreadyExistsf("npc with ID '%s' already exists", npc.ID).
			WithMeta("npc_id", npc.ID)
	}

	npc.CreatedAt = time.Now().UTC()
	npc.UpdatedAt = npc.CreatedAt

	jsonData, err := json.Marshal(npc)
	if err != nil {
		return fmt.Errorf("failed to marshal npc: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(npc.ID), jsonData, 0)
	pipe.SAdd(ctx, r.roomNPCsKey(npc.RoomID), npc.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to create npc: %w", err)
	}

	return nil
}

// Get retrieves an NPC by ID
func (r *redisRepo) Get(ctx context.Context, id string) (*entities.NPC, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("npc ID is required")
	}

	jsonData, err := r.client.Get(ctx, r.key(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("npc with ID '%s' not found", id).
				WithMeta("npc_id", id)
		}
		return nil, fmt.Errorf("failed to get npc: %w", err)
	}

	var npc entities.NPC
	if err := json.Unmarshal([]byte(jsonData), &npc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal npc: %w", err)
	}

	return &npc, nil
}

// GetByRoom retrieves all NPCs in a room
func (r *redisRepo) GetByRoom(ctx context.Context, roomID string) ([]*entities.NPC, error) {
	if roomID == "" {
		return nil, apperr.InvalidArgument("room ID is required")
	}

	ids, err := r.client.SMembers(ctx, r.roomNPCsKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room npcs: %w", err)
	}

	result := make([]*entities.NPC, 0, len(ids))
	for _, id := range ids {
		npc, err := r.Get(ctx, id)
		if err != nil {
			if apperr.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		result = append(result, npc)
	}

	return result, nil
}

// Update saves changes to an existing NPC
func (r *redisRepo) Update(ctx context.Context, npc *entities.NPC) error {
	if npc == nil {
		return apperr.InvalidArgument("npc cannot be nil")
	}
	if npc.ID == "" {
		return apperr.InvalidArgument("npc ID is required")
	}

	exists, err := r.client.Exists(ctx, r.key(npc.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check npc existence: %w", err)
	}
	if exists == 0 {
		return apperr.NotFoundf("npc with ID '%s' not found", npc.ID).
			WithMeta("npc_id", npc.ID)
	}

	npc.UpdatedAt = time.Now().UTC()

	jsonData, err := json.Marshal(npc)
	if err != nil {
		return fmt.Errorf("failed to marshal npc: %w", err)
	}

	if err := r.client.Set(ctx, r.key(npc.ID), jsonData, 0).Err(); err != nil {
		return fmt.Errorf("failed to update npc: %w", err)
	}

	return nil
}
