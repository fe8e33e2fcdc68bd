package characters

import (
	"context"
	"strings"
	"sync"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
)

// InMemoryRepository is an in-memory implementation of the character repository
// Useful for testing and development
type InMemoryRepository struct {
	mu         sync.RWMutex
	characters map[string]*entities.Character
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		characters: make(map[string]*entities.Character),
	}
}

// Create stores a new character
func (r *InMemoryRepository) Create(ctx context.Context, char *entities.Character) error {
	if char == nil {
		return apperr.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return apperr.InvalidArgument("character ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[char.ID]; exists {
		return apperr.AlreadyExistsf("character with ID '%s' already exists", char.ID).
			WithMeta("character_id", char.ID)
	}

	// Store a copy to avoid external modifications
	charCopy := *char
	r.characters[char.ID] = &charCopy

	return nil
}

// Get retrieves a character by ID
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*entities.Character, error) {
	if id == "" {
		return nil, apperr.InvalidArgument("character ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	char, exists := r.characters[id]
	if !exists {
		return nil, apperr.NotFoundf("character with ID '%s' not found", id).
			WithMeta("character_id", id)
	}

	charCopy := *char
	return &charCopy, nil
}

// GetByRoom retrieves all characters in a room
func (r *InMemoryRepository) GetByRoom(ctx context.Context, roomID string) ([]*entities.Character, error) {
	if roomID == "" {
		return nil, apperr.InvalidArgument("room ID is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*entities.Character
	for _, char := range r.characters {
		if char.RoomID == roomID {
			charCopy := *char
			result = append(result, &charCopy)
		}
	}

	return result, nil
}

// GetByName retrieves a character in a room by display name
func (r *InMemoryRepository) GetByName(ctx context.Context, roomID, name string) (*entities.Character, error) {
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
func (r *InMemoryRepository) Update(ctx context.Context, char *entities.Character) error {
	if char == nil {
		return apperr.InvalidArgument("character cannot be nil")
	}
	if char.ID == "" {
		return apperr.InvalidArgument("character ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[char.ID]; !exists {
		return apperr.NotFoundf("character with ID '%s' not found", char.ID).
			WithMeta("character_id", char.ID)
	}

	charCopy := *char
	r.characters[char.ID] = &charCopy

	return nil
}

// Delete removes a character
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperr.InvalidArgument("character ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.characters[id]; !exists {
		return apperr.NotFoundf("character with ID '%s' not found", id).
			WithMeta("character_id", id)
	}

	delete(r.characters, id)
	return nil
}
