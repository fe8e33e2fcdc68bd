package messages_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
	"github.com/tavernkeep/gamemaster/internal/repositories/messages"
)

func TestAddRejectsUnknownRole(t *testing.T) {
	repo := messages.NewInMemoryRepository()

	err := repo.Add(context.Background(), &entities.Message{
		ID:     "m1",
		RoomID: "room-1",
		Role:   "narrator",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestListRecentReturnsTailInOrder(t *testing.T) {
	repo := messages.NewInMemoryRepository()
	ctx := context.Background()

	for i := 0; i < 40; i++ {
		require.NoError(t, repo.Add(ctx, &entities.Message{
			ID:      fmt.Sprintf("m%d", i),
			RoomID:  "room-1",
			Role:    entities.RolePlayer,
			Content: fmt.Sprintf("message %d", i),
		}))
	}

	recent, err := repo.ListRecent(ctx, "room-1", 30)
	require.NoError(t, err)
	require.Len(t, recent, 30)
	assert.Equal(t, "message 10", recent[0].Content, "oldest messages dropped")
	assert.Equal(t, "message 39", recent[29].Content, "chronological order preserved")
}

func TestListRecentEmptyRoom(t *testing.T) {
	repo := messages.NewInMemoryRepository()

	recent, err := repo.ListRecent(context.Background(), "room-1", 30)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
