package shops_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavernkeep/gamemaster/internal/entities"
	apperr "github.com/tavernkeep/gamemaster/internal/errors"
	"github.com/tavernkeep/gamemaster/internal/repositories/shops"
)

func TestSetReplacesWholesale(t *testing.T) {
	repo := shops.NewInMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, &entities.Shop{
		RoomID:  "room-1",
		NPCName: "Grimble",
		Items: []entities.ShopItem{
			{Name: "Dagger"},
			{Name: "Rope"},
		},
	}))

	require.NoError(t, repo.Set(ctx, &entities.Shop{
		RoomID:  "room-1",
		NPCName: "Mira",
		Items:   []entities.ShopItem{{Name: "Lantern"}},
	}))

	shop, err := repo.Get(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, "Mira", shop.NPCName)
	require.Len(t, shop.Items, 1, "old inventory fully replaced, not merged")
	assert.Equal(t, "Lantern", shop.Items[0].Name)
}

func TestGetMissingShop(t *testing.T) {
	repo := shops.NewInMemoryRepository()

	_, err := repo.Get(context.Background(), "room-404")
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}
