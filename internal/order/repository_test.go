package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/marketplace-backend/internal/user"
)

func TestInMemoryRepository_UpdateIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository([]Order{{ID: "o1", Status: StatusProcessing}})

	first, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)

	first.Status = StatusTransferred
	saved, err := repo.Update(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1), saved.Version)

	second.Status = StatusRefundRequested
	_, err = repo.Update(ctx, second)
	assert.ErrorIs(t, err, ErrVersionConflict)

	stored, err := repo.GetByID(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, StatusTransferred, stored.Status)

	_, err = repo.Update(ctx, Order{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryRepository_Listings(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	delivered := base.Add(72 * time.Hour)
	deliveredLater := base.Add(96 * time.Hour)

	repo := NewInMemoryRepository([]Order{
		{ID: "a", ShopID: "s1", User: user.Snapshot{ID: "u1"}, CreatedAt: base},
		{ID: "b", ShopID: "s2", User: user.Snapshot{ID: "u1"}, CreatedAt: base.Add(time.Hour), DeliveredAt: &delivered},
		{ID: "c", ShopID: "s1", User: user.Snapshot{ID: "u2"}, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "d", ShopID: "s1", User: user.Snapshot{ID: "u2"}, CreatedAt: base.Add(-time.Hour), DeliveredAt: &deliveredLater},
	})

	ids := func(orders []Order) []string {
		out := make([]string, len(orders))
		for i, o := range orders {
			out[i] = o.ID
		}
		return out
	}

	byUser, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids(byUser))

	byShop, err := repo.ListByShop(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "d"}, ids(byShop))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "b", "c", "a"}, ids(all))

	none, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
