package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepoUpsertUpdatesInPlace(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	rec := Record{UserID: "user-1", CustomerID: "cus_1", SubscriptionID: "sub_1", PriceID: "price_a", CurrentPeriodEnd: time.Now().Add(time.Hour)}

	require.NoError(t, repo.Upsert(ctx, rec))
	first, err := repo.GetByUser(ctx, "user-1")
	require.NoError(t, err)

	rec.PriceID = "price_b"
	require.NoError(t, repo.Upsert(ctx, rec))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	second, err := repo.GetByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "price_b", second.PriceID)
}

func TestMemoryRepoDeleteByCustomer(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, Record{UserID: "user-1", CustomerID: "cus_1"}))
	require.NoError(t, repo.Upsert(ctx, Record{UserID: "user-2", CustomerID: "cus_2"}))

	n, err := repo.DeleteByCustomer(ctx, "cus_1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.DeleteByCustomer(ctx, "cus_1")
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = repo.GetByUser(ctx, "user-1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByUser(ctx, "user-2")
	assert.NoError(t, err)
}
