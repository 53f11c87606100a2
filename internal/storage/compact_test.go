package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-money/tally/internal/model"
	"github.com/tally-money/tally/internal/service"
)

func seedCompactFixture(t *testing.T, store *SQLiteStore) []int64 {
	t.Helper()
	ctx := context.Background()

	fixture := []model.Transaction{
		{Description: "Rent", Amount: -900, Date: date(t, "2025-01-01"), Category: "Rent"},
		{Description: "Coffee", Amount: -2.5, Date: date(t, "2025-01-02"), Category: "Food"},
		{Description: "Salary", Amount: 3000, Date: date(t, "2025-01-03"), Category: "Salary"},
		{Description: "Bus", Amount: -1.8, Date: date(t, "2025-01-04"), Category: "Transport"},
		{Description: "Cinema", Amount: -15, Date: date(t, "2025-01-05"), Category: "Entertainment"},
	}

	ids := make([]int64, 0, len(fixture))
	for _, txn := range fixture {
		id, err := store.AddTransaction(ctx, txn)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestCompactTransactionIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("full mapping with dense ids from 1", func(t *testing.T) {
		store := newTestStore(t)
		seedCompactFixture(t, store)

		mapping, err := store.CompactTransactionIDs(ctx)
		require.NoError(t, err)
		require.Len(t, mapping, 5)

		seen := map[int64]bool{}
		for _, newID := range mapping {
			assert.GreaterOrEqual(t, newID, int64(1))
			assert.False(t, seen[newID], "new ids must be distinct")
			seen[newID] = true
		}
	})

	t.Run("closes gaps left by deletions", func(t *testing.T) {
		store := newTestStore(t)
		ids := seedCompactFixture(t, store)

		require.NoError(t, store.DeleteTransaction(ctx, ids[1]))
		require.NoError(t, store.DeleteTransaction(ctx, ids[3]))

		before, err := store.ListTransactions(ctx, service.Filter{})
		require.NoError(t, err)

		mapping, err := store.CompactTransactionIDs(ctx)
		require.NoError(t, err)
		require.Len(t, mapping, 3)

		// Surviving rows keep their relative order and get ids 1..3.
		assert.EqualValues(t, 1, mapping[ids[0]])
		assert.EqualValues(t, 2, mapping[ids[2]])
		assert.EqualValues(t, 3, mapping[ids[4]])

		// Every non-id field is unchanged when re-fetched by new id.
		for _, old := range before {
			got, getErr := store.GetTransaction(ctx, mapping[old.ID])
			require.NoError(t, getErr)
			require.NotNil(t, got)
			assert.Equal(t, old.Description, got.Description)
			assert.InDelta(t, old.Amount, got.Amount, 0)
			assert.Equal(t, old.DateString(), got.DateString())
			assert.Equal(t, old.Category, got.Category)
		}

		count, err := store.CountTransactions(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})

	t.Run("new inserts continue after the compacted range", func(t *testing.T) {
		store := newTestStore(t)
		ids := seedCompactFixture(t, store)
		require.NoError(t, store.DeleteTransaction(ctx, ids[0]))

		_, err := store.CompactTransactionIDs(ctx)
		require.NoError(t, err)

		id, err := store.AddTransaction(ctx, model.Transaction{
			Description: "After", Amount: 1, Date: date(t, "2025-02-01"), Category: "Other",
		})
		require.NoError(t, err)
		assert.EqualValues(t, 5, id)
	})

	t.Run("restores the table indexes", func(t *testing.T) {
		store := newTestStore(t)
		seedCompactFixture(t, store)

		_, err := store.CompactTransactionIDs(ctx)
		require.NoError(t, err)

		var n int
		require.NoError(t, store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_transactions_%'`).Scan(&n))
		assert.Equal(t, 2, n)
	})

	t.Run("empty store yields an empty mapping", func(t *testing.T) {
		store := newTestStore(t)

		mapping, err := store.CompactTransactionIDs(ctx)
		require.NoError(t, err)
		assert.Empty(t, mapping)
	})

	t.Run("failure leaves no partial state", func(t *testing.T) {
		store := newTestStore(t)
		seedCompactFixture(t, store)
		require.NoError(t, store.Close())

		mapping, err := store.CompactTransactionIDs(ctx)
		require.Error(t, err)
		assert.Nil(t, mapping)
	})
}
