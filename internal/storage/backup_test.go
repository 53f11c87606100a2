package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-money/tally/internal/model"
	"github.com/tally-money/tally/internal/service"
)

func TestBackupCreateAndList(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_, err := store.AddTransaction(ctx, model.Transaction{
		Description: "Coffee", Amount: 2.5, Date: date(t, "2025-12-01"), Category: "Food",
	})
	require.NoError(t, err)

	bm, err := store.NewBackupManager()
	require.NoError(t, err)

	info, err := bm.Create(ctx, "before-test", "unit test", false)
	require.NoError(t, err)
	assert.Equal(t, "before-test", info.Tag)
	assert.Equal(t, 1, info.Transactions)
	assert.Equal(t, 1, info.Categories)
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Positive(t, info.FileSize)
	assert.False(t, info.Auto)

	// Same tag twice is refused.
	_, err = bm.Create(ctx, "before-test", "", false)
	assert.ErrorIs(t, err, ErrBackupExists)

	backups, err := bm.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "before-test", backups[0].Tag)
}

func TestBackupTagValidation(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	bm, err := store.NewBackupManager()
	require.NoError(t, err)

	for _, tag := range []string{"a/b", `a\b`, "../escape"} {
		_, createErr := bm.Create(ctx, tag, "", false)
		assert.ErrorIs(t, createErr, ErrBadBackupTag, tag)
	}
}

func TestBackupRestore(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "tally.db")

	store, err := NewSQLiteStore(dbPath, slog.Default())
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))

	id, err := store.AddTransaction(ctx, model.Transaction{
		Description: "Keep me", Amount: 10, Date: date(t, "2025-06-01"), Category: "Other",
	})
	require.NoError(t, err)

	bm, err := store.NewBackupManager()
	require.NoError(t, err)
	_, err = bm.Create(ctx, "snap", "", false)
	require.NoError(t, err)

	// Mutate after the snapshot, then roll the file back.
	require.NoError(t, store.DeleteTransaction(ctx, id))
	require.NoError(t, bm.Restore(ctx, "snap"))

	// Restore already closed the handle; a second close is harmless.
	require.NoError(t, store.Close())

	// Restore closed the handle; reopen and verify the snapshot state.
	reopened, err := NewSQLiteStore(dbPath, slog.Default())
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	got, err := reopened.GetTransaction(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Keep me", got.Description)
}

func TestBackupRestore_Unknown(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	bm, err := store.NewBackupManager()
	require.NoError(t, err)

	assert.ErrorIs(t, bm.Restore(ctx, "missing"), ErrBackupNotFound)
	assert.ErrorIs(t, bm.Restore(ctx, "../escape"), ErrBadBackupTag)

	// These failures happen before Restore closes the handle; the store
	// stays open, so the caller must close it.
	count, err := store.CountTransactions(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
	require.NoError(t, store.Close())
}

func TestBackupDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	bm, err := store.NewBackupManager()
	require.NoError(t, err)

	_, err = bm.Create(ctx, "gone-soon", "", false)
	require.NoError(t, err)

	require.NoError(t, bm.Delete(ctx, "gone-soon"))

	backups, err := bm.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, backups)

	assert.ErrorIs(t, bm.Delete(ctx, "gone-soon"), ErrBackupNotFound)
}

func TestBackupPrune(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	bm, err := store.NewBackupManager()
	require.NoError(t, err)

	for _, tag := range []string{"one", "two", "three"} {
		_, createErr := bm.Create(ctx, tag, "", true)
		require.NoError(t, createErr)
		// Creation timestamps order the prune; keep them distinct.
		time.Sleep(10 * time.Millisecond)
	}

	pruned, err := bm.Prune(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, pruned)

	backups, err := bm.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, "three", backups[0].Tag)
}

func TestBackupBeforeCompaction(t *testing.T) {
	// The compact command's auto-backup path: snapshot, compact, and the
	// snapshot still holds the pre-compaction ids.
	ctx := context.Background()
	store := newTestStore(t)
	ids := make([]int64, 0, 3)
	for _, txn := range []model.Transaction{
		{Description: "a", Amount: 1, Date: date(t, "2025-01-01"), Category: "X"},
		{Description: "b", Amount: 2, Date: date(t, "2025-01-02"), Category: "X"},
		{Description: "c", Amount: 3, Date: date(t, "2025-01-03"), Category: "X"},
	} {
		id, err := store.AddTransaction(ctx, txn)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, store.DeleteTransaction(ctx, ids[0]))

	bm, err := store.NewBackupManager()
	require.NoError(t, err)
	_, err = bm.Create(ctx, "pre-compact", "", true)
	require.NoError(t, err)

	mapping, err := store.CompactTransactionIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, mapping, 2)

	got, err := store.ListTransactions(ctx, service.Filter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
