package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-money/tally/internal/model"
)

// newTestStore opens a migrated store on a fresh temp-dir file.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "tally.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Logf("failed to close store: %v", closeErr)
		}
	})

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestNewSQLiteStore(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dirs", "tally.db")

		store, err := NewSQLiteStore(path, nil)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		assert.Equal(t, path, store.Path())
		_, err = os.Stat(filepath.Dir(path))
		assert.NoError(t, err)
	})

	t.Run("rejects blank path", func(t *testing.T) {
		_, err := NewSQLiteStore("   ", nil)
		assert.ErrorIs(t, err, ErrEmptyString)
	})

	t.Run("in-memory store works", func(t *testing.T) {
		store, err := NewSQLiteStore(":memory:", nil)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()

		require.NoError(t, store.Migrate(context.Background()))
	})
}

func TestMigrate(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		store := newTestStore(t)

		// Second run must be a no-op.
		require.NoError(t, store.Migrate(ctx))

		var version int
		require.NoError(t, store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version))
		assert.Equal(t, ExpectedSchemaVersion, version)
	})

	t.Run("creates exactly the expected tables, empty", func(t *testing.T) {
		store := newTestStore(t)

		for _, table := range []string{"transactions", "categories"} {
			var n int
			require.NoError(t, store.db.QueryRowContext(ctx,
				"SELECT COUNT(*) FROM "+table).Scan(&n))
			assert.Zero(t, n, table)
		}

		rows, err := store.db.QueryContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
		require.NoError(t, err)
		defer func() { _ = rows.Close() }()

		tables := map[string]bool{}
		for rows.Next() {
			var name string
			require.NoError(t, rows.Scan(&name))
			tables[name] = true
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, map[string]bool{"transactions": true, "categories": true}, tables)
	})

	t.Run("indexes exist", func(t *testing.T) {
		store := newTestStore(t)

		var n int
		require.NoError(t, store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name LIKE 'idx_transactions_%'`).Scan(&n))
		assert.Equal(t, 2, n)
	})
}
