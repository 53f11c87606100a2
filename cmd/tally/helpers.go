package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/spf13/viper"

	"github.com/tally-money/tally/internal/config"
	"github.com/tally-money/tally/internal/model"
	"github.com/tally-money/tally/internal/storage"
)

// openStore opens and migrates the ledger at the configured path, seeding
// the default categories when the file is created for the first time.
func openStore(ctx context.Context) (*storage.SQLiteStore, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath
	}
	dbPath = config.ExpandPath(dbPath)

	_, statErr := os.Stat(dbPath)
	firstRun := os.IsNotExist(statErr)

	store, err := storage.NewSQLiteStore(dbPath, slog.Default())
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	if firstRun {
		if err := store.SeedDefaultCategories(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
	}

	return store, nil
}

// closeStore closes the store, logging rather than failing on error.
func closeStore(store *storage.SQLiteStore) {
	if err := store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}
}

// suggestCategory returns the known category nearest to name when the
// distance looks like a typo, or "" when name matches exactly or nothing
// is close.
func suggestCategory(name string, categories []model.Category) string {
	const maxDistance = 2

	best := ""
	bestDist := maxDistance + 1
	lower := strings.ToLower(strings.TrimSpace(name))

	for _, c := range categories {
		existing := strings.ToLower(c.Name)
		if existing == lower {
			return ""
		}
		if d := levenshtein.ComputeDistance(lower, existing); d < bestDist {
			best, bestDist = c.Name, d
		}
	}

	if bestDist <= maxDistance {
		return best
	}
	return ""
}

// parseDateFlag parses an optional YYYY-MM-DD flag value; empty means
// unset.
func parseDateFlag(value, flag string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s value %q (want YYYY-MM-DD)", flag, value)
	}
	return d, nil
}

// confirm asks a y/N question on stdout and reads the answer.
func confirm(question string) bool {
	fmt.Printf("%s [y/N]: ", question)

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}
	return response == "y" || response == "Y"
}
