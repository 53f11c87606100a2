// Package service defines the contracts the command layer and any embedding
// UI consume. The storage package provides the canonical implementation.
package service

import (
	"context"
	"io"
	"time"

	"github.com/tally-money/tally/internal/model"
)

// Filter narrows transaction queries. Zero values mean "no constraint";
// the predicates that are set are ANDed together. Date bounds are inclusive
// and compare against the stored YYYY-MM-DD text.
type Filter struct {
	Since    time.Time
	Until    time.Time
	Category string
	Limit    int
}

// RowError records why a single CSV row was rejected during import.
type RowError struct {
	Err  error
	Line int
}

// ImportResult summarizes a CSV import run. Rejected rows are counted and
// reported, never inserted.
type ImportResult struct {
	RowErrors []RowError
	Imported  int
	Rejected  int
}

// ProgressFunc receives running totals after each imported or rejected row.
type ProgressFunc func(imported, rejected int)

// Storage defines the contract for the persistence gateway. All methods are
// synchronous and blocking; concurrency is the caller's responsibility.
type Storage interface {
	// Transaction operations
	AddTransaction(ctx context.Context, t model.Transaction) (int64, error)
	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, t model.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context, f Filter) ([]model.Transaction, error)
	CountTransactions(ctx context.Context) (int, error)
	CategorySummary(ctx context.Context, f Filter) ([]model.CategoryTotal, error)

	// Category operations
	ListCategories(ctx context.Context) ([]model.Category, error)
	EnsureCategory(ctx context.Context, name string) (int64, error)
	SeedDefaultCategories(ctx context.Context) error

	// CSV interchange
	ExportCSV(ctx context.Context, w io.Writer) error
	ExportCSVFile(ctx context.Context, path string) error
	ImportCSV(ctx context.Context, r io.Reader, fn ProgressFunc) (ImportResult, error)
	ImportCSVFile(ctx context.Context, path string, fn ProgressFunc) (ImportResult, error)

	// Maintenance
	CompactTransactionIDs(ctx context.Context) (map[int64]int64, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
