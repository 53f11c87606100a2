package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tally-money/tally/internal/model"
)

// defaultCategories is the baseline set interned into a fresh store.
var defaultCategories = []string{
	"Salary", "Rent", "Food", "Transport", "Entertainment", "Utilities", "Other",
}

// ListCategories returns all categories ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name
		FROM categories
		ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	s.logger.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// GetCategoryByName returns the category with the given name, or (nil, nil)
// when no such category exists.
func (s *SQLiteStore) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	var cat model.Category
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name
		FROM categories
		WHERE name = ?`, name).Scan(&cat.ID, &cat.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &cat, nil
}

// EnsureCategory resolves a category name to its stable id, interning the
// name on first use. Names are trimmed; a blank name is an error. The
// INSERT OR IGNORE plus re-lookup makes the intern safe against another
// writer inserting the same name between our statements.
func (s *SQLiteStore) EnsureCategory(ctx context.Context, name string) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	name = strings.TrimSpace(name)
	if err := validateString(name, "name"); err != nil {
		return 0, err
	}

	return s.ensureCategoryTx(ctx, s.db, name)
}

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLiteStore) ensureCategoryTx(ctx context.Context, q execer, name string) (int64, error) {
	if _, err := q.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, name); err != nil {
		return 0, fmt.Errorf("failed to intern category: %w", err)
	}

	// LastInsertId is meaningless when the insert was ignored, so always
	// resolve the id with a lookup.
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = ?`, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve category %q: %w", name, err)
	}

	return id, nil
}

// SeedDefaultCategories interns the default category set. It is idempotent
// and safe to run on every startup.
func (s *SQLiteStore) SeedDefaultCategories(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	seeded := 0
	for _, name := range defaultCategories {
		res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories (name) VALUES (?)`, name)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			seeded += int(n)
		}
	}

	if seeded > 0 {
		s.logger.Info("seeded default categories", "count", seeded)
	}
	return nil
}
