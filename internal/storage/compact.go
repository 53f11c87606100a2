package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// compactRow is one transaction as read for the rebuild. The category id
// is carried through untouched, including null and orphaned references.
type compactRow struct {
	date        string
	description string
	categoryID  sql.NullInt64
	id          int64
	amount      float64
}

// CompactTransactionIDs rebuilds the transactions table so ids run densely
// from 1 in the order of the old ids, eliminating gaps left by deletions.
// It returns the complete old-id to new-id mapping.
//
// The rebuild is strictly atomic: a shadow table is populated and swapped
// in place of the original inside a single transaction, and on any failure
// the transaction is rolled back, a nil map is returned, and the store is
// left exactly as it was.
//
// Compaction invalidates every externally held transaction id. Callers
// holding ids across this call (selections, bookmarks) must translate them
// through the returned mapping or re-fetch.
func (s *SQLiteStore) CompactTransactionIDs(ctx context.Context) (map[int64]int64, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin compaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Read everything up front: the single transaction connection cannot
	// interleave inserts with an open result set.
	oldRows, err := readCompactRows(ctx, tx)
	if err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `
		CREATE TABLE transactions_compact (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			description TEXT NOT NULL,
			amount REAL NOT NULL,
			date TEXT NOT NULL,
			category_id INTEGER REFERENCES categories(id)
		)`); err != nil {
		return nil, fmt.Errorf("failed to create shadow table: %w", err)
	}

	mapping := make(map[int64]int64, len(oldRows))
	for _, row := range oldRows {
		res, insErr := tx.ExecContext(ctx, `
			INSERT INTO transactions_compact (description, amount, date, category_id)
			VALUES (?, ?, ?, ?)`,
			row.description, row.amount, row.date, row.categoryID)
		if insErr != nil {
			return nil, fmt.Errorf("failed to copy transaction %d: %w", row.id, insErr)
		}

		newID, idErr := res.LastInsertId()
		if idErr != nil {
			return nil, fmt.Errorf("failed to get compacted id: %w", idErr)
		}
		mapping[row.id] = newID
	}

	// Swap the shadow table in, then restore the indexes the drop took
	// with it.
	swap := []string{
		`DROP TABLE transactions`,
		`ALTER TABLE transactions_compact RENAME TO transactions`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_category_id ON transactions(category_id)`,
	}
	for _, query := range swap {
		if _, err = tx.ExecContext(ctx, query); err != nil {
			return nil, fmt.Errorf("failed to swap in compacted table: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit compaction: %w", err)
	}
	committed = true

	s.logger.Info("compacted transaction ids", "rows", len(mapping))
	return mapping, nil
}

func readCompactRows(ctx context.Context, tx *sql.Tx) ([]compactRow, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id, description, amount, date, category_id
		FROM transactions
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions for compaction: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []compactRow
	for rows.Next() {
		var row compactRow
		if err := rows.Scan(&row.id, &row.description, &row.amount, &row.date, &row.categoryID); err != nil {
			return nil, fmt.Errorf("failed to scan transaction for compaction: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions for compaction: %w", err)
	}

	return out, nil
}
