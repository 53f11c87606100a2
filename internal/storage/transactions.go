package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tally-money/tally/internal/model"
	"github.com/tally-money/tally/internal/service"
)

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// transactionColumns is the projection shared by every transaction query.
// The LEFT JOIN tolerates orphaned category references: a missing category
// scans to an empty name.
const transactionColumns = `
	SELECT t.id, t.description, t.amount, t.date, COALESCE(c.name, '')
	FROM transactions t
	LEFT JOIN categories c ON t.category_id = c.id`

func scanTransaction(row scanner) (model.Transaction, error) {
	var t model.Transaction
	var date string
	if err := row.Scan(&t.ID, &t.Description, &t.Amount, &date, &t.Category); err != nil {
		return model.Transaction{}, err
	}

	parsed, err := model.ParseDate(date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("stored date %q is malformed: %w", date, err)
	}
	t.Date = parsed

	return t, nil
}

// buildPredicates converts a filter into WHERE clauses and their bound
// arguments. Values are always bound, never interpolated into the query.
func buildPredicates(f service.Filter) ([]string, []any) {
	var where []string
	var args []any

	if f.Category != "" {
		where = append(where, "c.name = ?")
		args = append(args, f.Category)
	}
	if !f.Since.IsZero() {
		where = append(where, "t.date >= ?")
		args = append(args, f.Since.Format(model.DateLayout))
	}
	if !f.Until.IsZero() {
		where = append(where, "t.date <= ?")
		args = append(args, f.Until.Format(model.DateLayout))
	}

	return where, args
}

// AddTransaction validates t, interns its category, inserts the row and
// returns the id the store assigned.
func (s *SQLiteStore) AddTransaction(ctx context.Context, t model.Transaction) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}

	categoryID, err := s.EnsureCategory(ctx, t.Category)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (description, amount, date, category_id)
		VALUES (?, ?, ?, ?)`,
		strings.TrimSpace(t.Description), t.Amount, t.DateString(), categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction id: %w", err)
	}

	s.logger.Debug("added transaction", "id", id, "category", t.Category)
	return id, nil
}

// GetTransaction retrieves a single transaction by id, with its category
// name resolved. It returns (nil, nil) when no such row exists.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, transactionColumns+` WHERE t.id = ?`, id)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &t, nil
}

// UpdateTransaction overwrites the full row identified by t.ID, interning
// the category as AddTransaction does. It returns ErrNotFound when no row
// matched the id.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if t.ID <= 0 {
		return fmt.Errorf("%w: transaction id %d", ErrNotFound, t.ID)
	}
	if err := t.Validate(); err != nil {
		return err
	}

	categoryID, err := s.EnsureCategory(ctx, t.Category)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET description = ?, amount = ?, date = ?, category_id = ?
		WHERE id = ?`,
		strings.TrimSpace(t.Description), t.Amount, t.DateString(), categoryID, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction id %d", ErrNotFound, t.ID)
	}

	return nil
}

// DeleteTransaction removes the row with the given id. It returns
// ErrNotFound unless a row was actually removed.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: transaction id %d", ErrNotFound, id)
	}

	s.logger.Debug("deleted transaction", "id", id)
	return nil
}

// ListTransactions returns transactions matching the filter, newest first.
// Equal dates are broken by id descending so the order is deterministic.
func (s *SQLiteStore) ListTransactions(ctx context.Context, f service.Filter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := transactionColumns
	where, args := buildPredicates(f)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.date DESC, t.id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	s.logger.Debug("listed transactions", "count", len(transactions))
	return transactions, nil
}

// CountTransactions returns the number of stored transactions.
func (s *SQLiteStore) CountTransactions(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// CategorySummary returns per-category amount totals and row counts for
// transactions matching the filter, largest total first. Totals are plain
// float64 sums; accumulated rounding is an accepted approximation.
func (s *SQLiteStore) CategorySummary(ctx context.Context, f service.Filter) ([]model.CategoryTotal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT COALESCE(c.name, '') AS category, SUM(t.amount) AS total, COUNT(*) AS n
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id`
	where, args := buildPredicates(f)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " GROUP BY category ORDER BY total DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query category summary: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []model.CategoryTotal
	for rows.Next() {
		var ct model.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", err)
		}
		totals = append(totals, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category summary: %w", err)
	}

	return totals, nil
}
