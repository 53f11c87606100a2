package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/tally-money/tally/internal/model"
	"github.com/tally-money/tally/internal/service"
)

// csvHeader is the exact column order of exported files. Import accepts
// the same names plus the aliases below; an id column is ignored because
// the store always assigns fresh ids.
var csvHeader = []string{"id", "description", "amount", "date", "category"}

// csvAliases lists the accepted spellings per logical import column, in
// lookup order. Matching is case-sensitive.
var csvAliases = map[string][]string{
	"description": {"description", "desc"},
	"amount":      {"amount"},
	"date":        {"date", "datetime"},
	"category":    {"category", "cat"},
}

// ExportCSV writes every stored transaction to w in the interchange
// format. An empty store produces a header-only file.
func (s *SQLiteStore) ExportCSV(ctx context.Context, w io.Writer) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	transactions, err := s.ListTransactions(ctx, service.Filter{})
	if err != nil {
		return fmt.Errorf("failed to load transactions for export: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, t := range transactions {
		record := []string{
			strconv.FormatInt(t.ID, 10),
			t.Description,
			strconv.FormatFloat(t.Amount, 'f', -1, 64),
			t.DateString(),
			t.Category,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}

	s.logger.Info("exported transactions", "count", len(transactions))
	return nil
}

// ExportCSVFile exports to a file at path, creating parent directories as
// needed.
func (s *SQLiteStore) ExportCSVFile(ctx context.Context, path string) error {
	if err := validateString(path, "path"); err != nil {
		return err
	}

	f, err := os.Create(path) // #nosec G304 -- path is the caller's chosen export destination
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := s.ExportCSV(ctx, f); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return nil
}

// resolveColumns maps the logical import columns to their indexes in the
// header row. Every logical column must be present under one of its
// accepted spellings.
func resolveColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	columns := make(map[string]int, len(csvAliases))
	for logical, aliases := range csvAliases {
		found := false
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				columns[logical] = i
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("CSV header is missing a %s column (accepted: %s)",
				logical, strings.Join(aliases, ", "))
		}
	}

	return columns, nil
}

// rowTransaction builds a Transaction from one CSV record. The value is
// not yet validated; the import loop runs it through the same invariants
// as manual entry.
func rowTransaction(record []string, columns map[string]int) (model.Transaction, error) {
	field := func(logical string) string {
		i := columns[logical]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var t model.Transaction
	t.Description = field("description")
	t.Category = field("category")

	if raw := field("amount"); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("amount %q is not a number: %w", raw, err)
		}
		t.Amount = amount
	}

	if raw := field("date"); raw != "" {
		date, err := model.ParseDate(raw)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("date %q: %w", raw, model.ErrInvalidDate)
		}
		t.Date = date
	}

	return t, nil
}

// ImportCSV reads transactions from r and inserts the valid ones. Every
// row passes the same Transaction invariants as manual entry; rows that
// fail validation or insertion are rejected, counted and reported in the
// result, never inserted. A failure of the reader itself ends the import
// with the partial result and an error. fn, when non-nil, receives
// running totals after each row.
func (s *SQLiteStore) ImportCSV(ctx context.Context, r io.Reader, fn service.ProgressFunc) (service.ImportResult, error) {
	var result service.ImportResult
	if err := validateContext(ctx); err != nil {
		return result, err
	}

	runID := uuid.NewString()
	logger := s.logger.With("import_run", runID)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return result, errors.New("CSV input is empty")
	}
	if err != nil {
		return result, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns, err := resolveColumns(header)
	if err != nil {
		return result, err
	}

	// Header is line 1; data starts at line 2.
	for line := 2; ; line++ {
		record, readErr := cr.Read()
		if readErr == io.EOF {
			break
		}

		// Parse errors are scoped to one row. Anything else comes from the
		// underlying reader and is sticky, so stop with what was imported.
		var parseErr *csv.ParseError
		if readErr != nil && !errors.As(readErr, &parseErr) {
			return result, fmt.Errorf("failed to read CSV input: %w", readErr)
		}

		reject := func(rowErr error) {
			result.Rejected++
			result.RowErrors = append(result.RowErrors, service.RowError{Line: line, Err: rowErr})
			logger.Debug("rejected CSV row", "line", line, "error", rowErr)
		}

		switch {
		case readErr != nil:
			reject(readErr)
		default:
			t, rowErr := rowTransaction(record, columns)
			if rowErr == nil {
				rowErr = t.Validate()
			}
			if rowErr == nil {
				_, rowErr = s.AddTransaction(ctx, t)
			}
			if rowErr != nil {
				reject(rowErr)
			} else {
				result.Imported++
			}
		}

		if fn != nil {
			fn(result.Imported, result.Rejected)
		}
	}

	logger.Info("imported transactions",
		"imported", result.Imported,
		"rejected", result.Rejected)
	return result, nil
}

// ImportCSVFile imports from a file at path. A missing or unreadable file
// is an error, not a zero count.
func (s *SQLiteStore) ImportCSVFile(ctx context.Context, path string, fn service.ProgressFunc) (service.ImportResult, error) {
	if err := validateString(path, "path"); err != nil {
		return service.ImportResult{}, err
	}

	f, err := os.Open(path) // #nosec G304 -- path is the caller's chosen import source
	if err != nil {
		return service.ImportResult{}, fmt.Errorf("failed to open import file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return s.ImportCSV(ctx, f, fn)
}
