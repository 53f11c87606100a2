package model

import (
	"errors"
	"math"
	"strings"
	"time"
)

// DateLayout is the canonical on-disk and on-wire date format (ISO 8601 day).
const DateLayout = "2006-01-02"

// Validation errors returned by Transaction.Validate.
var (
	ErrEmptyDescription = errors.New("transaction description is empty")
	ErrInvalidAmount    = errors.New("transaction amount must be a non-zero number")
	ErrInvalidDate      = errors.New("transaction date is not set")
	ErrEmptyCategory    = errors.New("transaction category is empty")
)

// Transaction represents a single dated entry in the ledger. Amounts are
// signed: positive for income, negative for spending.
type Transaction struct {
	Date        time.Time
	Description string
	Category    string
	Amount      float64
	ID          int64
}

// Validate reports whether the transaction satisfies the ledger invariants:
// a non-blank description, a finite non-zero amount, a set date, and a
// non-blank category name.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if t.Amount == 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// DateString returns the transaction date in the canonical layout.
func (t *Transaction) DateString() string {
	return t.Date.Format(DateLayout)
}

// ParseDate parses a date in the canonical layout, normalized to UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return d.UTC(), nil
}
