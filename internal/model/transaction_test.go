package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		Description: "Coffee",
		Amount:      2.5,
		Date:        time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		Category:    "Food",
	}

	t.Run("valid transaction passes", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	tests := []struct {
		mutate  func(*Transaction)
		wantErr error
		name    string
	}{
		{
			name:    "empty description",
			mutate:  func(tx *Transaction) { tx.Description = "" },
			wantErr: ErrEmptyDescription,
		},
		{
			name:    "whitespace description",
			mutate:  func(tx *Transaction) { tx.Description = "  \t " },
			wantErr: ErrEmptyDescription,
		},
		{
			name:    "zero amount",
			mutate:  func(tx *Transaction) { tx.Amount = 0 },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "NaN amount",
			mutate:  func(tx *Transaction) { tx.Amount = math.NaN() },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "infinite amount",
			mutate:  func(tx *Transaction) { tx.Amount = math.Inf(1) },
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "unset date",
			mutate:  func(tx *Transaction) { tx.Date = time.Time{} },
			wantErr: ErrInvalidDate,
		},
		{
			name:    "empty category",
			mutate:  func(tx *Transaction) { tx.Category = "   " },
			wantErr: ErrEmptyCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			assert.ErrorIs(t, tx.Validate(), tt.wantErr)
		})
	}

	t.Run("negative amounts are valid", func(t *testing.T) {
		tx := valid
		tx.Amount = -42.10
		assert.NoError(t, tx.Validate())
	})
}

func TestParseDate(t *testing.T) {
	t.Run("canonical form", func(t *testing.T) {
		d, err := ParseDate("2025-12-01")
		require.NoError(t, err)
		assert.Equal(t, 2025, d.Year())
		assert.Equal(t, time.December, d.Month())
		assert.Equal(t, 1, d.Day())
	})

	t.Run("surrounding whitespace tolerated", func(t *testing.T) {
		d, err := ParseDate(" 2025-12-01 ")
		require.NoError(t, err)
		assert.Equal(t, "2025-12-01", d.Format(DateLayout))
	})

	for _, bad := range []string{"", "not-a-date", "2025-13-01", "2025-02-30", "01/12/2025"} {
		t.Run("rejects "+bad, func(t *testing.T) {
			_, err := ParseDate(bad)
			assert.Error(t, err)
		})
	}
}

func TestDateString(t *testing.T) {
	tx := Transaction{Date: time.Date(2025, 3, 7, 15, 4, 5, 0, time.UTC)}
	assert.Equal(t, "2025-03-07", tx.DateString())
}
