package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-money/tally/internal/model"
)

func TestSuggestCategory(t *testing.T) {
	categories := []model.Category{
		{ID: 1, Name: "Food"},
		{ID: 2, Name: "Transport"},
		{ID: 3, Name: "Entertainment"},
	}

	t.Run("typo finds the nearest name", func(t *testing.T) {
		assert.Equal(t, "Food", suggestCategory("Fod", categories))
		assert.Equal(t, "Transport", suggestCategory("transporr", categories))
	})

	t.Run("exact match needs no suggestion", func(t *testing.T) {
		assert.Empty(t, suggestCategory("Food", categories))
		assert.Empty(t, suggestCategory("food", categories))
	})

	t.Run("distant names are not suggested", func(t *testing.T) {
		assert.Empty(t, suggestCategory("Rent", categories))
		assert.Empty(t, suggestCategory("Groceries", categories))
	})

	t.Run("no categories, no suggestion", func(t *testing.T) {
		assert.Empty(t, suggestCategory("Food", nil))
	})
}

func TestParseDateFlag(t *testing.T) {
	t.Run("empty means unset", func(t *testing.T) {
		d, err := parseDateFlag("", "from")
		require.NoError(t, err)
		assert.True(t, d.IsZero())
	})

	t.Run("canonical form parses", func(t *testing.T) {
		d, err := parseDateFlag("2025-12-01", "from")
		require.NoError(t, err)
		assert.Equal(t, "2025-12-01", d.Format(model.DateLayout))
	})

	t.Run("bad value names the flag", func(t *testing.T) {
		_, err := parseDateFlag("12/01/2025", "from")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--from")
	})
}
