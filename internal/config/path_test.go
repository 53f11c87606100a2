package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Run("tilde prefix", func(t *testing.T) {
		assert.Equal(t, filepath.Join(home, "ledger.db"), ExpandPath("~/ledger.db"))
	})

	t.Run("bare tilde", func(t *testing.T) {
		assert.Equal(t, home, ExpandPath("~"))
	})

	t.Run("environment variables", func(t *testing.T) {
		t.Setenv("TALLY_TEST_DIR", "/data/tally")
		assert.Equal(t, "/data/tally/tally.db", ExpandPath("$TALLY_TEST_DIR/tally.db"))
	})

	t.Run("empty stays empty", func(t *testing.T) {
		assert.Equal(t, "", ExpandPath(""))
	})

	t.Run("plain path untouched", func(t *testing.T) {
		assert.Equal(t, "/tmp/tally.db", ExpandPath("/tmp/tally.db"))
	})
}
