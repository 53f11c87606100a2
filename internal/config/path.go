// Package config provides path and default-location helpers over the
// viper-loaded settings.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDatabasePath is where the ledger lives unless database.path says
// otherwise.
const DefaultDatabasePath = "$HOME/.local/share/tally/tally.db"

// DefaultConfigDir is searched for config.yaml.
const DefaultConfigDir = "$HOME/.config/tally"

// ExpandPath expands a leading ~ and $VAR style environment variables in a
// file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
