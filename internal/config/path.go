// Package config resolves application paths and export settings from viper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nextax/nextax/internal/receipts"
	"github.com/spf13/viper"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}

// DefaultDatabasePath is used when database.path is not configured.
const DefaultDatabasePath = "$HOME/.local/share/nextax/nextax.db"

// DatabasePath returns the expanded database path from database.path.
func DatabasePath() string {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = DefaultDatabasePath
	}
	return ExpandPath(dbPath)
}

// ReceiptsDir returns receipts.path, or the Receipts directory next to the database.
func ReceiptsDir(dbPath string) string {
	if dir := viper.GetString("receipts.path"); dir != "" {
		return ExpandPath(dir)
	}
	return filepath.Join(filepath.Dir(dbPath), receipts.DirName)
}
