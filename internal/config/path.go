// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

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

	return os.ExpandEnv(path)
}

// DatabasePath returns the configured SQLite path, defaulting under the
// user's data directory.
func DatabasePath() string {
	path := viper.GetString("database.path")
	if path == "" {
		path = "$HOME/.local/share/camrecon/camrecon.db"
	}
	return ExpandPath(path)
}

// DataDir returns the configured settings directory holding the
// portfolio and property documents.
func DataDir() string {
	dir := viper.GetString("data.dir")
	if dir == "" {
		dir = "$HOME/.local/share/camrecon/settings"
	}
	return ExpandPath(dir)
}
