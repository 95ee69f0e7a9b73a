// Package config loads WealthEase settings from viper, the environment and defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}

// DefaultDatabasePath is where the SQLite store lives unless configured otherwise.
func DefaultDatabasePath() string {
	return ExpandPath("~/.local/share/wealthease/wealthease.db")
}

// DefaultConfigDir holds config.yaml and an optional .env file.
func DefaultConfigDir() string {
	return ExpandPath("~/.config/wealthease")
}
