// ABOUTME: XDG-based config and state path resolution for natdash.
// ABOUTME: Checks XDG_CONFIG_HOME / XDG_STATE_HOME, falls back to ~/.config/natdash and ~/.local/state/natdash.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "natdash"

// DefaultConfigDir returns the directory holding config.yaml.
// It checks XDG_CONFIG_HOME first, then falls back to ~/.config/natdash.
func DefaultConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".config", appName), nil
}

// DefaultConfigPath returns the config file consulted when --config is not given.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DefaultStateDir returns the directory for logs.
// It checks XDG_STATE_HOME first, then falls back to ~/.local/state/natdash.
func DefaultStateDir() (string, error) {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".local", "state", appName), nil
}

// DefaultLogPath returns the log file used by the interactive views.
func DefaultLogPath() (string, error) {
	dir, err := DefaultStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".log"), nil
}
