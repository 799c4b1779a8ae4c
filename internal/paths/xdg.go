// Package paths resolves XDG base directories for config and state files.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName          = "hearsay"
	xdgConfigDirEnv  = "XDG_CONFIG_HOME"
	xdgStateDirEnv   = "XDG_STATE_HOME"
	defaultConfigDir = ".config"
	defaultStateDir  = ".local/state"
)

// ConfigDir returns the XDG config directory for this app without creating it.
// It follows XDG_CONFIG_HOME when set, otherwise falls back to
// os.UserConfigDir()/hearsay:
// - ~/.config/hearsay (Linux)
// - ~/Library/Application Support/hearsay (macOS)
// - %APPDATA%/hearsay (Windows)
func ConfigDir() (string, error) {
	if env := os.Getenv(xdgConfigDirEnv); env != "" {
		return filepath.Join(env, appName), nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, defaultConfigDir)
	}

	return filepath.Join(dir, appName), nil
}

// StateDir returns the XDG state directory for this app, creating it if
// necessary. It follows XDG_STATE_HOME when set, otherwise falls back to:
// - ~/.local/state/hearsay (Linux, MacOS)
// - %LOCALAPPDATA%/hearsay (Windows)
func StateDir() (string, error) {
	if env := os.Getenv(xdgStateDirEnv); env != "" {
		dir := filepath.Join(env, appName)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	var base string
	if runtime.GOOS == "windows" {
		ucd, err := os.UserCacheDir()
		if err == nil {
			base = ucd
		} else {
			base = filepath.Join(home, "AppData", "Local")
		}
	} else {
		base = filepath.Join(home, defaultStateDir)
	}

	dir := filepath.Join(base, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
