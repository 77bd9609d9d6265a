package store

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "goalist"

// DefaultDataDir returns the OS-appropriate default data directory for goalist.
//
//   - macOS:   ~/Library/Application Support/goalist
//   - Linux:   $XDG_DATA_HOME/goalist (fallback ~/.local/share/goalist)
//   - Windows: %LOCALAPPDATA%\goalist (fallback %APPDATA%\goalist)
func DefaultDataDir() string {
	return defaultDataDirForOS(runtime.GOOS)
}

// DefaultCacheDir returns the directory for the local mirror.
//
//   - macOS:   ~/Library/Caches/goalist
//   - Linux:   $XDG_CACHE_HOME/goalist (fallback ~/.cache/goalist)
//   - Windows: <data dir>\cache
func DefaultCacheDir() string {
	return defaultCacheDirForOS(runtime.GOOS)
}

func defaultDataDirForOS(goos string) string {
	home, _ := os.UserHomeDir()

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName)
		}
		if dir := os.Getenv("APPDATA"); dir != "" {
			return filepath.Join(dir, appName)
		}
		return filepath.Join(home, appName)
	default: // linux, freebsd, etc.
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return filepath.Join(dir, appName)
		}
		return filepath.Join(home, ".local", "share", appName)
	}
}

func defaultCacheDirForOS(goos string) string {
	home, _ := os.UserHomeDir()

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", appName)
	case "windows":
		return filepath.Join(defaultDataDirForOS(goos), "cache")
	default:
		if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
			return filepath.Join(dir, appName)
		}
		return filepath.Join(home, ".cache", appName)
	}
}
