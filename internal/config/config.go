package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// FetchWorkers bounds the number of concurrent deck downloads per batch.
const FetchWorkers = 12

// DatabaseFile returns the path of the SQLite database, creating parent
// directories as needed. DECKSYNC_DATA_DIR overrides the XDG data home.
func DatabaseFile() (string, error) {
	if dir := os.Getenv("DECKSYNC_DATA_DIR"); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		return filepath.Join(dir, "decksync.db"), nil
	}
	return xdg.DataFile("decksync/decksync.db")
}

// LogFile returns the path of the append-only log file in the state dir.
func LogFile() (string, error) {
	return xdg.StateFile("decksync/decksync.log")
}

// ExpandPath resolves ~ and returns an absolute path.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
