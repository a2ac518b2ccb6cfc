// Package jsonfile persists stats, saved playlists, and settings as
// human-diffable JSON files. Every mutation rewrites the whole file using
// write-then-replace so a failed write never corrupts prior state.
package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sabrinth/player/internal/domain"
)

const appDirName = "SabrinthPlayer"

// ResolveAppDir returns the per-user application data directory, creating
// it if needed. If the system location is not writable, falls back to
// .sabrinth-player under the current working directory.
func ResolveAppDir() string {
	primary := systemAppDir()
	if err := os.MkdirAll(primary, 0o755); err == nil {
		probe := filepath.Join(primary, ".write_probe.tmp")
		if err := os.WriteFile(probe, []byte("ok"), 0o644); err == nil {
			_ = os.Remove(probe)
			return primary
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	fallback := filepath.Join(cwd, ".sabrinth-player")
	_ = os.MkdirAll(fallback, 0o755)
	return fallback
}

func systemAppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appDirName)
		}
		return filepath.Join(home, "AppData", "Roaming", appDirName)
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appDirName)
	default:
		return filepath.Join(home, ".local", "share", appDirName)
	}
}

// writeJSON marshals v with indentation and replaces path atomically:
// write to a sibling temp file, then rename over the target.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return domain.NewPersistenceError("save", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return domain.NewPersistenceError("save", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return domain.NewPersistenceError("save", path, err)
	}
	return nil
}
