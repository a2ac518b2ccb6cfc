// Package ports defines repository interfaces for data persistence abstraction.
package ports

import (
	"github.com/sabrinth/player/internal/domain"
)

// StatsRepository persists the per-song play counters as one flat mapping
// keyed by file name. The whole mapping is rewritten on every mutation.
//
// Thread-safety: implementations must be thread-safe.
type StatsRepository interface {
	// Load reads the full stats mapping. A missing or corrupt file yields
	// an empty map, not an error.
	Load() (map[string]domain.SongStats, error)

	// Save rewrites the full stats mapping with write-then-replace
	// semantics so a failed write never corrupts prior state.
	Save(stats map[string]domain.SongStats) error
}

// SavedPlaylistRepository persists named playlist snapshots as a flat
// name-to-path-list mapping, sorted by name on write.
//
// Thread-safety: implementations must be thread-safe.
type SavedPlaylistRepository interface {
	// Load reads all saved playlists. A missing or corrupt file yields an
	// empty map; malformed entries are dropped.
	Load() (map[string][]string, error)

	// Save rewrites the full mapping with write-then-replace semantics.
	Save(playlists map[string][]string) error
}

// SettingsRepository persists user settings as one structured file.
//
// Thread-safety: implementations must be thread-safe.
type SettingsRepository interface {
	// Load reads the persisted settings merged over defaults.
	Load() (domain.Settings, error)

	// Save rewrites the settings file.
	Save(settings domain.Settings) error
}
