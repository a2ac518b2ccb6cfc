package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/sabrinth/player/internal/ports"
)

// SavedPlaylistRepository implements ports.SavedPlaylistRepository over a
// saved_playlists.json file. JSON object keys are emitted in sorted order,
// which gives the required name-sorted, diffable layout for free.
//
// Thread-safe: all operations protected by sync.Mutex.
type SavedPlaylistRepository struct {
	path string
	mu   sync.Mutex
}

// NewSavedPlaylistRepository creates a saved-playlist repository rooted at dir.
func NewSavedPlaylistRepository(dir string) *SavedPlaylistRepository {
	return &SavedPlaylistRepository{
		path: filepath.Join(dir, "saved_playlists.json"),
	}
}

// Load reads all saved playlists. Missing or corrupt files yield an empty
// map; entries that are not string lists are dropped.
func (r *SavedPlaylistRepository) Load() (map[string][]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return map[string][]string{}, nil
	}

	var raw map[string][]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[string][]string{}, nil
	}

	out := make(map[string][]string, len(raw))
	for name, entries := range raw {
		paths := make([]string, 0, len(entries))
		for _, entry := range entries {
			if s, ok := entry.(string); ok {
				paths = append(paths, s)
			}
		}
		if len(paths) > 0 {
			out[name] = paths
		}
	}
	return out, nil
}

// Save rewrites the full mapping atomically.
func (r *SavedPlaylistRepository) Save(playlists map[string][]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return writeJSON(r.path, playlists)
}

// Verify interface implementation
var _ ports.SavedPlaylistRepository = (*SavedPlaylistRepository)(nil)
