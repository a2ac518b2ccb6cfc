package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

// StatsRepository implements ports.StatsRepository over a stats.json file.
//
// Thread-safe: all operations protected by sync.Mutex.
type StatsRepository struct {
	path string
	mu   sync.Mutex
}

// NewStatsRepository creates a stats repository rooted at dir.
func NewStatsRepository(dir string) *StatsRepository {
	return &StatsRepository{
		path: filepath.Join(dir, "stats.json"),
	}
}

// Load reads the full stats mapping.
// A missing or unreadable file yields an empty map, never an error.
func (r *StatsRepository) Load() (map[string]domain.SongStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return map[string]domain.SongStats{}, nil
	}

	var stats map[string]domain.SongStats
	if err := json.Unmarshal(data, &stats); err != nil || stats == nil {
		return map[string]domain.SongStats{}, nil
	}
	return stats, nil
}

// Save rewrites the full stats mapping atomically.
func (r *StatsRepository) Save(stats map[string]domain.SongStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return writeJSON(r.path, stats)
}

// Verify interface implementation
var _ ports.StatsRepository = (*StatsRepository)(nil)
