package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

// SettingsRepository implements ports.SettingsRepository over a
// settings.json file.
//
// Thread-safe: all operations protected by sync.Mutex.
type SettingsRepository struct {
	path string
	mu   sync.Mutex
}

// NewSettingsRepository creates a settings repository rooted at dir.
func NewSettingsRepository(dir string) *SettingsRepository {
	return &SettingsRepository{
		path: filepath.Join(dir, "settings.json"),
	}
}

// Load reads the persisted settings merged over defaults.
// Unknown keys in the file are ignored; missing keys keep their defaults.
func (r *SettingsRepository) Load() (domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings := domain.DefaultSettings()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return settings, nil
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return domain.DefaultSettings(), nil
	}
	return settings, nil
}

// Save rewrites the settings file atomically.
func (r *SettingsRepository) Save(settings domain.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return writeJSON(r.path, settings)
}

// Verify interface implementation
var _ ports.SettingsRepository = (*SettingsRepository)(nil)
