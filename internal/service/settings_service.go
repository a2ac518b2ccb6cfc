package service

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

// SettingsService holds the user settings in memory and writes every
// change through to the repository. Loading merges the persisted file
// over defaults and writes the merged result back, so the on-disk file
// always carries the full key set.
type SettingsService struct {
	// Dependencies (injected)
	logger *slog.Logger
	repo   ports.SettingsRepository
	appDir string

	// State
	mu       sync.Mutex
	settings domain.Settings
}

// NewSettingsService creates a settings service rooted at appDir.
func NewSettingsService(logger *slog.Logger, repo ports.SettingsRepository, appDir string) *SettingsService {
	s := &SettingsService{
		logger: logger,
		repo:   repo,
		appDir: appDir,
	}

	settings, err := repo.Load()
	if err != nil {
		logger.Warn("settings load failed, using defaults", slog.Any("error", err))
		settings = domain.DefaultSettings()
	}
	if strings.TrimSpace(settings.DownloadDir) == "" {
		settings.DownloadDir = filepath.Join(appDir, "downloads")
	}
	s.settings = settings

	if err := repo.Save(settings); err != nil {
		logger.Warn("settings write-back failed", slog.Any("error", err))
	}

	return s
}

// Current returns a copy of the settings.
func (s *SettingsService) Current() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Update applies fn to the settings under the lock and persists the result.
func (s *SettingsService) Update(fn func(*domain.Settings)) error {
	s.mu.Lock()
	fn(&s.settings)
	snapshot := s.settings
	s.mu.Unlock()

	return s.repo.Save(snapshot)
}

// DefaultVolume returns the startup volume as a 0.0-1.0 fraction.
func (s *SettingsService) DefaultVolume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := float64(s.settings.DefaultVolume) / 100
	return clampFloat(v, 0, 1)
}

// DownloadDir returns the effective download directory, created on demand.
// A configured path is honored (with ~ expanded); otherwise the app-dir
// default applies.
func (s *SettingsService) DownloadDir() string {
	s.mu.Lock()
	configured := strings.TrimSpace(s.settings.DownloadDir)
	useDefault := s.settings.UseDefaultDownloadDir
	s.mu.Unlock()

	dir := filepath.Join(s.appDir, "downloads")
	if !useDefault && configured != "" {
		dir = expandHome(configured)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Warn("download dir creation failed",
			slog.String("dir", dir), slog.Any("error", err))
	}
	return dir
}

// ImportsDir returns the app-managed imports directory, created on demand.
func (s *SettingsService) ImportsDir() string {
	dir := filepath.Join(s.appDir, "imports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Warn("imports dir creation failed",
			slog.String("dir", dir), slog.Any("error", err))
	}
	return dir
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
