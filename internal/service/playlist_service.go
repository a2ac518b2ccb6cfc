package service

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

// PlaylistService owns the playlist ordering, navigation position, search
// filtering, per-song counters, and named playlist snapshots.
//
// The playlist is an ordered list of absolute file paths; the filtered
// view is derived from it and never feeds back into ordering or position.
type PlaylistService struct {
	// Dependencies (injected)
	logger *slog.Logger
	stats  ports.StatsRepository
	saved  ports.SavedPlaylistRepository
	bus    ports.EventBus

	// State
	mu       sync.Mutex
	playlist []string
	filtered []string
	index    int
	seed     string
	query    string
}

// NewPlaylistService creates a playlist service with an empty playlist.
func NewPlaylistService(
	logger *slog.Logger,
	stats ports.StatsRepository,
	saved ports.SavedPlaylistRepository,
	bus ports.EventBus,
) *PlaylistService {
	return &PlaylistService{
		logger: logger,
		stats:  stats,
		saved:  saved,
		bus:    bus,
	}
}

// canonicalOrder sorts paths case-insensitively by full path, giving the
// reference ordering every shuffle permutes. Sorting is stable so paths
// differing only in case keep their input order.
func canonicalOrder(paths []string) []string {
	out := slices.Clone(paths)
	slices.SortStableFunc(out, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return out
}

// SetPlaylist replaces the playlist with the playable subset of songs:
// entries that exist on disk and carry a supported audio extension.
// With shuffle set, the subset is put in canonical order and permuted by
// the seed (a random seed is generated when the given one is blank); the
// seed actually used is returned. Without shuffle the input order is kept.
//
// The navigation index resets to 0 and the search filter is re-applied.
func (s *PlaylistService) SetPlaylist(songs []string, shuffle bool, seed string) string {
	playable := lo.Filter(songs, func(path string, _ int) bool {
		if !domain.IsSupportedAudioFile(path) {
			return false
		}
		info, err := os.Stat(path)
		return err == nil && !info.IsDir()
	})

	usedSeed := ""
	if shuffle {
		usedSeed = domain.NormalizeSeed(seed)
		playable = domain.SeededShuffle(canonicalOrder(playable), usedSeed)
	}

	s.mu.Lock()
	s.playlist = playable
	s.index = 0
	s.seed = usedSeed
	s.refilterLocked()
	snapshot := slices.Clone(s.playlist)
	s.mu.Unlock()

	s.logger.Debug("playlist set",
		slog.Int("songs", len(snapshot)),
		slog.Bool("shuffled", shuffle))
	s.bus.Publish(domain.NewPlaylistUpdatedEvent(snapshot, 0, usedSeed))

	return usedSeed
}

// LoadFolder scans a folder for supported audio files (recursively when
// asked) and installs them as the playlist via SetPlaylist semantics.
// Returns domain.ErrNotADirectory when path is not a directory.
func (s *PlaylistService) LoadFolder(path string, shuffle bool, seed string, recursive bool) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return "", domain.ErrNotADirectory
	}

	var songs []string
	if recursive {
		walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				// Unreadable subtrees are skipped, not fatal.
				return nil
			}
			if !d.IsDir() && domain.IsSupportedAudioFile(p) {
				songs = append(songs, p)
			}
			return nil
		})
		if walkErr != nil {
			return "", walkErr
		}
	} else {
		entries, err := os.ReadDir(path)
		if err != nil {
			return "", err
		}
		for _, entry := range entries {
			if !entry.IsDir() && domain.IsSupportedAudioFile(entry.Name()) {
				songs = append(songs, filepath.Join(path, entry.Name()))
			}
		}
	}

	// Deterministic baseline order regardless of filesystem enumeration.
	songs = canonicalOrder(songs)

	return s.SetPlaylist(songs, shuffle, seed), nil
}

// Reshuffle re-permutes the current playlist content under a new seed,
// keeping the current track current: after the shuffle the index points at
// the same path when it is still present, otherwise 0. No-op on an empty
// playlist; returns the seed used (empty for the no-op).
func (s *PlaylistService) Reshuffle(seed string) string {
	s.mu.Lock()
	if len(s.playlist) == 0 {
		s.mu.Unlock()
		return ""
	}

	current := ""
	if s.index >= 0 && s.index < len(s.playlist) {
		current = s.playlist[s.index]
	}

	usedSeed := domain.NormalizeSeed(seed)
	s.playlist = domain.SeededShuffle(canonicalOrder(s.playlist), usedSeed)
	s.seed = usedSeed

	s.index = 0
	if current != "" {
		if at := slices.Index(s.playlist, current); at >= 0 {
			s.index = at
		}
	}

	s.refilterLocked()
	snapshot := slices.Clone(s.playlist)
	index := s.index
	s.mu.Unlock()

	s.bus.Publish(domain.NewPlaylistUpdatedEvent(snapshot, index, usedSeed))
	return usedSeed
}

// ApplySearch filters the visible playlist to entries whose file name
// contains the query, case-insensitively. A blank query restores the full
// view. The underlying order and navigation position are untouched.
func (s *PlaylistService) ApplySearch(query string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = strings.ToLower(strings.TrimSpace(query))
	s.refilterLocked()
	return slices.Clone(s.filtered)
}

// refilterLocked rebuilds the filtered view from the playlist and the
// current query. Caller holds s.mu.
func (s *PlaylistService) refilterLocked() {
	if s.query == "" {
		s.filtered = slices.Clone(s.playlist)
		return
	}
	s.filtered = lo.Filter(s.playlist, func(path string, _ int) bool {
		return strings.Contains(strings.ToLower(filepath.Base(path)), s.query)
	})
}

// NextIndex advances the navigation index by one, wrapping from the last
// track to the first, and returns the new index. Returns 0 on an empty
// playlist.
func (s *PlaylistService) NextIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.playlist) == 0 {
		s.index = 0
		return 0
	}
	s.index = (s.index + 1) % len(s.playlist)
	return s.index
}

// PrevIndex moves the navigation index back by one, wrapping from the
// first track to the last, and returns the new index. Returns 0 on an
// empty playlist.
func (s *PlaylistService) PrevIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.playlist) == 0 {
		s.index = 0
		return 0
	}
	s.index = (s.index - 1 + len(s.playlist)) % len(s.playlist)
	return s.index
}

// SetIndex points navigation at the given position. Out-of-range values
// are ignored.
func (s *PlaylistService) SetIndex(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index >= 0 && index < len(s.playlist) {
		s.index = index
	}
}

// CurrentIndex returns the navigation index.
func (s *PlaylistService) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// CurrentTrack returns the path at the navigation index, or empty on an
// empty playlist.
func (s *PlaylistService) CurrentTrack() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index < 0 || s.index >= len(s.playlist) {
		return ""
	}
	return s.playlist[s.index]
}

// Playlist returns a copy of the full playlist order.
func (s *PlaylistService) Playlist() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.playlist)
}

// Filtered returns a copy of the search-filtered view.
func (s *PlaylistService) Filtered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.filtered)
}

// Seed returns the shuffle seed in effect, empty when unshuffled.
func (s *PlaylistService) Seed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seed
}

// UpdateStat increments one play counter for the song and persists the
// whole stats mapping immediately. Counters are keyed by file name, so
// same-named files in different folders share them. Unknown kinds are
// ignored without error.
func (s *PlaylistService) UpdateStat(path string, kind domain.StatKind) error {
	if !kind.Valid() {
		s.logger.Debug("ignoring unknown stat kind", slog.String("kind", string(kind)))
		return nil
	}

	name := filepath.Base(path)

	stats, err := s.stats.Load()
	if err != nil {
		return err
	}

	entry := stats[name]
	switch kind {
	case domain.StatStarted:
		entry.Started++
	case domain.StatPlayed:
		entry.Played++
	case domain.StatSkipped:
		entry.Skipped++
	}
	stats[name] = entry

	if err := s.stats.Save(stats); err != nil {
		return err
	}

	s.bus.Publish(domain.NewStatUpdatedEvent(name, kind, entry))
	return nil
}

// StatsFor returns the counters for the song, zero-valued when the song
// has never been counted.
func (s *PlaylistService) StatsFor(path string) (domain.SongStats, error) {
	stats, err := s.stats.Load()
	if err != nil {
		return domain.SongStats{}, err
	}
	return stats[filepath.Base(path)], nil
}

// normalizePlaylistName collapses internal whitespace runs and trims the
// edges, so " My   Mix " and "My Mix" address the same snapshot.
func normalizePlaylistName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// SaveCurrentPlaylist stores the current playlist order under the given
// name, replacing any snapshot with the same normalized name. Returns
// domain.ErrInvalidPlaylistName for blank names and
// domain.ErrEmptyPlaylist when there is nothing to save.
func (s *PlaylistService) SaveCurrentPlaylist(name string) error {
	normalized := normalizePlaylistName(name)
	if normalized == "" {
		return domain.ErrInvalidPlaylistName
	}

	s.mu.Lock()
	snapshot := slices.Clone(s.playlist)
	s.mu.Unlock()

	if len(snapshot) == 0 {
		return domain.ErrEmptyPlaylist
	}

	saved, err := s.saved.Load()
	if err != nil {
		return err
	}
	saved[normalized] = snapshot

	if err := s.saved.Save(saved); err != nil {
		return err
	}

	s.logger.Debug("playlist saved",
		slog.String("name", normalized),
		slog.Int("songs", len(snapshot)))
	return nil
}

// LoadSavedPlaylist installs a stored snapshot as the current playlist via
// SetPlaylist semantics (entries that vanished from disk are dropped).
// Returns domain.ErrPlaylistNotFound for unknown names.
func (s *PlaylistService) LoadSavedPlaylist(name string, shuffle bool, seed string) (string, error) {
	normalized := normalizePlaylistName(name)

	saved, err := s.saved.Load()
	if err != nil {
		return "", err
	}

	songs, ok := saved[normalized]
	if !ok {
		return "", domain.ErrPlaylistNotFound
	}

	return s.SetPlaylist(songs, shuffle, seed), nil
}

// DeleteSavedPlaylist removes a stored snapshot. Returns
// domain.ErrPlaylistNotFound for unknown names.
func (s *PlaylistService) DeleteSavedPlaylist(name string) error {
	normalized := normalizePlaylistName(name)

	saved, err := s.saved.Load()
	if err != nil {
		return err
	}

	if _, ok := saved[normalized]; !ok {
		return domain.ErrPlaylistNotFound
	}
	delete(saved, normalized)

	return s.saved.Save(saved)
}

// ListSavedPlaylists returns the stored snapshot names sorted
// case-insensitively.
func (s *PlaylistService) ListSavedPlaylists() ([]string, error) {
	saved, err := s.saved.Load()
	if err != nil {
		return nil, err
	}

	names := lo.Keys(saved)
	slices.SortFunc(names, func(a, b string) int {
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	})
	return names, nil
}
