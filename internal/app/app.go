// Package app provides application-level orchestration and dependency injection.
// It wires the playback, playlist, metadata, and settings components together
// and owns the controller behavior that connects them: counting stats,
// advancing the playlist when a track completes, and caching resolved
// metadata.
package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sabrinth/player/internal/adapter/audio/ffmpeg"
	otodev "github.com/sabrinth/player/internal/adapter/audio/oto"
	"github.com/sabrinth/player/internal/adapter/eventbus"
	"github.com/sabrinth/player/internal/adapter/metadata/ffmpegart"
	"github.com/sabrinth/player/internal/adapter/metadata/ffprobe"
	"github.com/sabrinth/player/internal/adapter/metadata/nativetag"
	"github.com/sabrinth/player/internal/adapter/repository/jsonfile"
	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/logger"
	"github.com/sabrinth/player/internal/ports"
	"github.com/sabrinth/player/internal/service"
)

// Application is the root structure holding all wired dependencies.
// Construction follows constructor-based dependency injection; the struct
// doubles as the playback controller.
type Application struct {
	// Core dependencies
	logger *slog.Logger
	appDir string

	// Infrastructure
	eventBus ports.EventBus

	// Services
	playback *service.PlaybackService
	playlist *service.PlaylistService
	metadata *service.MetadataService
	settings *service.SettingsService

	// Metadata cache, fed by resolution events. Only entries from the
	// newest batch generation are accepted.
	cacheMu        sync.Mutex
	metadataCache  map[string]domain.AudioMetadata
	artCache       map[string][]byte
	lastGeneration uint64

	subscriptions []domain.SubscriptionID
}

// Config holds application configuration.
type Config struct {
	// AppDir overrides the per-user data directory (empty for the default).
	AppDir string

	// LogLevel controls logging verbosity.
	LogLevel slog.Level

	// Collaborator overrides for testing; nil selects the production
	// adapter.
	Decoder      ports.Decoder
	Devices      ports.DeviceOpener
	Prober       ports.Prober
	TagReader    ports.TagReader
	ArtExtractor ports.ArtExtractor
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	return Config{LogLevel: logger.DefaultConfig().Level}
}

// NewApplication creates an application with all dependencies wired.
func NewApplication(config Config) (*Application, error) {
	app := &Application{
		metadataCache: make(map[string]domain.AudioMetadata),
		artCache:      make(map[string][]byte),
	}

	app.logger = logger.NewLogger(logger.Config{Level: config.LogLevel, Format: "text"})

	app.appDir = config.AppDir
	if app.appDir == "" {
		app.appDir = jsonfile.ResolveAppDir()
	}
	app.logger.Info("initializing application", slog.String("app_dir", app.appDir))

	// Event bus
	syncBus := eventbus.NewSyncEventBus()
	syncBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	app.eventBus = syncBus

	// Collaborators
	decoder := config.Decoder
	if decoder == nil {
		decoder = ffmpeg.NewDecoder()
	}
	devices := config.Devices
	if devices == nil {
		devices = otodev.NewDeviceOpener()
	}
	prober := config.Prober
	if prober == nil {
		prober = ffprobe.NewProber()
	}
	tagReader := config.TagReader
	if tagReader == nil {
		tagReader = nativetag.NewReader()
	}
	artExtractor := config.ArtExtractor
	if artExtractor == nil {
		artExtractor = ffmpegart.NewExtractor()
	}

	// Repositories
	statsRepo := jsonfile.NewStatsRepository(app.appDir)
	savedRepo := jsonfile.NewSavedPlaylistRepository(app.appDir)
	settingsRepo := jsonfile.NewSettingsRepository(app.appDir)

	// Services
	app.settings = service.NewSettingsService(
		app.logger.With(slog.String("service", "settings")),
		settingsRepo,
		app.appDir,
	)

	app.playback = service.NewPlaybackService(
		app.logger.With(slog.String("service", "playback")),
		decoder,
		devices,
		app.eventBus,
	)
	app.playback.SetVolume(app.settings.DefaultVolume())

	app.playlist = service.NewPlaylistService(
		app.logger.With(slog.String("service", "playlist")),
		statsRepo,
		savedRepo,
		app.eventBus,
	)

	app.metadata = service.NewMetadataService(
		app.logger.With(slog.String("service", "metadata")),
		prober,
		tagReader,
		artExtractor,
		app.eventBus,
	)

	app.subscribeControllerEvents()

	return app, nil
}

// subscribeControllerEvents wires the cross-component behavior: natural
// completion counts a play and advances the playlist, and metadata
// resolution events feed the cache.
func (a *Application) subscribeControllerEvents() {
	a.subscriptions = append(a.subscriptions,
		a.eventBus.Subscribe(domain.EventTrackCompleted, a.onTrackCompleted),
		a.eventBus.Subscribe(domain.EventMetadataResolved, a.onMetadataResolved),
	)
}

// onTrackCompleted runs on the playback service's dispatcher goroutine,
// never on the playback goroutine itself, so starting the next track here
// is safe.
func (a *Application) onTrackCompleted(event domain.Event) {
	completed, ok := event.(domain.TrackCompletedEvent)
	if !ok {
		return
	}

	if err := a.playlist.UpdateStat(completed.Path, domain.StatPlayed); err != nil {
		a.logger.Warn("play counter update failed", slog.Any("error", err))
	}

	if len(a.playlist.Playlist()) == 0 {
		return
	}

	a.playlist.NextIndex()
	next := a.playlist.CurrentTrack()
	if next == "" {
		return
	}

	if err := a.playback.LoadAndPlay(context.Background(), next, 0); err != nil {
		a.logger.Warn("autoplay of next track failed",
			slog.String("path", next), slog.Any("error", err))
	}
}

func (a *Application) onMetadataResolved(event domain.Event) {
	resolved, ok := event.(domain.MetadataResolvedEvent)
	if !ok {
		return
	}

	a.cacheMu.Lock()
	defer a.cacheMu.Unlock()

	// Results from a superseded batch are stale; drop them.
	if resolved.Generation < a.lastGeneration {
		return
	}
	a.lastGeneration = resolved.Generation

	a.metadataCache[resolved.Key] = resolved.Metadata
	if resolved.Art != nil {
		a.artCache[resolved.Key] = resolved.Art
	}
}

// LoadFolder loads a folder into the playlist, applying the user's
// shuffle and recursion settings, and kicks off metadata resolution for
// the result. Returns the shuffle seed in effect.
func (a *Application) LoadFolder(ctx context.Context, path, seed string) (string, error) {
	settings := a.settings.Current()

	usedSeed, err := a.playlist.LoadFolder(path, settings.ShuffleOnLoad, seed, settings.RecursiveScan)
	if err != nil {
		return "", err
	}

	a.RefreshMetadata(ctx)

	if settings.AutoplayOnLoad && len(a.playlist.Playlist()) > 0 {
		if err := a.PlayCurrent(ctx); err != nil {
			a.logger.Warn("autoplay on load failed", slog.Any("error", err))
		}
	}
	return usedSeed, nil
}

// PlayCurrent starts the track at the playlist position, counting a start.
func (a *Application) PlayCurrent(ctx context.Context) error {
	path := a.playlist.CurrentTrack()
	if path == "" {
		return domain.ErrEmptyPlaylist
	}

	if err := a.playlist.UpdateStat(path, domain.StatStarted); err != nil {
		a.logger.Warn("start counter update failed", slog.Any("error", err))
	}
	return a.playback.LoadAndPlay(ctx, path, 0)
}

// PlayNext skips forward. A track cut short by the skip is counted as
// skipped, not played.
func (a *Application) PlayNext(ctx context.Context) error {
	a.countSkipIfPlaying()
	a.playlist.NextIndex()
	return a.PlayCurrent(ctx)
}

// PlayPrevious skips backward, with the same skip accounting as PlayNext.
func (a *Application) PlayPrevious(ctx context.Context) error {
	a.countSkipIfPlaying()
	a.playlist.PrevIndex()
	return a.PlayCurrent(ctx)
}

func (a *Application) countSkipIfPlaying() {
	if !a.playback.IsPlaying() {
		return
	}
	if path := a.playback.CurrentPath(); path != "" {
		if err := a.playlist.UpdateStat(path, domain.StatSkipped); err != nil {
			a.logger.Warn("skip counter update failed", slog.Any("error", err))
		}
	}
}

// RefreshMetadata starts a background metadata batch for the current
// playlist, superseding any batch still running.
func (a *Application) RefreshMetadata(ctx context.Context) {
	a.metadata.ResolveBatch(ctx, a.playlist.Playlist())
}

// MetadataFor returns the cached metadata for a track. Uncached tracks are
// resolved synchronously and cached.
func (a *Application) MetadataFor(ctx context.Context, path string) domain.AudioMetadata {
	a.cacheMu.Lock()
	if meta, ok := a.metadataCache[path]; ok {
		a.cacheMu.Unlock()
		return meta
	}
	a.cacheMu.Unlock()

	meta := a.metadata.Resolve(ctx, path)

	a.cacheMu.Lock()
	a.metadataCache[path] = meta
	a.cacheMu.Unlock()
	return meta
}

// ArtFor returns artwork for a track: cached or freshly extracted art, or
// the deterministic placeholder tile when the track has none.
func (a *Application) ArtFor(ctx context.Context, path string) []byte {
	a.cacheMu.Lock()
	if art, ok := a.artCache[path]; ok {
		a.cacheMu.Unlock()
		return art
	}
	a.cacheMu.Unlock()

	if art := a.metadata.ResolveArt(ctx, path); art != nil {
		a.cacheMu.Lock()
		a.artCache[path] = art
		a.cacheMu.Unlock()
		return art
	}

	return service.PlaceholderArt(a.MetadataFor(ctx, path).DisplayTitle())
}

// Playback returns the playback service.
func (a *Application) Playback() *service.PlaybackService { return a.playback }

// Playlist returns the playlist service.
func (a *Application) Playlist() *service.PlaylistService { return a.playlist }

// Metadata returns the metadata service.
func (a *Application) Metadata() *service.MetadataService { return a.metadata }

// Settings returns the settings service.
func (a *Application) Settings() *service.SettingsService { return a.settings }

// Logger returns the application logger.
func (a *Application) Logger() *slog.Logger { return a.logger }

// Shutdown gracefully shuts down the application.
// Services go down in reverse order of creation.
func (a *Application) Shutdown() {
	a.logger.Info("shutting down application")

	for _, id := range a.subscriptions {
		a.eventBus.Unsubscribe(id)
	}

	a.metadata.Shutdown()

	if err := a.playback.Shutdown(); err != nil {
		a.logger.Warn("playback shutdown failed", slog.Any("error", err))
	}

	if err := a.eventBus.Close(); err != nil {
		a.logger.Warn("event bus close failed", slog.Any("error", err))
	}

	a.logger.Info("application shutdown complete")
}
