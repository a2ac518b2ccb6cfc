package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
	"github.com/sabrinth/player/internal/testutil"
)

// fakeDecoder serves a canned buffer, failing for paths listed in bad.
type fakeDecoder struct {
	buf domain.PCMBuffer
	bad map[string]bool
}

func (d *fakeDecoder) Decode(_ context.Context, path string) (domain.PCMBuffer, error) {
	if d.bad[path] {
		return domain.PCMBuffer{}, domain.NewDecodeError(filepath.Base(path), "bad file", errors.New("exit status 1"))
	}
	return d.buf, nil
}

type fakeDevice struct {
	delay time.Duration

	mu     sync.Mutex
	writes int
}

func (d *fakeDevice) Write(_ []byte) error {
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	d.mu.Lock()
	d.writes++
	d.mu.Unlock()
	return nil
}

func (d *fakeDevice) Close() error { return nil }

type fakeOpener struct {
	device *fakeDevice
}

func (o *fakeOpener) Open(_, _, _ int) (ports.OutputDevice, error) { return o.device, nil }
func (o *fakeOpener) Shutdown() error                              { return nil }

type fakeProber struct{}

func (fakeProber) Probe(_ context.Context, _ string) (*ports.ProbeResult, error) {
	return nil, domain.ErrSourceUnavailable
}

type fakeTagReader struct{}

func (fakeTagReader) ReadTags(_ string) (domain.PartialMetadata, error) {
	return domain.PartialMetadata{}, domain.ErrSourceUnavailable
}

type fakeArtExtractor struct{}

func (fakeArtExtractor) Extract(_ context.Context, _ string) ([]byte, error) {
	return nil, domain.ErrNoArt
}

// newTestApplication builds an application over a temp data dir with
// autoplay-on-load and shuffle-on-load disabled so tests control playback.
func newTestApplication(t *testing.T, decoder ports.Decoder, devices ports.DeviceOpener) *Application {
	t.Helper()

	appDir := t.TempDir()
	settings := `{"shuffle_on_load": false, "autoplay_on_load": false, "recursive_scan": true}`
	require.NoError(t, os.WriteFile(filepath.Join(appDir, "settings.json"), []byte(settings), 0o644))

	config := DefaultConfig()
	config.AppDir = appDir
	config.Decoder = decoder
	config.Devices = devices
	config.Prober = fakeProber{}
	config.TagReader = fakeTagReader{}
	config.ArtExtractor = fakeArtExtractor{}

	application, err := NewApplication(config)
	require.NoError(t, err)
	return application
}

func writeTracks(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		paths = append(paths, path)
	}
	return paths
}

func smallBuffer() domain.PCMBuffer {
	data := make([]byte, 1024*4)
	for i := range data {
		data[i] = byte(i % 50)
	}
	return domain.PCMBuffer{Data: data, FrameRate: 8000, Channels: 2, SampleWidth: 2}
}

// TestCompletionAdvancesPlaylist verifies the controller chain: a natural
// completion counts a play and starts the next track.
func TestCompletionAdvancesPlaylist(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	musicDir := t.TempDir()
	tracks := writeTracks(t, musicDir, "a.mp3", "b.mp3")

	// The second track fails to decode so the chain stops there instead
	// of cycling through the wrapped playlist forever.
	decoder := &fakeDecoder{buf: smallBuffer(), bad: map[string]bool{tracks[1]: true}}
	application := newTestApplication(t, decoder, &fakeOpener{device: &fakeDevice{}})
	defer application.Shutdown()

	_, err := application.LoadFolder(context.Background(), musicDir, "")
	require.NoError(t, err)
	require.Equal(t, tracks, application.Playlist().Playlist())

	require.NoError(t, application.PlayCurrent(context.Background()))

	// Wait for the first track to complete and the controller to advance.
	require.Eventually(t, func() bool {
		return application.Playlist().CurrentIndex() == 1
	}, 2*time.Second, 10*time.Millisecond)

	stats, err := application.Playlist().StatsFor(tracks[0])
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Started)
	assert.Equal(t, 1, stats.Played)
	assert.Zero(t, stats.Skipped)
}

// TestPlayNextCountsSkip verifies skipping a playing track counts it as
// skipped, not played.
func TestPlayNextCountsSkip(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	musicDir := t.TempDir()
	tracks := writeTracks(t, musicDir, "a.mp3", "b.mp3", "c.mp3")

	decoder := &fakeDecoder{buf: domain.PCMBuffer{
		Data:        make([]byte, 2048*4*50),
		FrameRate:   8000,
		Channels:    2,
		SampleWidth: 2,
	}}
	application := newTestApplication(t, decoder, &fakeOpener{device: &fakeDevice{delay: 2 * time.Millisecond}})
	defer application.Shutdown()

	_, err := application.LoadFolder(context.Background(), musicDir, "")
	require.NoError(t, err)

	require.NoError(t, application.PlayCurrent(context.Background()))
	require.NoError(t, application.PlayNext(context.Background()))

	assert.Equal(t, 1, application.Playlist().CurrentIndex())

	stats, err := application.Playlist().StatsFor(tracks[0])
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Started)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Played)

	application.Playback().Stop()
}

// TestMetadataForCaches verifies synchronous resolution is cached.
func TestMetadataForCaches(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	application := newTestApplication(t, &fakeDecoder{buf: smallBuffer()}, &fakeOpener{device: &fakeDevice{}})
	defer application.Shutdown()

	meta := application.MetadataFor(context.Background(), "/music/Some Band - Some Song.mp3")
	assert.Equal(t, "Some Band", meta.Artist)
	assert.Equal(t, "Some Song", meta.Title)

	again := application.MetadataFor(context.Background(), "/music/Some Band - Some Song.mp3")
	assert.Equal(t, meta, again)
}

// TestArtForFallsBackToPlaceholder verifies tracks without embedded art
// get the deterministic placeholder tile.
func TestArtForFallsBackToPlaceholder(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	application := newTestApplication(t, &fakeDecoder{buf: smallBuffer()}, &fakeOpener{device: &fakeDevice{}})
	defer application.Shutdown()

	art := application.ArtFor(context.Background(), "/music/a.mp3")
	require.NotEmpty(t, art)

	again := application.ArtFor(context.Background(), "/music/a.mp3")
	assert.Equal(t, art, again)
}

// TestPlayCurrentEmptyPlaylist verifies the guard on an empty playlist.
func TestPlayCurrentEmptyPlaylist(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	application := newTestApplication(t, &fakeDecoder{buf: smallBuffer()}, &fakeOpener{device: &fakeDevice{}})
	defer application.Shutdown()

	err := application.PlayCurrent(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmptyPlaylist)
}
