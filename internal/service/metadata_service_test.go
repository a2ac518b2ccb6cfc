package service

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sabrinth/player/internal/adapter/eventbus"
	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/logger"
	"github.com/sabrinth/player/internal/ports"
	"github.com/sabrinth/player/internal/testutil"
)

// fakeProber serves canned probe results per path.
type fakeProber struct {
	results map[string]*ports.ProbeResult
	delay   time.Duration

	mu     sync.Mutex
	probes int
}

func (p *fakeProber) Probe(_ context.Context, path string) (*ports.ProbeResult, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	p.mu.Lock()
	p.probes++
	p.mu.Unlock()

	if result, ok := p.results[path]; ok {
		return result, nil
	}
	return nil, domain.ErrSourceUnavailable
}

type fakeTagReader struct {
	partial domain.PartialMetadata
	err     error
}

func (r *fakeTagReader) ReadTags(_ string) (domain.PartialMetadata, error) {
	return r.partial, r.err
}

type fakeArtExtractor struct {
	art []byte
}

func (e *fakeArtExtractor) Extract(_ context.Context, _ string) ([]byte, error) {
	if e.art == nil {
		return nil, domain.ErrNoArt
	}
	return e.art, nil
}

func newTestMetadata(prober ports.Prober, tagReader ports.TagReader, art ports.ArtExtractor) (*MetadataService, *eventbus.SyncEventBus) {
	bus := eventbus.NewSyncEventBus()
	svc := NewMetadataService(logger.NewTestLogger(), prober, tagReader, art, bus)
	return svc, bus
}

func probeWithTags(tags map[string]string) *ports.ProbeResult {
	return &ports.ProbeResult{Format: ports.ProbeFormat{Tags: tags}}
}

func TestFilenamePartial(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		artist string
		title  string
	}{
		{"plain", "/music/song.mp3", "", "song"},
		{"artist and title", "/music/Daft Punk - Harder.mp3", "Daft Punk", "Harder"},
		{"leading index", "/music/01 - Daft Punk - Harder.mp3", "Daft Punk", "Harder"},
		{"dotted index", "/music/12. Morning Sun.flac", "", "Morning Sun"},
		{"underscores", "/music/some_band_-_some_song.ogg", "some band", "some song"},
		{"em dash", "/music/Artist — Title.mp3", "Artist", "Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			partial := filenamePartial(tt.path)
			assert.Equal(t, tt.artist, partial.Artist)
			assert.Equal(t, tt.title, partial.Title)
		})
	}
}

// TestResolveFilenameOnly verifies resolution without any working source
// still yields a complete record with placeholders.
func TestResolveFilenameOnly(t *testing.T) {
	svc, _ := newTestMetadata(&fakeProber{}, nil, nil)

	meta := svc.Resolve(context.Background(), "/music/lonely track.mp3")

	assert.Equal(t, "lonely track", meta.Title)
	assert.Equal(t, domain.UnknownArtist, meta.Artist)
	assert.Equal(t, domain.UnknownAlbum, meta.Album)
	assert.Empty(t, meta.Year)
}

// TestResolveTagsOverrideFilename verifies the core precedence: embedded
// tags beat the filename guess.
func TestResolveTagsOverrideFilename(t *testing.T) {
	prober := &fakeProber{results: map[string]*ports.ProbeResult{
		"/music/Wrong Artist - Wrong Title.mp3": {
			Format: ports.ProbeFormat{
				Duration: "185.4",
				BitRate:  "192000",
				Tags: map[string]string{
					"TITLE":  "Real Title",
					"artist": "Real Artist",
					"Album":  "Real Album",
					"date":   "2019-03-21",
					"genre":  "House",
				},
			},
		},
	}}
	svc, _ := newTestMetadata(prober, nil, nil)

	meta := svc.Resolve(context.Background(), "/music/Wrong Artist - Wrong Title.mp3")

	assert.Equal(t, "Real Title", meta.Title)
	assert.Equal(t, "Real Artist", meta.Artist)
	assert.Equal(t, "Real Album", meta.Album)
	assert.Equal(t, "2019", meta.Year)
	assert.Equal(t, "House", meta.Genre)
	assert.InDelta(t, 185.4, meta.DurationSeconds, 0.001)
	assert.Equal(t, 192, meta.BitrateKbps)
}

// TestResolveStreamNumbersPreferred verifies the audio stream's duration
// and bit rate win over the container's.
func TestResolveStreamNumbersPreferred(t *testing.T) {
	prober := &fakeProber{results: map[string]*ports.ProbeResult{
		"/music/a.mp3": {
			Format: ports.ProbeFormat{Duration: "100.0", BitRate: "128000"},
			Streams: []ports.ProbeStream{
				{CodecType: "video"},
				{CodecType: "audio", Duration: "99.5", BitRate: "320000"},
			},
		},
	}}
	svc, _ := newTestMetadata(prober, nil, nil)

	meta := svc.Resolve(context.Background(), "/music/a.mp3")

	assert.InDelta(t, 99.5, meta.DurationSeconds, 0.001)
	assert.Equal(t, 320, meta.BitrateKbps)
}

// TestResolveTagReaderFallback verifies the in-process reader fills in
// when the probe contributes nothing.
func TestResolveTagReaderFallback(t *testing.T) {
	tagReader := &fakeTagReader{partial: domain.PartialMetadata{
		Title:  "Fallback Title",
		Artist: "Fallback Artist",
	}}
	svc, _ := newTestMetadata(&fakeProber{}, tagReader, nil)

	meta := svc.Resolve(context.Background(), "/music/a.mp3")

	assert.Equal(t, "Fallback Title", meta.Title)
	assert.Equal(t, "Fallback Artist", meta.Artist)
}

// TestResolveResplitsCombinedTitle verifies an "Artist - Title" packed
// into the title tag is split when no artist was found anywhere.
func TestResolveResplitsCombinedTitle(t *testing.T) {
	prober := &fakeProber{results: map[string]*ports.ProbeResult{
		"/music/x.mp3": probeWithTags(map[string]string{"title": "Massive Attack - Teardrop"}),
	}}
	svc, _ := newTestMetadata(prober, nil, nil)

	meta := svc.Resolve(context.Background(), "/music/x.mp3")

	assert.Equal(t, "Massive Attack", meta.Artist)
	assert.Equal(t, "Teardrop", meta.Title)
}

// TestResolveSidecarFillsGapsOnly verifies sidecar data fills fields the
// tags left empty but never overrides a tag-sourced field.
func TestResolveSidecarFillsGapsOnly(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "song.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("x"), 0o644))

	sidecar := `{
		"track": "Sidecar Title",
		"uploader": "Sidecar Uploader",
		"playlist_title": "Sidecar Album",
		"upload_date": "20200615",
		"categories": ["Music"],
		"duration": 240.5
	}`
	require.NoError(t, os.WriteFile(audio+".info.json", []byte(sidecar), 0o644))

	prober := &fakeProber{results: map[string]*ports.ProbeResult{
		audio: probeWithTags(map[string]string{"title": "Tagged Title"}),
	}}
	svc, _ := newTestMetadata(prober, nil, nil)

	meta := svc.Resolve(context.Background(), audio)

	// Tagged fields stay; everything else comes from the sidecar.
	assert.Equal(t, "Tagged Title", meta.Title)
	assert.Equal(t, "Sidecar Uploader", meta.Artist)
	assert.Equal(t, "Sidecar Album", meta.Album)
	assert.Equal(t, "2020", meta.Year)
	assert.Equal(t, "Music", meta.Genre)
	assert.InDelta(t, 240.5, meta.DurationSeconds, 0.001)
}

// TestSidecarGenre verifies the direct genre field is preferred and the
// categories list only fills in when it is absent.
func TestSidecarGenre(t *testing.T) {
	tests := []struct {
		name    string
		sidecar string
		want    string
	}{
		{"direct only", `{"genre": "Jazz"}`, "Jazz"},
		{"direct beats categories", `{"genre": "Jazz", "categories": ["Music"]}`, "Jazz"},
		{"categories fallback", `{"categories": ["Electronic"]}`, "Electronic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			audio := filepath.Join(dir, "song.mp3")
			require.NoError(t, os.WriteFile(audio, []byte("x"), 0o644))
			require.NoError(t, os.WriteFile(audio+".info.json", []byte(tt.sidecar), 0o644))

			assert.Equal(t, tt.want, sidecarPartial(audio).Genre)
		})
	}
}

// TestSidecarFoundForBracketedStem verifies stems containing characters
// special to glob patterns still match suffixed sidecar names.
func TestSidecarFoundForBracketedStem(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "track [live].mp3")
	require.NoError(t, os.WriteFile(audio, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "track [live] [abc123].info.json"),
		[]byte(`{"title": "Live Title"}`), 0o644))

	assert.Equal(t, "Live Title", sidecarPartial(audio).Title)
}

// TestResolveSidecarTitleBeatsFilenameGuess verifies a sidecar title wins
// over the filename-derived one when no tag supplied a title.
func TestResolveSidecarTitleBeatsFilenameGuess(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "raw_download_123.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "raw_download_123.info.json"),
		[]byte(`{"title": "Proper Title", "artist": "Proper Artist"}`), 0o644))

	svc, _ := newTestMetadata(&fakeProber{}, nil, nil)

	meta := svc.Resolve(context.Background(), audio)

	assert.Equal(t, "Proper Title", meta.Title)
	assert.Equal(t, "Proper Artist", meta.Artist)
}

// TestResolveFilenamePlusSidecarAlbum verifies the three-way merge when
// only the filename and a sidecar album are available.
func TestResolveFilenamePlusSidecarAlbum(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "A - T.mp3")
	require.NoError(t, os.WriteFile(audio, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(audio+".info.json", []byte(`{"album": "Z"}`), 0o644))

	svc, _ := newTestMetadata(&fakeProber{}, nil, nil)

	meta := svc.Resolve(context.Background(), audio)

	assert.Equal(t, "T", meta.Title)
	assert.Equal(t, "A", meta.Artist)
	assert.Equal(t, "Z", meta.Album)
}

func TestCleanTextStripsNulsAndWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", cleanText("  a\x00b \t c \x00 "))
	assert.Empty(t, cleanText("\x00\x00"))
}

func TestResolveBatchPublishesPerTrackAndFinish(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	prober := &fakeProber{results: map[string]*ports.ProbeResult{
		"/music/a.mp3": probeWithTags(map[string]string{"title": "A"}),
		"/music/b.mp3": probeWithTags(map[string]string{"title": "B"}),
	}}
	svc, bus := newTestMetadata(prober, nil, &fakeArtExtractor{})
	defer svc.Shutdown()

	resolved := make(chan domain.MetadataResolvedEvent, 8)
	finished := make(chan domain.MetadataBatchFinishedEvent, 1)
	bus.Subscribe(domain.EventMetadataResolved, func(event domain.Event) {
		resolved <- event.(domain.MetadataResolvedEvent)
	})
	bus.Subscribe(domain.EventMetadataBatchFinished, func(event domain.Event) {
		finished <- event.(domain.MetadataBatchFinishedEvent)
	})

	generation := svc.ResolveBatch(context.Background(), []string{"/music/a.mp3", "/music/b.mp3"})

	var titles []string
	for i := 0; i < 2; i++ {
		select {
		case event := <-resolved:
			assert.Equal(t, generation, event.Generation)
			titles = append(titles, event.Metadata.Title)
		case <-time.After(2 * time.Second):
			t.Fatal("missing resolved event")
		}
	}
	assert.ElementsMatch(t, []string{"A", "B"}, titles)

	select {
	case event := <-finished:
		assert.Equal(t, generation, event.Generation)
	case <-time.After(2 * time.Second):
		t.Fatal("missing batch-finished event")
	}
}

// TestResolveBatchSuperseded verifies a cancelled batch stops resolving
// and never reports completion.
func TestResolveBatchSuperseded(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	prober := &fakeProber{delay: 30 * time.Millisecond}
	svc, bus := newTestMetadata(prober, nil, nil)
	defer svc.Shutdown()

	finished := make(chan struct{}, 1)
	bus.Subscribe(domain.EventMetadataBatchFinished, func(domain.Event) {
		finished <- struct{}{}
	})

	paths := make([]string, 20)
	for i := range paths {
		paths[i] = "/music/track.mp3"
	}
	svc.ResolveBatch(context.Background(), paths)
	svc.CancelBatches()

	select {
	case <-finished:
		t.Fatal("superseded batch must not report completion")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestResolveBatchContextCancel(t *testing.T) {
	defer testutil.VerifyNoLeaks(t)

	prober := &fakeProber{delay: 30 * time.Millisecond}
	svc, bus := newTestMetadata(prober, nil, nil)
	defer svc.Shutdown()

	finished := make(chan struct{}, 1)
	bus.Subscribe(domain.EventMetadataBatchFinished, func(domain.Event) {
		finished <- struct{}{}
	})

	ctx, cancel := context.WithCancel(context.Background())
	paths := make([]string, 20)
	for i := range paths {
		paths[i] = "/music/track.mp3"
	}
	svc.ResolveBatch(ctx, paths)
	cancel()

	select {
	case <-finished:
		t.Fatal("cancelled batch must not report completion")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestResolveArt(t *testing.T) {
	artBytes := []byte("fake png")
	svc, _ := newTestMetadata(&fakeProber{}, nil, &fakeArtExtractor{art: artBytes})

	assert.Equal(t, artBytes, svc.ResolveArt(context.Background(), "/music/a.mp3"))

	svcNoArt, _ := newTestMetadata(&fakeProber{}, nil, &fakeArtExtractor{})
	assert.Nil(t, svcNoArt.ResolveArt(context.Background(), "/music/a.mp3"))
}

// TestPlaceholderArtDeterministic verifies the placeholder tile is stable
// for a token and decodes as a PNG of the expected size.
func TestPlaceholderArtDeterministic(t *testing.T) {
	first := PlaceholderArt("Morning Sun")
	second := PlaceholderArt("Morning Sun")
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)

	img, err := png.Decode(bytes.NewReader(first))
	require.NoError(t, err)
	assert.Equal(t, placeholderSize, img.Bounds().Dx())
	assert.Equal(t, placeholderSize, img.Bounds().Dy())
}

func TestPlaceholderArtVariesByToken(t *testing.T) {
	assert.NotEqual(t, PlaceholderArt("Alpha"), PlaceholderArt("Bravo"))
}

func TestPlaceholderGlyph(t *testing.T) {
	assert.Equal(t, 'M', placeholderGlyph("morning sun"))
	assert.Equal(t, '7', placeholderGlyph("7 rings"))
	assert.Equal(t, '*', placeholderGlyph("...---..."))
	assert.Equal(t, '*', placeholderGlyph(""))
}
