package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

// MetadataService resolves display metadata for tracks by merging partial
// sources with a fixed precedence:
//
//  1. filename heuristic — always contributes a title, the baseline
//  2. embedded tags (probe collaborator, in-process reader as backup) —
//     non-empty fields override the baseline
//  3. sidecar info file — fills only fields still missing or at their
//     placeholder value; it never overrides a tag-sourced field
//
// Resolution never fails: every error from a collaborator degrades to
// "that source contributed nothing".
type MetadataService struct {
	// Dependencies (injected)
	logger    *slog.Logger
	prober    ports.Prober
	tagReader ports.TagReader
	art       ports.ArtExtractor
	bus       ports.EventBus

	// generation tags batch work so results of a superseded batch can be
	// recognized and discarded.
	generation atomic.Uint64

	batchWg sync.WaitGroup
}

// NewMetadataService creates a metadata service. tagReader and art may be
// nil, in which case those sources simply never contribute.
func NewMetadataService(
	logger *slog.Logger,
	prober ports.Prober,
	tagReader ports.TagReader,
	art ports.ArtExtractor,
	bus ports.EventBus,
) *MetadataService {
	return &MetadataService{
		logger:    logger,
		prober:    prober,
		tagReader: tagReader,
		art:       art,
		bus:       bus,
	}
}

// Resolve produces the canonical metadata record for one track.
// The returned record always has a non-empty Title and Artist (falling
// back to the placeholder), and Album defaults to its placeholder.
func (s *MetadataService) Resolve(ctx context.Context, path string) domain.AudioMetadata {
	base := filenamePartial(path)

	tags := s.tagPartial(ctx, path)

	merged := base
	overlayNonEmpty(&merged, tags)

	// Tags often pack "Artist - Title" into the title field; when no
	// artist was found anywhere, re-split the merged title.
	if merged.Artist == "" {
		if artist, title := splitArtistTitle(merged.Title); artist != "" {
			merged.Artist = artist
			merged.Title = title
		}
	}

	fillMissing(&merged, sidecarPartial(path), tags)

	return finalizeMetadata(merged)
}

// tagPartial queries the probe collaborator, falling back to the
// in-process tag reader when the probe contributes nothing at all.
func (s *MetadataService) tagPartial(ctx context.Context, path string) domain.PartialMetadata {
	var partial domain.PartialMetadata

	result, err := s.prober.Probe(ctx, path)
	if err != nil {
		if !errors.Is(err, domain.ErrSourceUnavailable) {
			s.logger.Debug("probe failed", slog.String("path", path), slog.Any("error", err))
		}
	} else {
		partial = probePartial(result)
	}

	if partial.IsEmpty() && s.tagReader != nil {
		if fallback, err := s.tagReader.ReadTags(path); err == nil {
			partial = fallback
		}
	}

	return partial
}

// overlayNonEmpty copies every non-empty field of src over dst.
func overlayNonEmpty(dst *domain.PartialMetadata, src domain.PartialMetadata) {
	if src.Title != "" {
		dst.Title = src.Title
	}
	if src.Artist != "" {
		dst.Artist = src.Artist
	}
	if src.Album != "" {
		dst.Album = src.Album
	}
	if src.Year != "" {
		dst.Year = src.Year
	}
	if src.Genre != "" {
		dst.Genre = src.Genre
	}
	if src.DurationSeconds > 0 {
		dst.DurationSeconds = src.DurationSeconds
	}
	if src.BitrateKbps > 0 {
		dst.BitrateKbps = src.BitrateKbps
	}
}

// fillMissing applies the sidecar contribution to fields the tag sources
// left unset. The filename-derived title counts as unset for this purpose:
// a sidecar title wins over a guessed one, but never over an embedded tag.
func fillMissing(dst *domain.PartialMetadata, src, tags domain.PartialMetadata) {
	if tags.Title == "" && src.Title != "" {
		dst.Title = src.Title
	}
	if dst.Artist == "" && src.Artist != "" {
		dst.Artist = src.Artist
	}
	if dst.Album == "" && src.Album != "" {
		dst.Album = src.Album
	}
	if dst.Year == "" && src.Year != "" {
		dst.Year = src.Year
	}
	if dst.Genre == "" && src.Genre != "" {
		dst.Genre = src.Genre
	}
	if dst.DurationSeconds == 0 && src.DurationSeconds > 0 {
		dst.DurationSeconds = src.DurationSeconds
	}
	if dst.BitrateKbps == 0 && src.BitrateKbps > 0 {
		dst.BitrateKbps = src.BitrateKbps
	}
}

// finalizeMetadata normalizes the merged contribution into the canonical
// record: placeholders for unknown artist and album, cleaned text, and
// non-negative numbers.
func finalizeMetadata(m domain.PartialMetadata) domain.AudioMetadata {
	out := domain.AudioMetadata{
		Title:           cleanText(m.Title),
		Artist:          cleanText(m.Artist),
		Album:           cleanText(m.Album),
		Year:            extractYear(m.Year),
		Genre:           cleanText(m.Genre),
		DurationSeconds: m.DurationSeconds,
		BitrateKbps:     m.BitrateKbps,
	}
	if out.Artist == "" {
		out.Artist = domain.UnknownArtist
	}
	if out.Album == "" {
		out.Album = domain.UnknownAlbum
	}
	if out.DurationSeconds < 0 {
		out.DurationSeconds = 0
	}
	if out.BitrateKbps < 0 {
		out.BitrateKbps = 0
	}
	return out
}

// ResolveArt extracts the track's embedded artwork as PNG bytes. Returns
// nil when no extractor is wired or no art was found; absence of art is
// not an error.
func (s *MetadataService) ResolveArt(ctx context.Context, path string) []byte {
	if s.art == nil {
		return nil
	}
	art, err := s.art.Extract(ctx, path)
	if err != nil {
		if !errors.Is(err, domain.ErrNoArt) {
			s.logger.Debug("art extraction failed",
				slog.String("path", path), slog.Any("error", err))
		}
		return nil
	}
	return art
}

// ResolveBatch resolves metadata and art for the given paths on a
// background goroutine, publishing a MetadataResolvedEvent per track and a
// MetadataBatchFinishedEvent when the batch runs to completion.
//
// Each call supersedes the previous batch: the running batch notices the
// generation moved on and exits without publishing further results, and
// consumers discard events whose generation is stale. Returns the batch's
// generation number.
func (s *MetadataService) ResolveBatch(ctx context.Context, paths []string) uint64 {
	generation := s.generation.Add(1)
	batch := make([]string, len(paths))
	copy(batch, paths)

	s.batchWg.Add(1)
	go func() {
		defer s.batchWg.Done()

		for _, path := range batch {
			if ctx.Err() != nil || s.generation.Load() != generation {
				s.logger.Debug("metadata batch superseded",
					slog.Uint64("generation", generation))
				return
			}

			meta := s.Resolve(ctx, path)
			art := s.ResolveArt(ctx, path)

			// Re-check after the slow work so a batch superseded
			// mid-resolve publishes nothing stale.
			if ctx.Err() != nil || s.generation.Load() != generation {
				return
			}
			s.bus.Publish(domain.NewMetadataResolvedEvent(generation, path, meta, art))
		}

		if ctx.Err() == nil && s.generation.Load() == generation {
			s.bus.Publish(domain.NewMetadataBatchFinishedEvent(generation))
		}
	}()

	return generation
}

// CancelBatches invalidates any running batch without starting a new one.
func (s *MetadataService) CancelBatches() {
	s.generation.Add(1)
}

// Shutdown cancels outstanding batches and waits for their goroutines.
func (s *MetadataService) Shutdown() {
	s.CancelBatches()
	s.batchWg.Wait()
}
