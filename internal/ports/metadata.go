// Package ports defines the metadata collaborator interfaces.
package ports

import (
	"context"

	"github.com/sabrinth/player/internal/domain"
)

// ProbeResult is the structured output of the probe collaborator:
// container-level data plus per-stream data.
type ProbeResult struct {
	Format  ProbeFormat
	Streams []ProbeStream
}

// ProbeFormat carries container-level tags and numbers.
// Numeric values are kept as strings exactly as the collaborator reports
// them; coercion happens in the resolver and fails soft.
type ProbeFormat struct {
	Duration string
	BitRate  string
	Tags     map[string]string
}

// ProbeStream carries per-stream data.
type ProbeStream struct {
	CodecType string
	Duration  string
	BitRate   string
	Tags      map[string]string
}

// Prober is the external probe collaborator (ffprobe).
// Invoked once per metadata resolution.
//
// A missing binary, timeout, or malformed output must be reported as an
// error wrapping domain.ErrSourceUnavailable so the resolver can skip the
// source without aborting resolution.
type Prober interface {
	Probe(ctx context.Context, path string) (*ProbeResult, error)
}

// TagReader reads embedded tags in-process, without an external binary.
// It backs up the probe collaborator when that is unavailable.
type TagReader interface {
	// ReadTags returns the tag fields found in the file. A file without
	// readable tags yields an error wrapping domain.ErrSourceUnavailable.
	ReadTags(path string) (domain.PartialMetadata, error)
}

// ArtExtractor is the external art-extraction collaborator.
// Invoked once per metadata resolution; implementations try an embedded
// picture stream first and a generic first-video-frame second.
type ArtExtractor interface {
	// Extract returns PNG bytes of the track's artwork, or an error
	// wrapping domain.ErrNoArt when nothing could be extracted.
	// Absence of art is not a failure of resolution.
	Extract(ctx context.Context, path string) ([]byte, error)
}
