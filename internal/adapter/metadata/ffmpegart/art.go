// Package ffmpegart implements the art-extraction collaborator by invoking
// the ffmpeg binary.
package ffmpegart

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

// extractTimeout bounds a single ffmpeg invocation.
const extractTimeout = 8 * time.Second

// Extractor extracts embedded album art as PNG bytes.
type Extractor struct {
	// Binary is the ffmpeg executable name or path. Defaults to "ffmpeg".
	Binary string
}

// NewExtractor creates an extractor using the ffmpeg binary found on PATH.
func NewExtractor() *Extractor {
	return &Extractor{Binary: "ffmpeg"}
}

// Extract tries the attached-picture stream first (common for MP3/M4A),
// then a generic first-video-frame extraction. Missing tool or empty
// output yields an error wrapping domain.ErrNoArt, never a hard failure.
func (e *Extractor) Extract(ctx context.Context, path string) ([]byte, error) {
	bin, err := exec.LookPath(e.Binary)
	if err != nil {
		return nil, fmt.Errorf("%w: ffmpeg not on PATH", domain.ErrNoArt)
	}

	// Attached-picture streams map as 0:v:0.
	if art := e.run(ctx, bin,
		"-v", "error",
		"-i", path,
		"-map", "0:v:0",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	); len(art) > 0 {
		return art, nil
	}

	// Fallback for files where ffmpeg exposes cover art differently.
	if art := e.run(ctx, bin,
		"-v", "error",
		"-i", path,
		"-an",
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	); len(art) > 0 {
		return art, nil
	}

	return nil, domain.ErrNoArt
}

func (e *Extractor) run(ctx context.Context, bin string, args ...string) []byte {
	ctx, cancel := context.WithTimeout(ctx, extractTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil
	}
	return stdout.Bytes()
}

// Verify interface implementation
var _ ports.ArtExtractor = (*Extractor)(nil)
