// Package ffmpeg implements the decode collaborator by invoking the
// ffmpeg binary as a black box.
package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

// Decode output contract: raw signed 16-bit little-endian stereo PCM at
// 44100 Hz, regardless of the input container.
const (
	outputFrameRate   = 44100
	outputChannels    = 2
	outputSampleWidth = 2
)

// Decoder decodes audio files fully into memory via ffmpeg.
type Decoder struct {
	// Binary is the ffmpeg executable name or path. Defaults to "ffmpeg".
	Binary string
}

// NewDecoder creates a decoder using the ffmpeg binary found on PATH.
func NewDecoder() *Decoder {
	return &Decoder{Binary: "ffmpeg"}
}

// Decode runs ffmpeg and captures the raw PCM from stdout.
// A missing binary or non-zero exit yields a *domain.DecodeError carrying
// the file name and ffmpeg's stderr text.
func (d *Decoder) Decode(ctx context.Context, path string) (domain.PCMBuffer, error) {
	bin, err := exec.LookPath(d.Binary)
	if err != nil {
		return domain.PCMBuffer{}, domain.NewDecodeError(filepath.Base(path), "ffmpeg not found", err)
	}

	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ac", "2",
		"-ar", "44100",
		"-",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return domain.PCMBuffer{}, domain.NewDecodeError(
			filepath.Base(path),
			strings.TrimSpace(stderr.String()),
			err,
		)
	}

	return domain.PCMBuffer{
		Data:        stdout.Bytes(),
		FrameRate:   outputFrameRate,
		Channels:    outputChannels,
		SampleWidth: outputSampleWidth,
	}, nil
}

// Verify interface implementation
var _ ports.Decoder = (*Decoder)(nil)
