// Package ports defines interfaces for dependency inversion.
// These interfaces keep the playback core independent of external
// collaborators (ffmpeg, ffprobe, the audio device backend).
package ports

import (
	"context"

	"github.com/sabrinth/player/internal/domain"
)

// Decoder is the external decode collaborator.
// Given a file path it returns the whole track as raw PCM: little-endian
// signed 16-bit stereo at 44100 Hz.
//
// Implementations must return a *domain.DecodeError carrying the file name
// and the collaborator's diagnostic text when decoding fails.
type Decoder interface {
	// Decode decodes the file at path fully into memory.
	// Invoked once per load; the context bounds the collaborator's runtime.
	Decode(ctx context.Context, path string) (domain.PCMBuffer, error)
}

// OutputDevice is a single open audio output stream.
// It is owned exclusively by one playback session and must be fully closed
// before the next session opens a new one.
type OutputDevice interface {
	// Write queues one PCM chunk to the device, blocking until the device
	// has consumed it. A write error terminates the session silently.
	Write(chunk []byte) error

	// Close stops and releases the stream. Idempotent.
	Close() error
}

// DeviceOpener creates output devices and owns the underlying backend.
type DeviceOpener interface {
	// Open opens an output stream for the given PCM parameters.
	Open(frameRate, channels, sampleWidth int) (OutputDevice, error)

	// Shutdown releases the backend entirely. Terminal.
	Shutdown() error
}
