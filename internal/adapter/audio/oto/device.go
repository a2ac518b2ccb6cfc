// Package oto implements the output device over github.com/ebitengine/oto/v3.
package oto

import (
	"fmt"
	"io"
	"sync"

	oto "github.com/ebitengine/oto/v3"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

// DeviceOpener opens output streams backed by a process-wide oto context.
// oto allows exactly one context per process, created lazily on the first
// Open; later opens must use the same PCM parameters.
type DeviceOpener struct {
	mu       sync.Mutex
	ctx      *oto.Context
	rate     int
	channels int
	width    int
	closed   bool
}

// NewDeviceOpener creates an opener. The backend context is created on
// first use so construction never touches the audio system.
func NewDeviceOpener() *DeviceOpener {
	return &DeviceOpener{}
}

// Open opens an output stream for the given PCM parameters.
func (o *DeviceOpener) Open(frameRate, channels, sampleWidth int) (ports.OutputDevice, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil, domain.NewDeviceError("open", domain.ErrEngineClosed)
	}
	if sampleWidth != 2 {
		return nil, domain.NewDeviceError("open", fmt.Errorf("unsupported sample width %d", sampleWidth))
	}

	if o.ctx == nil {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   frameRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			return nil, domain.NewDeviceError("open", err)
		}
		<-ready
		o.ctx = ctx
		o.rate = frameRate
		o.channels = channels
		o.width = sampleWidth
	} else if frameRate != o.rate || channels != o.channels {
		return nil, domain.NewDeviceError("open",
			fmt.Errorf("device is fixed at %d Hz / %d ch, got %d Hz / %d ch",
				o.rate, o.channels, frameRate, channels))
	}

	pr, pw := io.Pipe()
	player := o.ctx.NewPlayer(pr)
	player.Play()

	return &device{player: player, pr: pr, pw: pw}, nil
}

// Shutdown suspends the backend. oto contexts cannot be destroyed, so a
// suspended context is as released as the backend gets.
func (o *DeviceOpener) Shutdown() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	if o.ctx != nil {
		if err := o.ctx.Suspend(); err != nil {
			return domain.NewDeviceError("close", err)
		}
	}
	return nil
}

// device is one open output stream. Chunks written to the pipe are pulled
// by the oto player at playback rate, so Write blocks naturally while the
// device catches up.
type device struct {
	player *oto.Player
	pr     *io.PipeReader
	pw     *io.PipeWriter

	mu     sync.Mutex
	closed bool
}

// Write queues one PCM chunk, blocking until the player consumes it.
func (d *device) Write(chunk []byte) error {
	if _, err := d.pw.Write(chunk); err != nil {
		return domain.NewDeviceError("write", err)
	}
	return nil
}

// Close stops and releases the stream. Idempotent.
func (d *device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	_ = d.pw.Close()
	if err := d.player.Close(); err != nil {
		return domain.NewDeviceError("close", err)
	}
	return nil
}

// Verify interface implementations
var (
	_ ports.DeviceOpener = (*DeviceOpener)(nil)
	_ ports.OutputDevice = (*device)(nil)
)
