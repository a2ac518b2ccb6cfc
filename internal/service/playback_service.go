// Package service provides the business logic of the Sabrinth playback core.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

const (
	// chunkFrames is the fixed window written to the device per loop iteration.
	chunkFrames = 2048

	// pausePollInterval is how long the playback loop sleeps while paused
	// before re-checking the stop signal.
	pausePollInterval = 50 * time.Millisecond

	// stopJoinTimeout bounds how long Stop waits for the playback
	// goroutine to exit.
	stopJoinTimeout = time.Second
)

// PlaybackService owns the single active audio stream: decode buffer,
// output device, position, pause and volume state. Exactly one session is
// alive at a time; loading a new track tears the previous one down fully
// before the next starts.
//
// Concurrency: the playback goroutine is the sole writer of the position;
// the controlling goroutine is the sole writer of transport intent. Both
// share one mutex. The end-of-track notification travels as a one-shot
// message through an internal channel consumed by a dispatcher goroutine,
// so bus handlers never run on the playback goroutine and Stop can never
// deadlock on itself.
type PlaybackService struct {
	// Dependencies (injected)
	logger  *slog.Logger
	decoder ports.Decoder
	devices ports.DeviceOpener
	bus     ports.EventBus

	// State
	session *playbackSession
	volume  float64
	closed  bool

	// Concurrency control
	mu           sync.Mutex
	completions  chan string
	dispatchStop chan struct{}
	dispatchWg   sync.WaitGroup
}

// playbackSession is the state of one load_and_play-to-stop lifetime.
type playbackSession struct {
	path       string
	pcm        domain.PCMBuffer
	frameCount int

	// positionFrame is written by the playback goroutine and by Seek,
	// both under the service mutex.
	positionFrame int
	paused        bool

	stop     chan struct{}
	stopOnce sync.Once

	// finished is closed when the playback goroutine has fully exited
	// and the output device is closed.
	finished chan struct{}
}

// NewPlaybackService creates a playback service.
func NewPlaybackService(
	logger *slog.Logger,
	decoder ports.Decoder,
	devices ports.DeviceOpener,
	bus ports.EventBus,
) *PlaybackService {
	s := &PlaybackService{
		logger:       logger,
		decoder:      decoder,
		devices:      devices,
		bus:          bus,
		volume:       0.5,
		completions:  make(chan string),
		dispatchStop: make(chan struct{}),
	}

	s.dispatchWg.Add(1)
	go s.dispatchCompletions()

	logger.Debug("playback service initialized")
	return s
}

// dispatchCompletions forwards end-of-track messages to the event bus on a
// goroutine owned by the service, not by any playback session.
func (s *PlaybackService) dispatchCompletions() {
	defer s.dispatchWg.Done()
	for {
		select {
		case <-s.dispatchStop:
			return
		case path := <-s.completions:
			s.bus.Publish(domain.NewTrackCompletedEvent(path))
		}
	}
}

// LoadAndPlay stops any current session, decodes the file fully into
// memory, and starts a new playback session from startSeconds (clamped to
// the track's duration).
//
// Decode failures are returned synchronously; no session is started.
func (s *PlaybackService) LoadAndPlay(ctx context.Context, path string, startSeconds float64) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrEngineClosed
	}
	s.mu.Unlock()

	s.stopSession(true)

	buf, err := s.decoder.Decode(ctx, path)
	if err != nil {
		s.logger.Debug("decode failed", slog.String("path", path), slog.Any("error", err))
		return err
	}

	sess := &playbackSession{
		path:       path,
		pcm:        buf,
		frameCount: buf.FrameCount(),
		stop:       make(chan struct{}),
		finished:   make(chan struct{}),
	}

	clamped := clampFloat(startSeconds, 0, buf.DurationSeconds())
	sess.positionFrame = int(clamped * float64(buf.FrameRate))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrEngineClosed
	}
	s.session = sess
	s.mu.Unlock()

	go s.playbackLoop(sess)

	s.logger.Debug("playback started",
		slog.String("path", path),
		slog.Float64("start_seconds", clamped))
	s.bus.Publish(domain.NewTrackStartedEvent(path, buf.DurationSeconds()))

	return nil
}

// playbackLoop streams the session's PCM buffer to the output device in
// fixed-size chunks until the buffer ends or a stop is requested.
func (s *PlaybackService) playbackLoop(sess *playbackSession) {
	reachedEnd := false
	stopped := false

	// Fire end-of-track exactly once, only on natural completion. This
	// defer runs after the device is closed and the session detached, so
	// the send may block until the dispatcher is free without holding up
	// a Stop or a replacement LoadAndPlay. Completions are never dropped.
	defer func() {
		if reachedEnd && !stopped {
			select {
			case s.completions <- sess.path:
			case <-s.dispatchStop:
			}
		}
	}()
	defer close(sess.finished)
	defer s.clearSession(sess)

	device, err := s.devices.Open(sess.pcm.FrameRate, sess.pcm.Channels, sess.pcm.SampleWidth)
	if err != nil {
		// Device-open failures leave the engine idle; not retried.
		s.logger.Warn("output device open failed", slog.Any("error", err))
		return
	}
	defer device.Close()

	frameSize := sess.pcm.FrameSize()

loop:
	for {
		select {
		case <-sess.stop:
			break loop
		default:
		}

		s.mu.Lock()
		paused := sess.paused
		start := sess.positionFrame
		volume := s.volume
		s.mu.Unlock()

		if paused {
			time.Sleep(pausePollInterval)
			continue
		}

		if start >= sess.frameCount {
			reachedEnd = true
			break
		}

		end := start + chunkFrames
		if end > sess.frameCount {
			end = sess.frameCount
		}

		chunk := sess.pcm.Data[start*frameSize : end*frameSize]
		chunk = domain.ScalePCM(chunk, sess.pcm.SampleWidth, volume)

		if err := device.Write(chunk); err != nil {
			// Treated as a device disconnect: terminate silently,
			// no end-of-track notification.
			s.logger.Debug("device write failed", slog.Any("error", err))
			break
		}

		s.mu.Lock()
		sess.positionFrame = end
		s.mu.Unlock()
	}

	select {
	case <-sess.stop:
		stopped = true
	default:
	}
}

// clearSession detaches sess if it is still the active session.
func (s *PlaybackService) clearSession(sess *playbackSession) {
	s.mu.Lock()
	if s.session == sess {
		s.session = nil
	}
	s.mu.Unlock()
}

// stopSession signals the active session to stop and, if wait is set,
// joins the playback goroutine with a bounded timeout. Returns the stopped
// session's path, or empty when there was none.
func (s *PlaybackService) stopSession(wait bool) string {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()

	if sess == nil {
		return ""
	}

	sess.stopOnce.Do(func() { close(sess.stop) })

	if wait {
		select {
		case <-sess.finished:
		case <-time.After(stopJoinTimeout):
			s.logger.Warn("playback goroutine did not exit in time",
				slog.String("path", sess.path))
		}
	}
	return sess.path
}

// Stop signals the playback goroutine to exit, joins it, and closes the
// output stream. Idempotent; never publishes a completion event.
func (s *PlaybackService) Stop() {
	if path := s.stopSession(true); path != "" {
		s.bus.Publish(domain.NewTrackStoppedEvent(path))
	}
}

// Pause pauses the active session. No-op while stopped.
// The output stream stays open; the playback goroutine polls for resume.
func (s *PlaybackService) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.session.paused = true
	}
}

// Resume resumes a paused session. No-op while stopped.
func (s *PlaybackService) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.session.paused = false
	}
}

// TogglePause flips between paused and playing. No-op while stopped.
func (s *PlaybackService) TogglePause() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		s.session.paused = !s.session.paused
	}
}

// Seek moves the playback position to seconds, clamped to [0, duration].
// The playback goroutine continues from the new position on its next
// iteration without restarting the stream.
func (s *PlaybackService) Seek(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session
	if sess == nil {
		return
	}

	clamped := clampFloat(seconds, 0, sess.pcm.DurationSeconds())
	sess.positionFrame = int(clamped * float64(sess.pcm.FrameRate))
}

// SetVolume sets the playback volume, clamped to [0, 1].
// Takes effect on the next chunk written; audio already queued to the
// device is unaffected.
func (s *PlaybackService) SetVolume(volume float64) {
	clamped := clampFloat(volume, 0, 1)

	s.mu.Lock()
	s.volume = clamped
	s.mu.Unlock()

	s.bus.Publish(domain.NewVolumeChangedEvent(clamped))
}

// Volume returns the current volume (0.0 to 1.0).
func (s *PlaybackService) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// IsPlaying reports whether a session is alive (playing or paused).
func (s *PlaybackService) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// IsPaused reports whether the active session is paused.
func (s *PlaybackService) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil && s.session.paused
}

// CurrentSeconds returns the playback position of the active session.
func (s *PlaybackService) CurrentSeconds() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session
	if sess == nil || sess.pcm.FrameRate == 0 {
		return 0
	}
	return float64(sess.positionFrame) / float64(sess.pcm.FrameRate)
}

// DurationSeconds returns the duration of the active session's track.
func (s *PlaybackService) DurationSeconds() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return 0
	}
	return s.session.pcm.DurationSeconds()
}

// CurrentPath returns the path of the active session's track, or empty.
func (s *PlaybackService) CurrentPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return ""
	}
	return s.session.path
}

// Shutdown stops playback, stops the completion dispatcher, and releases
// the output backend. Terminal: no further calls are valid.
func (s *PlaybackService) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.stopSession(true)

	close(s.dispatchStop)
	s.dispatchWg.Wait()

	return s.devices.Shutdown()
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
