// Package domain defines domain-specific errors.
// These errors represent business logic failures and are independent of infrastructure.
package domain

import (
	"errors"
	"fmt"
)

// Common errors that services can return.
var (
	// ErrNotADirectory is returned when a folder load targets a path that
	// does not exist or is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrEmptyPlaylist is returned when an operation requires a non-empty playlist.
	ErrEmptyPlaylist = errors.New("playlist is empty")

	// ErrInvalidPlaylistName is returned when a saved-playlist name is empty
	// after whitespace normalization.
	ErrInvalidPlaylistName = errors.New("invalid playlist name")

	// ErrPlaylistNotFound is returned when a named saved playlist does not exist.
	ErrPlaylistNotFound = errors.New("saved playlist not found")

	// ErrNoSession is returned when a transport operation requires a loaded track.
	ErrNoSession = errors.New("no playback session")

	// ErrEngineClosed is returned when the playback engine is used after shutdown.
	ErrEngineClosed = errors.New("playback engine is shut down")

	// ErrSourceUnavailable marks a metadata source that is missing or failed.
	// It is always recovered internally by skipping the source.
	ErrSourceUnavailable = errors.New("metadata source unavailable")

	// ErrNoArt is returned when no album art could be extracted.
	// Callers fall back to a generated placeholder.
	ErrNoArt = errors.New("no album art")
)

// DecodeError reports a failure of the external decode collaborator.
// It is fatal to the load that triggered it but never crashes the engine.
type DecodeError struct {
	Path   string // File being decoded
	Stderr string // Collaborator diagnostic text
	Err    error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("decode failed for %q", e.Path)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(path, stderr string, err error) *DecodeError {
	return &DecodeError{Path: path, Stderr: stderr, Err: err}
}

// DeviceError reports an output device open or write failure.
// Write failures terminate the current session silently.
type DeviceError struct {
	Op  string // Operation that failed ("open", "write", "close")
	Err error  // Underlying error
}

// Error implements the error interface.
func (e *DeviceError) Error() string {
	return fmt.Sprintf("output device %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// NewDeviceError creates a new DeviceError.
func NewDeviceError(op string, err error) *DeviceError {
	return &DeviceError{Op: op, Err: err}
}

// PersistenceError reports a disk write failure for stats, saved playlists,
// or settings. Prior on-disk state is preserved by write-then-replace.
type PersistenceError struct {
	Op   string // Operation that failed ("save", "load")
	Path string // File involved
	Err  error  // Underlying error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed for %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(op, path string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Path: path, Err: err}
}
