// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the Sabrinth playback core.
package domain

import (
	"path/filepath"
	"strings"
)

// Placeholder values used when no metadata source supplies a real value.
const (
	// UnknownArtist is the artist placeholder.
	UnknownArtist = "Unknown Artist"

	// UnknownAlbum is the album placeholder.
	UnknownAlbum = "Unknown Album"
)

// SupportedExtensions is the set of audio file extensions accepted into playlists.
// Extensions are lowercase and include the leading dot.
var SupportedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".flac": true,
	".m4a":  true,
	".aac":  true,
}

// IsSupportedAudioFile reports whether the path has a supported audio extension.
func IsSupportedAudioFile(path string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// AudioMetadata is the canonical metadata record for a single track.
// It is derived on demand from multiple partial sources and cached by the
// caller; the core never stores it.
//
// Invariant: Title and Artist are never empty after resolution (the filename
// heuristic always supplies them).
type AudioMetadata struct {
	// Title is the song title.
	Title string

	// Artist is the performing artist, or UnknownArtist.
	Artist string

	// Album is the album name, or UnknownAlbum.
	Album string

	// Year is a 4-digit year string, or empty if unknown.
	Year string

	// Genre is the music genre, or empty if unknown.
	Genre string

	// DurationSeconds is the track length in seconds (>= 0).
	DurationSeconds float64

	// BitrateKbps is the audio bit rate in kilobits per second (>= 0).
	BitrateKbps int
}

// DisplayTitle returns "Artist - Title" when the artist is known,
// otherwise just the title.
func (m AudioMetadata) DisplayTitle() string {
	if m.Artist != "" && m.Artist != UnknownArtist {
		return m.Artist + " - " + m.Title
	}
	return m.Title
}

// PartialMetadata is a single metadata source's contribution.
// All fields are optional; the zero value means "this source has nothing".
// Sources are combined by an explicit merge with documented precedence
// instead of ad hoc map probing.
type PartialMetadata struct {
	Title           string
	Artist          string
	Album           string
	Year            string
	Genre           string
	DurationSeconds float64
	BitrateKbps     int
}

// IsEmpty reports whether the source contributed no fields at all.
func (p PartialMetadata) IsEmpty() bool {
	return p == PartialMetadata{}
}

// SongStats holds per-song play counters.
// Stats are keyed by file name, not full path: two files with the same name
// in different folders deliberately share counters.
type SongStats struct {
	Played  int `json:"played"`
	Started int `json:"started"`
	Skipped int `json:"skipped"`
}

// StatKind identifies which SongStats counter to increment.
type StatKind string

const (
	// StatStarted counts explicit playback starts.
	StatStarted StatKind = "started"

	// StatPlayed counts natural track completions.
	StatPlayed StatKind = "played"

	// StatSkipped counts manual skips before completion.
	StatSkipped StatKind = "skipped"
)

// Valid reports whether the kind names a known counter.
// Unknown kinds are silently ignored by stat updates.
func (k StatKind) Valid() bool {
	return k == StatStarted || k == StatPlayed || k == StatSkipped
}

// PCMBuffer is a fully-decoded audio track as raw interleaved PCM.
type PCMBuffer struct {
	// Data is the raw little-endian PCM payload.
	Data []byte

	// FrameRate is the sample rate in Hz (e.g. 44100).
	FrameRate int

	// Channels is the number of interleaved channels.
	Channels int

	// SampleWidth is the bytes per sample (2 for 16-bit).
	SampleWidth int
}

// FrameSize returns the byte size of one interleaved frame.
func (b PCMBuffer) FrameSize() int {
	return b.SampleWidth * b.Channels
}

// FrameCount returns the number of whole frames in the buffer.
func (b PCMBuffer) FrameCount() int {
	size := b.FrameSize()
	if size == 0 {
		return 0
	}
	return len(b.Data) / size
}

// DurationSeconds returns the buffer length in seconds.
func (b PCMBuffer) DurationSeconds() float64 {
	if b.FrameRate == 0 {
		return 0
	}
	return float64(b.FrameCount()) / float64(b.FrameRate)
}

// Settings holds user-facing behavior settings persisted by the core.
// Keys mirror the on-disk settings file.
type Settings struct {
	Theme                 string `json:"theme"`
	ShuffleOnLoad         bool   `json:"shuffle_on_load"`
	AutoplayOnLoad        bool   `json:"autoplay_on_load"`
	RecursiveScan         bool   `json:"recursive_scan"`
	DefaultVolume         int    `json:"default_volume"`
	UseDefaultDownloadDir bool   `json:"use_default_download_dir"`
	DownloadDir           string `json:"download_dir"`
	ShowTrackStats        bool   `json:"show_track_stats"`
}

// DefaultSettings returns the settings used before anything is persisted.
func DefaultSettings() Settings {
	return Settings{
		Theme:                 "pitch_black",
		ShuffleOnLoad:         true,
		AutoplayOnLoad:        true,
		RecursiveScan:         true,
		DefaultVolume:         58,
		UseDefaultDownloadDir: true,
		ShowTrackStats:        true,
	}
}
