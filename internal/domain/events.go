// Package domain defines events for the event-driven architecture.
// Events replace direct callbacks and keep the playback, playlist, and
// metadata components loosely coupled.
package domain

import (
	"time"
)

// Event is the base interface for all events in the system.
type Event interface {
	// Type returns the event type identifier
	Type() EventType

	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// EventType is a string identifier for different event types.
type EventType string

// Event type constants define all possible events in the system.
const (
	// Playback events
	EventTrackStarted   EventType = "track.started"
	EventTrackStopped   EventType = "track.stopped"
	EventTrackCompleted EventType = "track.completed"
	EventVolumeChanged  EventType = "volume.changed"

	// Playlist events
	EventPlaylistUpdated EventType = "playlist.updated"
	EventStatUpdated     EventType = "stat.updated"

	// Metadata batch events
	EventMetadataResolved      EventType = "metadata.resolved"
	EventMetadataBatchFinished EventType = "metadata.batch_finished"
)

// EventHandler is a function that handles events.
type EventHandler func(event Event)

// SubscriptionID uniquely identifies an event subscription.
type SubscriptionID string

// baseEvent provides common event functionality.
type baseEvent struct {
	timestamp time.Time
}

// Timestamp returns when the event occurred.
func (e baseEvent) Timestamp() time.Time {
	return e.timestamp
}

func newBaseEvent() baseEvent {
	return baseEvent{timestamp: time.Now()}
}

// TrackStartedEvent is published when a playback session starts.
type TrackStartedEvent struct {
	baseEvent
	Path            string
	DurationSeconds float64
}

// Type returns the event type.
func (e TrackStartedEvent) Type() EventType {
	return EventTrackStarted
}

// NewTrackStartedEvent creates a new TrackStartedEvent.
func NewTrackStartedEvent(path string, durationSeconds float64) TrackStartedEvent {
	return TrackStartedEvent{
		baseEvent:       newBaseEvent(),
		Path:            path,
		DurationSeconds: durationSeconds,
	}
}

// TrackStoppedEvent is published when playback is stopped explicitly.
// It is never published for natural completion.
type TrackStoppedEvent struct {
	baseEvent
	Path string
}

// Type returns the event type.
func (e TrackStoppedEvent) Type() EventType {
	return EventTrackStopped
}

// NewTrackStoppedEvent creates a new TrackStoppedEvent.
func NewTrackStoppedEvent(path string) TrackStoppedEvent {
	return TrackStoppedEvent{baseEvent: newBaseEvent(), Path: path}
}

// TrackCompletedEvent is published exactly once when a track finishes
// playing naturally. Stopping a session never publishes it.
type TrackCompletedEvent struct {
	baseEvent
	Path string
}

// Type returns the event type.
func (e TrackCompletedEvent) Type() EventType {
	return EventTrackCompleted
}

// NewTrackCompletedEvent creates a new TrackCompletedEvent.
func NewTrackCompletedEvent(path string) TrackCompletedEvent {
	return TrackCompletedEvent{baseEvent: newBaseEvent(), Path: path}
}

// VolumeChangedEvent is published when the playback volume changes.
type VolumeChangedEvent struct {
	baseEvent
	Volume float64 // 0.0 to 1.0
}

// Type returns the event type.
func (e VolumeChangedEvent) Type() EventType {
	return EventVolumeChanged
}

// NewVolumeChangedEvent creates a new VolumeChangedEvent.
func NewVolumeChangedEvent(volume float64) VolumeChangedEvent {
	return VolumeChangedEvent{baseEvent: newBaseEvent(), Volume: volume}
}

// PlaylistUpdatedEvent is published when the playlist order or content changes.
type PlaylistUpdatedEvent struct {
	baseEvent
	Playlist []string
	Index    int
	Seed     string // Shuffle seed in effect, empty if unshuffled
}

// Type returns the event type.
func (e PlaylistUpdatedEvent) Type() EventType {
	return EventPlaylistUpdated
}

// NewPlaylistUpdatedEvent creates a new PlaylistUpdatedEvent.
func NewPlaylistUpdatedEvent(playlist []string, index int, seed string) PlaylistUpdatedEvent {
	return PlaylistUpdatedEvent{
		baseEvent: newBaseEvent(),
		Playlist:  playlist,
		Index:     index,
		Seed:      seed,
	}
}

// StatUpdatedEvent is published after a song counter is incremented and persisted.
type StatUpdatedEvent struct {
	baseEvent
	Name  string
	Kind  StatKind
	Stats SongStats
}

// Type returns the event type.
func (e StatUpdatedEvent) Type() EventType {
	return EventStatUpdated
}

// NewStatUpdatedEvent creates a new StatUpdatedEvent.
func NewStatUpdatedEvent(name string, kind StatKind, stats SongStats) StatUpdatedEvent {
	return StatUpdatedEvent{baseEvent: newBaseEvent(), Name: name, Kind: kind, Stats: stats}
}

// MetadataResolvedEvent is published for each track a metadata batch resolves.
// Consumers must discard events whose Generation is stale.
type MetadataResolvedEvent struct {
	baseEvent
	Generation uint64
	Key        string // Canonicalized absolute path
	Metadata   AudioMetadata
	Art        []byte // PNG bytes, nil when no art was found
}

// Type returns the event type.
func (e MetadataResolvedEvent) Type() EventType {
	return EventMetadataResolved
}

// NewMetadataResolvedEvent creates a new MetadataResolvedEvent.
func NewMetadataResolvedEvent(generation uint64, key string, metadata AudioMetadata, art []byte) MetadataResolvedEvent {
	return MetadataResolvedEvent{
		baseEvent:  newBaseEvent(),
		Generation: generation,
		Key:        key,
		Metadata:   metadata,
		Art:        art,
	}
}

// MetadataBatchFinishedEvent is published when a metadata batch runs to
// completion. Cancelled batches do not publish it.
type MetadataBatchFinishedEvent struct {
	baseEvent
	Generation uint64
}

// Type returns the event type.
func (e MetadataBatchFinishedEvent) Type() EventType {
	return EventMetadataBatchFinished
}

// NewMetadataBatchFinishedEvent creates a new MetadataBatchFinishedEvent.
func NewMetadataBatchFinishedEvent(generation uint64) MetadataBatchFinishedEvent {
	return MetadataBatchFinishedEvent{baseEvent: newBaseEvent(), Generation: generation}
}
