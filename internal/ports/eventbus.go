// Package ports defines the EventBus interface for event-driven communication.
package ports

import (
	"github.com/sabrinth/player/internal/domain"
)

// EventBus decouples event producers (services) from consumers (the
// controlling application layer, logging). The end-of-track notification,
// playlist updates, and metadata batch results all travel through it.
//
// Thread-safety: implementations must be safe for concurrent publish and
// subscribe from multiple goroutines.
type EventBus interface {
	// Publish delivers an event to all subscribers of its type.
	// Handlers must process events quickly or dispatch to a background
	// goroutine; slow handlers block delivery.
	Publish(event domain.Event)

	// Subscribe registers a handler for events of the given type and
	// returns an ID usable with Unsubscribe.
	Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID

	// Unsubscribe removes a subscription. Unknown IDs are a no-op.
	Unsubscribe(id domain.SubscriptionID)

	// SubscribeAll registers a handler for every event regardless of type.
	// Useful for logging and debugging.
	SubscribeAll(handler domain.EventHandler) domain.SubscriptionID

	// Close shuts the bus down; further publishes are dropped.
	Close() error
}
