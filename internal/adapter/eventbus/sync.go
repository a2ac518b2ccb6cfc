// Package eventbus provides the synchronous EventBus implementation.
package eventbus

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/sabrinth/player/internal/domain"
	"github.com/sabrinth/player/internal/ports"
)

// SyncEventBus delivers events to handlers synchronously in subscription
// order.
//
// Thread-safety: publish and subscribe may be called from multiple
// goroutines concurrently. Handlers run on the publisher's goroutine, so
// slow handlers block delivery.
type SyncEventBus struct {
	logger *slog.Logger

	// subscribers maps event types to their subscriptions
	subscribers map[domain.EventType][]subscription

	// allSubscribers receive every event
	allSubscribers []subscription

	mu     sync.RWMutex
	closed bool
}

type subscription struct {
	id      domain.SubscriptionID
	handler domain.EventHandler
}

// NewSyncEventBus creates a new synchronous event bus.
func NewSyncEventBus() *SyncEventBus {
	return &SyncEventBus{
		subscribers: make(map[domain.EventType][]subscription),
	}
}

// SetLogger sets the logger for this event bus.
// Call after construction, before publishing.
func (bus *SyncEventBus) SetLogger(logger *slog.Logger) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.logger = logger
}

// Publish delivers an event to all subscribers of its type, then to
// wildcard subscribers. Panics in handlers are recovered and logged so one
// bad handler cannot stop the rest.
func (bus *SyncEventBus) Publish(event domain.Event) {
	if event == nil {
		return
	}

	bus.mu.RLock()
	if bus.closed {
		bus.mu.RUnlock()
		return
	}
	typed := make([]subscription, len(bus.subscribers[event.Type()]))
	copy(typed, bus.subscribers[event.Type()])
	wildcard := make([]subscription, len(bus.allSubscribers))
	copy(wildcard, bus.allSubscribers)
	bus.mu.RUnlock()

	for _, sub := range typed {
		bus.callHandler(sub.handler, event)
	}
	for _, sub := range wildcard {
		bus.callHandler(sub.handler, event)
	}
}

func (bus *SyncEventBus) callHandler(handler domain.EventHandler, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			if bus.logger != nil {
				bus.logger.Error("event handler panicked",
					slog.Any("panic", r),
					slog.String("event_type", string(event.Type())))
			}
		}
	}()

	handler(event)
}

// Subscribe registers a handler for events of the given type.
func (bus *SyncEventBus) Subscribe(eventType domain.EventType, handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	id := domain.SubscriptionID(uuid.NewString())
	bus.subscribers[eventType] = append(bus.subscribers[eventType], subscription{id: id, handler: handler})
	return id
}

// Unsubscribe removes a previously registered handler.
// Unknown IDs are a no-op.
func (bus *SyncEventBus) Unsubscribe(id domain.SubscriptionID) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for eventType, subs := range bus.subscribers {
		for i, sub := range subs {
			if sub.id == id {
				subs[i] = subs[len(subs)-1]
				bus.subscribers[eventType] = subs[:len(subs)-1]
				return
			}
		}
	}

	for i, sub := range bus.allSubscribers {
		if sub.id == id {
			bus.allSubscribers[i] = bus.allSubscribers[len(bus.allSubscribers)-1]
			bus.allSubscribers = bus.allSubscribers[:len(bus.allSubscribers)-1]
			return
		}
	}
}

// SubscribeAll registers a handler that receives every event.
func (bus *SyncEventBus) SubscribeAll(handler domain.EventHandler) domain.SubscriptionID {
	if handler == nil {
		panic("event handler cannot be nil")
	}

	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		panic("cannot subscribe to closed event bus")
	}

	id := domain.SubscriptionID(uuid.NewString())
	bus.allSubscribers = append(bus.allSubscribers, subscription{id: id, handler: handler})
	return id
}

// Close shuts down the bus and clears all subscriptions.
func (bus *SyncEventBus) Close() error {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	if bus.closed {
		return fmt.Errorf("event bus already closed")
	}

	bus.closed = true
	bus.subscribers = make(map[domain.EventType][]subscription)
	bus.allSubscribers = nil

	return nil
}

// SubscriberCount returns the number of active subscriptions, for debugging.
func (bus *SyncEventBus) SubscriberCount() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	count := len(bus.allSubscribers)
	for _, subs := range bus.subscribers {
		count += len(subs)
	}
	return count
}

// Verify that SyncEventBus implements the EventBus interface
var _ ports.EventBus = (*SyncEventBus)(nil)
