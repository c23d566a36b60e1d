// Package events distributes session and catalog change notifications to
// registered observers.
package events

import (
	"context"
	"log"
	"sync"
)

// Event is a change notification.
type Event struct {
	// Type is the event type, e.g. "session:updated".
	Type string

	// SessionID scopes the event to one editing session. Empty for global
	// events such as catalog reloads.
	SessionID string

	// Data is the typed payload, one of the *Event structs in messages.go.
	Data any

	Context context.Context
}

// Observer is notified of dispatched events.
type Observer interface {
	// OnEvent handles one event. Errors are logged by the dispatcher.
	OnEvent(event Event) error

	// GetName returns a human-readable name for logging.
	GetName() string

	// ShouldHandle filters the event types this observer receives.
	ShouldHandle(eventType string) bool
}

// EventDispatcher fans events out to observers. Safe for concurrent use.
type EventDispatcher struct {
	observers []Observer
	mu        sync.RWMutex
}

// NewEventDispatcher creates an empty dispatcher.
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		observers: make([]Observer, 0),
	}
}

// Register adds an observer.
func (d *EventDispatcher) Register(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.observers = append(d.observers, observer)
	log.Printf("[EventDispatcher] Registered observer: %s", observer.GetName())
}

// Unregister removes an observer.
func (d *EventDispatcher) Unregister(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i, obs := range d.observers {
		if obs == observer {
			d.observers = append(d.observers[:i], d.observers[i+1:]...)
			log.Printf("[EventDispatcher] Unregistered observer: %s", observer.GetName())
			return
		}
	}
}

// Dispatch notifies observers sequentially, in registration order. A failing
// observer is logged and does not stop the others.
func (d *EventDispatcher) Dispatch(event Event) {
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		if err := observer.OnEvent(event); err != nil {
			log.Printf("[EventDispatcher] Observer %s failed to handle event %s: %v",
				observer.GetName(), event.Type, err)
		}
	}
}

// DispatchAsync notifies each observer on its own goroutine.
func (d *EventDispatcher) DispatchAsync(event Event) {
	for _, observer := range d.snapshot() {
		if !observer.ShouldHandle(event.Type) {
			continue
		}
		go func(obs Observer) {
			if err := obs.OnEvent(event); err != nil {
				log.Printf("[EventDispatcher] Observer %s failed to handle event %s: %v",
					obs.GetName(), event.Type, err)
			}
		}(observer)
	}
}

func (d *EventDispatcher) snapshot() []Observer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	observers := make([]Observer, len(d.observers))
	copy(observers, d.observers)
	return observers
}

// ObserverCount returns the number of registered observers.
func (d *EventDispatcher) ObserverCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.observers)
}

// Clear removes all observers.
func (d *EventDispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = make([]Observer, 0)
	log.Printf("[EventDispatcher] Cleared all observers")
}

// NewSessionEvent creates an event scoped to a session.
func NewSessionEvent[T any](ctx context.Context, eventType, sessionID string, data T) Event {
	return Event{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
		Context:   ctx,
	}
}

// NewGlobalEvent creates an event that is not tied to a session.
func NewGlobalEvent[T any](ctx context.Context, eventType string, data T) Event {
	return NewSessionEvent(ctx, eventType, "", data)
}

// GetTypedData extracts the payload as T.
func GetTypedData[T any](event Event) (T, bool) {
	typed, ok := event.Data.(T)
	return typed, ok
}
