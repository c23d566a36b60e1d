package websocket

import (
	"log"

	"github.com/ramonehamilton/deckbuilder/internal/events"
)

// WebSocketObserver forwards dispatched events to the hub.
type WebSocketObserver struct {
	name string
	hub  *Hub
}

// NewWebSocketObserver creates an observer that broadcasts through hub.
func NewWebSocketObserver(hub *Hub) *WebSocketObserver {
	return &WebSocketObserver{
		name: "WebSocketObserver",
		hub:  hub,
	}
}

// OnEvent broadcasts the event, scoped to its session if it has one.
func (o *WebSocketObserver) OnEvent(event events.Event) error {
	if o.hub == nil {
		log.Printf("[%s] Cannot emit event %s: hub is nil", o.name, event.Type)
		return nil
	}

	o.hub.BroadcastEvent(Event{
		Type:      event.Type,
		SessionID: event.SessionID,
		Data:      event.Data,
	})
	return nil
}

// GetName returns the observer's name.
func (o *WebSocketObserver) GetName() string {
	return o.name
}

// ShouldHandle forwards every event type.
func (o *WebSocketObserver) ShouldHandle(string) bool {
	return true
}

var _ events.Observer = (*WebSocketObserver)(nil)
