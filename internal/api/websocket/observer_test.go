package websocket

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ramonehamilton/deckbuilder/internal/events"
)

func TestWebSocketObserver_Basics(t *testing.T) {
	observer := NewWebSocketObserver(NewHub())

	if observer.GetName() != "WebSocketObserver" {
		t.Errorf("Expected 'WebSocketObserver', got '%s'", observer.GetName())
	}
	for _, eventType := range []string{events.TypeSessionUpdated, events.TypeCatalogReloaded, "custom:event"} {
		if !observer.ShouldHandle(eventType) {
			t.Errorf("Expected ShouldHandle(%s) to return true", eventType)
		}
	}
}

func TestWebSocketObserver_OnEvent_NilHub(t *testing.T) {
	observer := &WebSocketObserver{name: "TestObserver"}

	if err := observer.OnEvent(events.Event{Type: "test:event"}); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestWebSocketObserver_ForwardsThroughDispatcher(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url+"?session=s1")
	waitForClients(t, hub, 1)

	dispatcher := events.NewEventDispatcher()
	dispatcher.Register(NewWebSocketObserver(hub))

	dispatcher.Dispatch(events.NewSessionEvent(context.Background(), events.TypeSessionUpdated, "s1",
		events.SessionUpdatedEvent{Version: 7, Reason: events.ReasonImport, TotalCards: 51}))

	ev, ok := readEvent(t, conn)
	if !ok {
		t.Fatal("no event received")
	}
	if ev.Type != events.TypeSessionUpdated || ev.SessionID != "s1" {
		t.Errorf("unexpected frame %+v", ev)
	}

	raw, err := json.Marshal(ev.Data)
	if err != nil {
		t.Fatalf("re-marshal data: %v", err)
	}
	var payload events.SessionUpdatedEvent
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Version != 7 || payload.Reason != events.ReasonImport || payload.TotalCards != 51 {
		t.Errorf("unexpected payload %+v", payload)
	}
}
