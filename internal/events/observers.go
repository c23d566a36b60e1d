package events

import (
	"log"
	"sync"
)

// LoggingObserver logs every event.
type LoggingObserver struct {
	name    string
	verbose bool
}

// NewLoggingObserver creates a logging observer. When verbose is set the
// payload is logged as well.
func NewLoggingObserver(verbose bool) *LoggingObserver {
	return &LoggingObserver{
		name:    "LoggingObserver",
		verbose: verbose,
	}
}

// OnEvent logs the event.
func (o *LoggingObserver) OnEvent(event Event) error {
	if o.verbose {
		log.Printf("[%s] Event: %s, Session: %s, Data: %+v", o.name, event.Type, event.SessionID, event.Data)
	} else {
		log.Printf("[%s] Event: %s", o.name, event.Type)
	}
	return nil
}

// GetName returns the observer's name.
func (o *LoggingObserver) GetName() string {
	return o.name
}

// ShouldHandle accepts every event type.
func (o *LoggingObserver) ShouldHandle(string) bool {
	return true
}

// RecordingObserver keeps the events it receives.
type RecordingObserver struct {
	name  string
	types map[string]bool

	mu     sync.Mutex
	events []Event
}

// NewRecordingObserver records events of the given types, or all events when
// none are given.
func NewRecordingObserver(name string, types ...string) *RecordingObserver {
	o := &RecordingObserver{name: name}
	if len(types) > 0 {
		o.types = make(map[string]bool, len(types))
		for _, t := range types {
			o.types[t] = true
		}
	}
	return o
}

// OnEvent records the event.
func (o *RecordingObserver) OnEvent(event Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return nil
}

// GetName returns the observer's name.
func (o *RecordingObserver) GetName() string {
	return o.name
}

// ShouldHandle reports whether the type is recorded.
func (o *RecordingObserver) ShouldHandle(eventType string) bool {
	return o.types == nil || o.types[eventType]
}

// Events returns a copy of the recorded events.
func (o *RecordingObserver) Events() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Event, len(o.events))
	copy(out, o.events)
	return out
}
