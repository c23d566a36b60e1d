package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
	"github.com/ramonehamilton/deckbuilder/internal/cards/filter"
	"github.com/ramonehamilton/deckbuilder/internal/deck"
	"github.com/ramonehamilton/deckbuilder/internal/events"
)

// ErrNotFound is returned for an unknown session ID.
var ErrNotFound = errors.New("session not found")

// Config configures a Manager.
type Config struct {
	Rules      deck.Rules
	Filters    *filter.Engine
	Dispatcher *events.EventDispatcher

	// MaxIdle is how long a session may go without changes before Prune
	// drops it. Zero keeps sessions forever.
	MaxIdle time.Duration
}

// Manager creates and tracks sessions and publishes their changes.
type Manager struct {
	rules      deck.Rules
	filters    *filter.Engine
	dispatcher *events.EventDispatcher
	maxIdle    time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(config Config) *Manager {
	if config.Filters == nil {
		config.Filters = filter.NewEngine(filter.VariantFacet)
	}
	if config.Rules == (deck.Rules{}) {
		config.Rules = deck.DefaultRules()
	}
	return &Manager{
		rules:      config.Rules,
		filters:    config.Filters,
		dispatcher: config.Dispatcher,
		maxIdle:    config.MaxIdle,
		sessions:   make(map[string]*Session),
	}
}

// Rules returns the deck rules sessions are edited with.
func (m *Manager) Rules() deck.Rules {
	return m.rules
}

// Filters returns the filter engine.
func (m *Manager) Filters() *filter.Engine {
	return m.filters
}

// Create starts a new empty session.
func (m *Manager) Create(ctx context.Context) *Session {
	s := newSession(uuid.NewString(), m.filters.NewState(), time.Now())

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	log.Printf("[Session] Created session %s", s.id)
	m.dispatch(events.NewSessionEvent(ctx, events.TypeSessionCreated, s.id, events.SessionCreatedEvent{ID: s.id}))
	return s
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Delete drops a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune removes sessions idle for longer than MaxIdle and returns how many
// were removed.
func (m *Manager) Prune(now time.Time) int {
	if m.maxIdle <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if now.Sub(s.idleSince()) > m.maxIdle {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[Session] Pruned %d idle sessions", removed)
	}
	return removed
}

// RunPruner calls Prune every interval until ctx is done.
func (m *Manager) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Prune(now)
		}
	}
}

// Update applies fn to the session and publishes the change.
func (m *Manager) Update(ctx context.Context, id, reason string, fn Mutation) (Snapshot, error) {
	s, err := m.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := s.Update(fn)
	if err != nil {
		return snap, err
	}
	m.published(ctx, snap, reason)
	return snap, nil
}

// ApplyDelta adds delta copies of c to the session's deck under the
// manager's rules.
func (m *Manager) ApplyDelta(ctx context.Context, id string, c cards.Card, delta int) (Snapshot, error) {
	return m.Update(ctx, id, events.ReasonDelta, func(d *deck.State, _ *filter.State) error {
		*d = m.rules.ApplyDelta(*d, c, delta)
		return nil
	})
}

// ApplyFilter applies typed filter updates in order. If any update is
// rejected none of them take effect.
func (m *Manager) ApplyFilter(ctx context.Context, id string, updates ...filter.Update) (Snapshot, error) {
	return m.Update(ctx, id, events.ReasonFilter, func(_ *deck.State, f *filter.State) error {
		next := *f
		for _, u := range updates {
			var err error
			if next, err = m.filters.Apply(next, u); err != nil {
				return err
			}
		}
		*f = next
		return nil
	})
}

// Replace swaps the session's deck, as after a load or an import.
func (m *Manager) Replace(ctx context.Context, id, reason string, state deck.State) (Snapshot, error) {
	s, err := m.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	snap := s.Replace(state)
	m.published(ctx, snap, reason)
	return snap, nil
}

func (m *Manager) published(ctx context.Context, snap Snapshot, reason string) {
	m.dispatch(events.NewSessionEvent(ctx, events.TypeSessionUpdated, snap.ID, events.SessionUpdatedEvent{
		Version:    snap.Version,
		Reason:     reason,
		TotalCards: snap.Deck.Deck.Total(),
		LeaderID:   snap.Deck.LeaderID,
	}))
}

func (m *Manager) dispatch(event events.Event) {
	if m.dispatcher != nil {
		m.dispatcher.Dispatch(event)
	}
}
