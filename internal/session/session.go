// Package session owns the per-client editing state: the deck being built,
// the active filters and a version that increases with every change.
package session

import (
	"sync"
	"time"

	"github.com/ramonehamilton/deckbuilder/internal/cards/filter"
	"github.com/ramonehamilton/deckbuilder/internal/deck"
)

// Snapshot is an immutable copy of a session's state.
type Snapshot struct {
	ID        string       `json:"id"`
	Deck      deck.State   `json:"deck"`
	Filters   filter.State `json:"filters"`
	Version   uint64       `json:"version"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Session holds one client's state behind a mutex. All writes go through
// Update so that each change is a read-modify-write of the latest state.
type Session struct {
	id        string
	createdAt time.Time

	mu        sync.Mutex
	deck      deck.State
	filters   filter.State
	version   uint64
	updatedAt time.Time
}

func newSession(id string, filters filter.State, now time.Time) *Session {
	return &Session{
		id:        id,
		createdAt: now,
		deck:      deck.NewState(),
		filters:   filters,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:        s.id,
		Deck:      s.deck.Clone(),
		Filters:   s.filters.Clone(),
		Version:   s.version,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

// Mutation edits a working copy of the session state. Returning an error
// discards the copy.
type Mutation func(d *deck.State, f *filter.State) error

// Update applies fn to a copy of the latest state and commits it, bumping
// the version. When fn fails the session is left untouched.
func (s *Session) Update(fn Mutation) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.deck.Clone()
	f := s.filters.Clone()
	if err := fn(&d, &f); err != nil {
		return s.snapshotLocked(), err
	}

	s.deck = d
	s.filters = f
	s.version++
	s.updatedAt = time.Now()
	return s.snapshotLocked(), nil
}

// Replace swaps the whole deck state, keeping the filters.
func (s *Session) Replace(state deck.State) Snapshot {
	snap, _ := s.Update(func(d *deck.State, _ *filter.State) error {
		*d = state.Clone()
		return nil
	})
	return snap
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}
