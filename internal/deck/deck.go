// Package deck holds the deck count map and the single mutation path that
// enforces copy limits and leader selection.
package deck

import (
	"maps"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
)

const (
	// DefaultMaxCopies is the per-card copy limit for non-leader cards.
	DefaultMaxCopies = 4

	// DefaultMaxLeaderCopies is the copy limit for LEADER cards.
	DefaultMaxLeaderCopies = 1

	// TargetSize is the number of cards a finished deck should hold.
	TargetSize = 50
)

// CountMap maps a card ID to a positive number of copies. A missing key
// means zero copies; a key is never stored with a non-positive value.
type CountMap map[string]int

// Clone returns an independent copy of m. A nil map clones to an empty map.
func (m CountMap) Clone() CountMap {
	out := make(CountMap, len(m))
	maps.Copy(out, m)
	return out
}

// Total returns the sum of all counts.
func (m CountMap) Total() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// Normalize returns a copy of m without empty IDs or non-positive counts.
func (m CountMap) Normalize() CountMap {
	out := make(CountMap, len(m))
	for id, n := range m {
		if id != "" && n > 0 {
			out[id] = n
		}
	}
	return out
}

// State is the deck half of a session: the count map and the active leader.
type State struct {
	Deck     CountMap `json:"deckList"`
	LeaderID *string  `json:"leaderId"`
}

// NewState returns an empty deck with no leader.
func NewState() State {
	return State{Deck: CountMap{}}
}

// Leader returns the active leader ID, or "" when none is set.
func (s State) Leader() string {
	if s.LeaderID == nil {
		return ""
	}
	return *s.LeaderID
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{Deck: s.Deck.Clone()}
	if s.LeaderID != nil {
		id := *s.LeaderID
		out.LeaderID = &id
	}
	return out
}

// Count returns the number of copies of id in the deck.
func (s State) Count(id string) int {
	return s.Deck[id]
}

// Rules configures the copy limits applied by ApplyDelta.
type Rules struct {
	MaxCopies       int
	MaxLeaderCopies int

	// ClearPreviousLeader removes the outgoing leader's copies when another
	// leader is selected. When false the outgoing leader's count stays in the
	// map even though it is no longer the active leader.
	ClearPreviousLeader bool
}

// DefaultRules returns the standard limits of 4 copies and 1 leader.
func DefaultRules() Rules {
	return Rules{
		MaxCopies:       DefaultMaxCopies,
		MaxLeaderCopies: DefaultMaxLeaderCopies,
	}
}

func (r Rules) limit(c cards.Card) int {
	if c.IsLeader() {
		if r.MaxLeaderCopies > 0 {
			return r.MaxLeaderCopies
		}
		return DefaultMaxLeaderCopies
	}
	if r.MaxCopies > 0 {
		return r.MaxCopies
	}
	return DefaultMaxCopies
}

// Limit returns the maximum number of copies of c allowed in a deck.
func (r Rules) Limit(c cards.Card) int {
	return r.limit(c)
}

// ApplyDelta returns the state that results from adding delta copies of c.
// The count is clamped to [0, limit]; over- and under-shoot are absorbed
// silently. Selecting a LEADER card makes it the active leader, and removing
// the active leader's last copy clears it. The input state is not modified.
func (r Rules) ApplyDelta(state State, c cards.Card, delta int) State {
	next := state.Clone()

	// Compare against the distance to each bound so delta never overflows.
	current, limit := next.Deck[c.ID], r.limit(c)
	var count int
	switch {
	case delta >= limit-current:
		count = limit
	case delta <= -current:
		count = 0
	default:
		count = current + delta
	}

	if count == 0 {
		delete(next.Deck, c.ID)
	} else {
		next.Deck[c.ID] = count
	}

	if !c.IsLeader() {
		return next
	}

	switch {
	case count > 0:
		if prev := next.Leader(); r.ClearPreviousLeader && prev != "" && prev != c.ID {
			delete(next.Deck, prev)
		}
		id := c.ID
		next.LeaderID = &id
	case next.Leader() == c.ID:
		next.LeaderID = nil
	}
	return next
}

// CanAdd reports whether one more copy of c would change the deck.
func (r Rules) CanAdd(state State, c cards.Card) bool {
	return state.Count(c.ID) < r.limit(c)
}

// CanRemove reports whether the deck holds at least one copy of c.
func (r Rules) CanRemove(state State, c cards.Card) bool {
	return state.Count(c.ID) > 0
}
