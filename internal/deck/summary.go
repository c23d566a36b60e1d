package deck

import (
	"slices"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
	"github.com/ramonehamilton/deckbuilder/internal/cards/ordering"
)

// CardLookup resolves card IDs against a catalog.
type CardLookup interface {
	Lookup(id string) (cards.Card, bool)
}

// Index is an in-memory CardLookup keyed by card ID.
type Index map[string]cards.Card

// NewIndex builds an Index from a card list.
func NewIndex(list []cards.Card) Index {
	idx := make(Index, len(list))
	for _, c := range list {
		idx[c.ID] = c
	}
	return idx
}

// Lookup implements CardLookup.
func (idx Index) Lookup(id string) (cards.Card, bool) {
	c, ok := idx[id]
	return c, ok
}

// Entry is one deck line: a resolved card and its count.
type Entry struct {
	Card  cards.Card `json:"card"`
	Count int        `json:"count"`
}

// Listing is the deck resolved against a catalog.
type Listing struct {
	Leader  *cards.Card `json:"leader,omitempty"`
	Entries []Entry     `json:"entries"`
	Unknown []string    `json:"unknown_ids,omitempty"`
}

// Entries resolves the deck against lookup and orders it with the
// deck-display comparator. IDs missing from the catalog are returned in
// Unknown, sorted.
func Entries(state State, lookup CardLookup) Listing {
	listing := Listing{Entries: make([]Entry, 0, len(state.Deck))}

	resolved := make([]cards.Card, 0, len(state.Deck))
	for id := range state.Deck {
		c, ok := lookup.Lookup(id)
		if !ok {
			listing.Unknown = append(listing.Unknown, id)
			continue
		}
		resolved = append(resolved, c)
	}
	slices.Sort(listing.Unknown)

	ordering.Deck().Sort(resolved)
	for _, c := range resolved {
		listing.Entries = append(listing.Entries, Entry{Card: c, Count: state.Deck[c.ID]})
	}

	if leaderID := state.Leader(); leaderID != "" {
		if c, ok := lookup.Lookup(leaderID); ok {
			listing.Leader = &c
		}
	}
	return listing
}

// CostBucket is one bar of the cost curve.
type CostBucket struct {
	Cost  int `json:"cost"`
	Count int `json:"count"`
}

// Summary describes a deck's size and composition.
type Summary struct {
	TotalCards   int            `json:"total_cards"`
	MainCards    int            `json:"main_cards"`
	TargetSize   int            `json:"target_size"`
	HasLeader    bool           `json:"has_leader"`
	UniqueCards  int            `json:"unique_cards"`
	CostCurve    []CostBucket   `json:"cost_curve"`
	ColorCounts  map[string]int `json:"color_counts"`
	TypeCounts   map[string]int `json:"type_counts"`
	UnknownCards int            `json:"unknown_cards"`
}

// Summarize computes the deck's totals, cost curve and color and type
// breakdowns. Leader copies count toward TotalCards but not MainCards or the
// cost curve.
func Summarize(state State, lookup CardLookup) Summary {
	s := Summary{
		TotalCards:  state.Deck.Total(),
		TargetSize:  TargetSize,
		HasLeader:   state.Leader() != "",
		UniqueCards: len(state.Deck),
		ColorCounts: make(map[string]int),
		TypeCounts:  make(map[string]int),
	}

	curve := make(map[int]int)
	for id, n := range state.Deck {
		c, ok := lookup.Lookup(id)
		if !ok {
			s.UnknownCards += n
			continue
		}
		s.TypeCounts[string(c.Type)] += n
		for _, color := range c.Colors {
			s.ColorCounts[color] += n
		}
		if c.IsLeader() {
			continue
		}
		s.MainCards += n
		curve[c.Cost] += n
	}

	s.CostCurve = make([]CostBucket, 0, len(curve))
	for cost, n := range curve {
		s.CostCurve = append(s.CostCurve, CostBucket{Cost: cost, Count: n})
	}
	slices.SortFunc(s.CostCurve, func(a, b CostBucket) int { return a.Cost - b.Cost })
	return s
}
