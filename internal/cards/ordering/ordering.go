// Package ordering builds sort keys and comparators for catalog and deck listings.
//
// Two incompatible catalog orderings exist. Only one is used per process;
// it is chosen from configuration at startup.
package ordering

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
)

// Scheme names a catalog ordering.
type Scheme string

const (
	// SchemeGrouping orders single-color cards by color, then every
	// multicolor card after all single-color groups.
	SchemeGrouping Scheme = "grouping"

	// SchemeDisplay orders by primary color, then type, then the secondary
	// color of multicolor cards.
	SchemeDisplay Scheme = "display"
)

// ParseScheme validates a scheme name. An empty name selects SchemeGrouping.
func ParseScheme(name string) (Scheme, error) {
	switch Scheme(strings.ToLower(strings.TrimSpace(name))) {
	case "", SchemeGrouping:
		return SchemeGrouping, nil
	case SchemeDisplay:
		return SchemeDisplay, nil
	default:
		return "", fmt.Errorf("unknown sort scheme %q", name)
	}
}

// Key is a sort key tuple. Earlier elements dominate later ones.
type Key []int

// CompareKeys compares two keys lexicographically. A shorter key that is a
// prefix of a longer one sorts first.
func CompareKeys(a, b Key) int {
	return slices.Compare(a, b)
}

// KeyFunc maps a card to its sort key.
type KeyFunc func(cards.Card) Key

// Comparator orders cards by key, breaking ties with an ordinal ID compare.
type Comparator struct {
	key KeyFunc
}

// NewComparator returns a comparator over the given key function.
func NewComparator(key KeyFunc) Comparator {
	return Comparator{key: key}
}

// Key returns the sort key of c.
func (cmp Comparator) Key(c cards.Card) Key {
	return cmp.key(c)
}

// Compare returns -1, 0 or 1.
func (cmp Comparator) Compare(a, b cards.Card) int {
	if c := CompareKeys(cmp.key(a), cmp.key(b)); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Sort orders list in place.
func (cmp Comparator) Sort(list []cards.Card) {
	slices.SortStableFunc(list, cmp.Compare)
}

// Sorted returns a sorted copy of list.
func (cmp Comparator) Sorted(list []cards.Card) []cards.Card {
	out := slices.Clone(list)
	cmp.Sort(out)
	return out
}

// ForScheme returns the catalog comparator for s.
func ForScheme(s Scheme) Comparator {
	switch s {
	case SchemeDisplay:
		return NewComparator(DisplayKey)
	default:
		return NewComparator(GroupingKey)
	}
}

// Deck returns the comparator used when listing a constructed deck: type,
// cost, then primary color.
func Deck() Comparator {
	return NewComparator(DeckKey)
}
