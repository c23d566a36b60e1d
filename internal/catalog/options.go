package catalog

import (
	"cmp"
	"slices"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
)

// Options lists the distinct values present in the catalog for each facet,
// sorted, for building filter controls.
type Options struct {
	Colors     []string `json:"colors"`
	Rarities   []string `json:"rarities"`
	Types      []string `json:"card_types"`
	Costs      []int    `json:"costs"`
	Counters   []int    `json:"counters"`
	Attributes []string `json:"attributes"`
	Features   []string `json:"features"`
	BlockIcons []string `json:"block_icons"`
	SeriesIDs  []string `json:"series_ids"`
	Triggers   []string `json:"triggers"`
}

func deriveOptions(list []cards.Card) Options {
	costs, counters := set[int]{}, set[int]{}
	attributes, features, blockIcons := set[string]{}, set[string]{}, set[string]{}
	seriesIDs, triggers, rarities, colorSet := set[string]{}, set[string]{}, set[string]{}, set[string]{}

	for _, c := range list {
		costs.add(c.Cost)
		if c.Counter != nil {
			counters.add(*c.Counter)
		}
		attributes.add(c.Attributes...)
		features.add(c.Features...)
		blockIcons.add(c.BlockIcon)
		seriesIDs.add(c.SeriesID)
		triggers.add(c.Trigger)
		rarities.add(c.Rarity)
		colorSet.add(c.Colors...)
	}

	return Options{
		Colors:     ordered(colorSet, cards.AllColors),
		Rarities:   ordered(rarities, cards.AllRarities),
		Types:      typeNames(),
		Costs:      sorted(costs),
		Counters:   sorted(counters),
		Attributes: sorted(attributes),
		Features:   sorted(features),
		BlockIcons: sorted(blockIcons),
		SeriesIDs:  sorted(seriesIDs),
		Triggers:   sorted(triggers),
	}
}

type set[T cmp.Ordered] map[T]struct{}

// add inserts values. Empty strings are skipped; numeric zero is kept.
func (s set[T]) add(values ...T) {
	for _, v := range values {
		if str, ok := any(v).(string); ok && str == "" {
			continue
		}
		s[v] = struct{}{}
	}
}

func sorted[T cmp.Ordered](s set[T]) []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// ordered lists the known values in their canonical order, then any unknown
// values sorted.
func ordered(s set[string], known []string) []string {
	out := make([]string, 0, len(s))
	for _, v := range known {
		if _, ok := s[v]; ok {
			out = append(out, v)
		}
	}
	var rest []string
	for v := range s {
		if !slices.Contains(known, v) {
			rest = append(rest, v)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}

func typeNames() []string {
	out := make([]string, len(cards.AllTypes))
	for i, t := range cards.AllTypes {
		out[i] = string(t)
	}
	return out
}
