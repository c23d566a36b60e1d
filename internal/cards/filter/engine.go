package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
)

// Engine evaluates filter states for one variant.
type Engine struct {
	variant Variant
}

// NewEngine creates an engine for the given variant.
func NewEngine(variant Variant) *Engine {
	if variant == "" {
		variant = VariantFacet
	}
	return &Engine{variant: variant}
}

// Variant returns the variant this engine was built for.
func (e *Engine) Variant() Variant {
	return e.variant
}

// NewState returns the default state for the engine's variant.
func (e *Engine) NewState() State {
	return defaultState(e.variant)
}

func defaultState(v Variant) State {
	if v == VariantFacet {
		return State{ParallelMode: ParallelNormal}
	}
	return State{}
}

// Apply returns a copy of state with u applied. The input state is not modified.
func (e *Engine) Apply(state State, u Update) (State, error) {
	if u == nil {
		return state, fmt.Errorf("%w: nil update", ErrUnknownField)
	}
	if !u.Field().Supports(e.variant) {
		return state, fmt.Errorf("%w: %q in %s variant", ErrUnsupportedUpdate, u.Field(), e.variant)
	}
	next := state.Clone()
	u.apply(&next, e.variant)
	return next, nil
}

type predicate func(cards.Card) bool

// Filter returns the cards admitted by state, in input order. When leaderID
// names a card in list, every non-LEADER card must share at least one color
// with that leader regardless of the other criteria.
func (e *Engine) Filter(list []cards.Card, state State, leaderID string) []cards.Card {
	preds := make([]predicate, 0, 16)
	if lock := leaderLock(list, leaderID); lock != nil {
		preds = append(preds, lock)
	}
	preds = append(preds, e.predicates(state)...)

	out := make([]cards.Card, 0, len(list))
	for _, c := range list {
		if admits(preds, c) {
			out = append(out, c)
		}
	}
	return out
}

// Matches reports whether a single card passes state, ignoring any leader lock.
func (e *Engine) Matches(c cards.Card, state State) bool {
	return admits(e.predicates(state), c)
}

func admits(preds []predicate, c cards.Card) bool {
	for _, p := range preds {
		if !p(c) {
			return false
		}
	}
	return true
}

func leaderLock(list []cards.Card, leaderID string) predicate {
	if leaderID == "" {
		return nil
	}
	idx := slices.IndexFunc(list, func(c cards.Card) bool { return c.ID == leaderID })
	if idx < 0 {
		return nil
	}
	leader := list[idx]
	return func(c cards.Card) bool {
		return c.IsLeader() || c.SharesColor(leader)
	}
}

func (e *Engine) predicates(s State) []predicate {
	var preds []predicate

	if q := strings.ToLower(s.Query); q != "" {
		withTrigger := e.variant == VariantFacet
		preds = append(preds, func(c cards.Card) bool {
			return matchesQuery(c, q, withTrigger)
		})
	}

	preds = appendMulti(preds, s.Colors, func(c cards.Card) []string { return c.Colors })
	preds = appendMulti(preds, s.Rarities, func(c cards.Card) []string { return single(c.Rarity) })
	preds = appendMulti(preds, normalizeTypes(s.Types), func(c cards.Card) []string { return single(string(c.Type)) })
	preds = appendMulti(preds, s.Attributes, func(c cards.Card) []string { return c.Attributes })
	preds = appendMulti(preds, s.Features, func(c cards.Card) []string { return c.Features })
	preds = appendMulti(preds, s.BlockIcons, func(c cards.Card) []string { return single(c.BlockIcon) })
	preds = appendMulti(preds, s.SeriesIDs, func(c cards.Card) []string { return single(c.SeriesID) })
	preds = appendMulti(preds, s.Triggers, func(c cards.Card) []string { return single(c.Trigger) })

	switch e.variant {
	case VariantFacet:
		if len(s.Costs) > 0 {
			preds = append(preds, func(c cards.Card) bool {
				return slices.Contains(s.Costs, c.Cost)
			})
		}
		if len(s.Counters) > 0 {
			preds = append(preds, func(c cards.Card) bool {
				return c.Counter != nil && slices.Contains(s.Counters, *c.Counter)
			})
		}
		switch s.ParallelMode {
		case ParallelNormal:
			preds = append(preds, func(c cards.Card) bool { return !c.IsParallel })
		case ParallelOnly:
			preds = append(preds, func(c cards.Card) bool { return c.IsParallel })
		}
	case VariantRange:
		preds = appendRange(preds, s.CostMin, s.CostMax, func(c cards.Card) *int { return &c.Cost })
		preds = appendRange(preds, s.PowerMin, s.PowerMax, func(c cards.Card) *int { return c.Power })
		preds = appendRange(preds, s.CounterMin, s.CounterMax, func(c cards.Card) *int { return c.Counter })
		if s.ParallelOnly {
			preds = append(preds, func(c cards.Card) bool { return c.IsParallel })
		}
	}

	return preds
}

func matchesQuery(c cards.Card, q string, withTrigger bool) bool {
	fields := []string{c.Name, c.Effect, strings.Join(c.Features, cards.ValueSeparator)}
	if withTrigger {
		fields = append(fields, c.Trigger)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func appendMulti(preds []predicate, selected []string, values func(cards.Card) []string) []predicate {
	if len(selected) == 0 {
		return preds
	}
	want := slices.Clone(selected)
	return append(preds, func(c cards.Card) bool {
		return cards.Intersects(values(c), want)
	})
}

// appendRange adds independent >= min and <= max checks. A card whose value
// is absent skips the range entirely rather than being treated as zero.
func appendRange(preds []predicate, minV, maxV *int, value func(cards.Card) *int) []predicate {
	if minV == nil && maxV == nil {
		return preds
	}
	lo, hi := cloneInt(minV), cloneInt(maxV)
	return append(preds, func(c cards.Card) bool {
		v := value(c)
		if v == nil {
			return true
		}
		if lo != nil && *v < *lo {
			return false
		}
		if hi != nil && *v > *hi {
			return false
		}
		return true
	})
}

func single(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

func normalizeTypes(selected []string) []string {
	if len(selected) == 0 {
		return nil
	}
	out := make([]string, len(selected))
	for i, t := range selected {
		out[i] = string(cards.ParseType(t))
	}
	return out
}
