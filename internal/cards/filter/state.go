// Package filter derives the admissible subset of a catalog for a filter state
// and an optional active leader.
package filter

import (
	"fmt"
	"slices"
	"strings"
)

// Variant selects one of the two historical filter-state shapes.
type Variant string

const (
	// VariantRange uses min/max bounds for cost, power and counter and a
	// boolean parallel-only flag. Text search covers name, effect and feature.
	VariantRange Variant = "range"

	// VariantFacet uses multi-select cost and counter sets and a tri-state
	// parallel mode. Text search also covers trigger text.
	VariantFacet Variant = "facet"
)

// ParseVariant validates a variant name. An empty name selects VariantFacet.
func ParseVariant(name string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(name))) {
	case "", VariantFacet:
		return VariantFacet, nil
	case VariantRange:
		return VariantRange, nil
	default:
		return "", fmt.Errorf("unknown filter variant %q", name)
	}
}

// ParallelMode controls how parallel printings are shown in VariantFacet.
type ParallelMode string

const (
	ParallelNormal   ParallelMode = "normal"
	ParallelOnly     ParallelMode = "parallel"
	ParallelAndBasic ParallelMode = "both"
)

// ParseParallelMode validates a parallel mode.
func ParseParallelMode(mode string) (ParallelMode, error) {
	switch m := ParallelMode(mode); m {
	case ParallelNormal, ParallelOnly, ParallelAndBasic:
		return m, nil
	default:
		return "", fmt.Errorf("unknown parallel mode %q", mode)
	}
}

// State is the set of independently settable filter criteria. Empty
// selections and nil bounds impose no constraint.
type State struct {
	Query      string   `json:"search_query"`
	Colors     []string `json:"color"`
	Rarities   []string `json:"rarity"`
	Types      []string `json:"card_type"`
	Attributes []string `json:"attribute"`
	Features   []string `json:"feature"`
	BlockIcons []string `json:"block_icon"`
	SeriesIDs  []string `json:"series_id"`
	Triggers   []string `json:"trigger"`

	// VariantFacet only.
	Costs        []int        `json:"cost,omitempty"`
	Counters     []int        `json:"counter,omitempty"`
	ParallelMode ParallelMode `json:"parallel_mode,omitempty"`

	// VariantRange only.
	CostMin      *int `json:"cost_min,omitempty"`
	CostMax      *int `json:"cost_max,omitempty"`
	PowerMin     *int `json:"bp_min,omitempty"`
	PowerMax     *int `json:"bp_max,omitempty"`
	CounterMin   *int `json:"counter_min,omitempty"`
	CounterMax   *int `json:"counter_max,omitempty"`
	ParallelOnly bool `json:"is_parallel_only,omitempty"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := s
	out.Colors = slices.Clone(s.Colors)
	out.Rarities = slices.Clone(s.Rarities)
	out.Types = slices.Clone(s.Types)
	out.Attributes = slices.Clone(s.Attributes)
	out.Features = slices.Clone(s.Features)
	out.BlockIcons = slices.Clone(s.BlockIcons)
	out.SeriesIDs = slices.Clone(s.SeriesIDs)
	out.Triggers = slices.Clone(s.Triggers)
	out.Costs = slices.Clone(s.Costs)
	out.Counters = slices.Clone(s.Counters)
	out.CostMin = cloneInt(s.CostMin)
	out.CostMax = cloneInt(s.CostMax)
	out.PowerMin = cloneInt(s.PowerMin)
	out.PowerMax = cloneInt(s.PowerMax)
	out.CounterMin = cloneInt(s.CounterMin)
	out.CounterMax = cloneInt(s.CounterMax)
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Int returns a pointer to v, for building range bounds.
func Int(v int) *int {
	return &v
}
