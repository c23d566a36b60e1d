package filter

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned when an update names a field that does not exist.
	ErrUnknownField = errors.New("unknown filter field")

	// ErrUnsupportedUpdate is returned when an update belongs to the other variant.
	ErrUnsupportedUpdate = errors.New("filter field not supported by this variant")
)

// Field is the wire name of a filter field.
type Field string

const (
	FieldQuery        Field = "search_query"
	FieldColor        Field = "color"
	FieldRarity       Field = "rarity"
	FieldCardType     Field = "card_type"
	FieldAttribute    Field = "attribute"
	FieldFeature      Field = "feature"
	FieldBlockIcon    Field = "block_icon"
	FieldSeriesID     Field = "series_id"
	FieldTrigger      Field = "trigger"
	FieldCost         Field = "cost"
	FieldCounter      Field = "counter"
	FieldParallelMode Field = "parallel_mode"
	FieldCostRange    Field = "cost_range"
	FieldPowerRange   Field = "bp_range"
	FieldCounterRange Field = "counter_range"
	FieldParallelOnly Field = "is_parallel_only"
	FieldReset        Field = "reset"
)

// Supports reports whether f can be updated under v.
func (f Field) Supports(v Variant) bool {
	switch f {
	case FieldCost, FieldCounter, FieldParallelMode:
		return v == VariantFacet
	case FieldCostRange, FieldPowerRange, FieldCounterRange, FieldParallelOnly:
		return v == VariantRange
	default:
		return true
	}
}

// Update is a single typed change to a State. The set of implementations is
// closed to this package.
type Update interface {
	Field() Field
	apply(*State, Variant)
}

type (
	SetQuery      struct{ Query string }
	SetColors     struct{ Values []string }
	SetRarities   struct{ Values []string }
	SetTypes      struct{ Values []string }
	SetAttributes struct{ Values []string }
	SetFeatures   struct{ Values []string }
	SetBlockIcons struct{ Values []string }
	SetSeriesIDs  struct{ Values []string }
	SetTriggers   struct{ Values []string }

	SetCosts        struct{ Values []int }
	SetCounters     struct{ Values []int }
	SetParallelMode struct{ Mode ParallelMode }

	SetCostRange    struct{ Min, Max *int }
	SetPowerRange   struct{ Min, Max *int }
	SetCounterRange struct{ Min, Max *int }
	SetParallelOnly struct{ Enabled bool }

	// Reset restores the variant's default state.
	Reset struct{}
)

func (SetQuery) Field() Field        { return FieldQuery }
func (SetColors) Field() Field       { return FieldColor }
func (SetRarities) Field() Field     { return FieldRarity }
func (SetTypes) Field() Field        { return FieldCardType }
func (SetAttributes) Field() Field   { return FieldAttribute }
func (SetFeatures) Field() Field     { return FieldFeature }
func (SetBlockIcons) Field() Field   { return FieldBlockIcon }
func (SetSeriesIDs) Field() Field    { return FieldSeriesID }
func (SetTriggers) Field() Field     { return FieldTrigger }
func (SetCosts) Field() Field        { return FieldCost }
func (SetCounters) Field() Field     { return FieldCounter }
func (SetParallelMode) Field() Field { return FieldParallelMode }
func (SetCostRange) Field() Field    { return FieldCostRange }
func (SetPowerRange) Field() Field   { return FieldPowerRange }
func (SetCounterRange) Field() Field { return FieldCounterRange }
func (SetParallelOnly) Field() Field { return FieldParallelOnly }
func (Reset) Field() Field           { return FieldReset }

func (u SetQuery) apply(s *State, _ Variant)      { s.Query = u.Query }
func (u SetColors) apply(s *State, _ Variant)     { s.Colors = u.Values }
func (u SetRarities) apply(s *State, _ Variant)   { s.Rarities = u.Values }
func (u SetTypes) apply(s *State, _ Variant)      { s.Types = u.Values }
func (u SetAttributes) apply(s *State, _ Variant) { s.Attributes = u.Values }
func (u SetFeatures) apply(s *State, _ Variant)   { s.Features = u.Values }
func (u SetBlockIcons) apply(s *State, _ Variant) { s.BlockIcons = u.Values }
func (u SetSeriesIDs) apply(s *State, _ Variant)  { s.SeriesIDs = u.Values }
func (u SetTriggers) apply(s *State, _ Variant)   { s.Triggers = u.Values }
func (u SetCosts) apply(s *State, _ Variant)      { s.Costs = u.Values }
func (u SetCounters) apply(s *State, _ Variant)   { s.Counters = u.Values }

func (u SetParallelMode) apply(s *State, _ Variant) { s.ParallelMode = u.Mode }

func (u SetCostRange) apply(s *State, _ Variant) {
	s.CostMin, s.CostMax = cloneInt(u.Min), cloneInt(u.Max)
}

func (u SetPowerRange) apply(s *State, _ Variant) {
	s.PowerMin, s.PowerMax = cloneInt(u.Min), cloneInt(u.Max)
}

func (u SetCounterRange) apply(s *State, _ Variant) {
	s.CounterMin, s.CounterMax = cloneInt(u.Min), cloneInt(u.Max)
}

func (u SetParallelOnly) apply(s *State, _ Variant) { s.ParallelOnly = u.Enabled }

func (Reset) apply(s *State, v Variant) { *s = defaultState(v) }

// WireUpdate is the JSON form of an Update: {"field": "...", "value": ...}.
type WireUpdate struct {
	Field Field           `json:"field"`
	Value json.RawMessage `json:"value"`
}

type wireRange struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// Decode converts a wire update into its typed form.
func (w WireUpdate) Decode() (Update, error) {
	switch w.Field {
	case FieldQuery:
		var q string
		if err := decodeValue(w, &q); err != nil {
			return nil, err
		}
		return SetQuery{Query: q}, nil
	case FieldColor, FieldRarity, FieldCardType, FieldAttribute, FieldFeature,
		FieldBlockIcon, FieldSeriesID, FieldTrigger:
		var values []string
		if err := decodeValue(w, &values); err != nil {
			return nil, err
		}
		return stringsUpdate(w.Field, values), nil
	case FieldCost, FieldCounter:
		var values []int
		if err := decodeValue(w, &values); err != nil {
			return nil, err
		}
		if w.Field == FieldCost {
			return SetCosts{Values: values}, nil
		}
		return SetCounters{Values: values}, nil
	case FieldParallelMode:
		var raw string
		if err := decodeValue(w, &raw); err != nil {
			return nil, err
		}
		mode, err := ParseParallelMode(raw)
		if err != nil {
			return nil, err
		}
		return SetParallelMode{Mode: mode}, nil
	case FieldCostRange, FieldPowerRange, FieldCounterRange:
		var r wireRange
		if err := decodeValue(w, &r); err != nil {
			return nil, err
		}
		switch w.Field {
		case FieldCostRange:
			return SetCostRange{Min: r.Min, Max: r.Max}, nil
		case FieldPowerRange:
			return SetPowerRange{Min: r.Min, Max: r.Max}, nil
		default:
			return SetCounterRange{Min: r.Min, Max: r.Max}, nil
		}
	case FieldParallelOnly:
		var enabled bool
		if err := decodeValue(w, &enabled); err != nil {
			return nil, err
		}
		return SetParallelOnly{Enabled: enabled}, nil
	case FieldReset:
		return Reset{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, w.Field)
	}
}

func stringsUpdate(field Field, values []string) Update {
	switch field {
	case FieldColor:
		return SetColors{Values: values}
	case FieldRarity:
		return SetRarities{Values: values}
	case FieldCardType:
		return SetTypes{Values: values}
	case FieldAttribute:
		return SetAttributes{Values: values}
	case FieldFeature:
		return SetFeatures{Values: values}
	case FieldBlockIcon:
		return SetBlockIcons{Values: values}
	case FieldSeriesID:
		return SetSeriesIDs{Values: values}
	default:
		return SetTriggers{Values: values}
	}
}

func decodeValue(w WireUpdate, target any) error {
	if len(w.Value) == 0 {
		return fmt.Errorf("missing value for filter field %q", w.Field)
	}
	if err := json.Unmarshal(w.Value, target); err != nil {
		return fmt.Errorf("invalid value for filter field %q: %w", w.Field, err)
	}
	return nil
}
