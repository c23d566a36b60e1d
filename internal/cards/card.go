// Package cards defines the card catalog model and its controlled vocabularies.
package cards

import "strings"

// Type is a card type. Known types are listed in AllTypes; unrecognised
// values are kept verbatim so they can sort after the known ones.
type Type string

const (
	TypeLeader    Type = "LEADER"
	TypeCharacter Type = "CHARACTER"
	TypeEvent     Type = "EVENT"
	TypeStage     Type = "STAGE"
)

// Color tokens as printed in the catalog.
const (
	ColorRed       = "赤"
	ColorGreen     = "緑"
	ColorBlue      = "青"
	ColorPurple    = "紫"
	ColorBlack     = "黒"
	ColorYellow    = "黄"
	ColorColorless = "無色"
)

// DefaultSeriesID is used when a card's acquisition text carries no series.
const DefaultSeriesID = "other"

var (
	// AllColors is the color palette in priority order.
	AllColors = []string{ColorRed, ColorGreen, ColorBlue, ColorPurple, ColorBlack, ColorYellow}

	// AllRarities lists the printed rarities.
	AllRarities = []string{"L", "C", "UC", "R", "SR", "SEC", "P"}

	// AllTypes lists the card types in priority order.
	AllTypes = []Type{TypeLeader, TypeCharacter, TypeEvent, TypeStage}
)

// ParseType normalises a raw type string.
func ParseType(raw string) Type {
	return Type(strings.ToUpper(strings.TrimSpace(raw)))
}

// Record is the raw shape of a catalog entry as published in cardlist.json.
type Record struct {
	ID          string `json:"ID" yaml:"ID"`
	Name        string `json:"Name" yaml:"Name"`
	Rarity      string `json:"Rarity" yaml:"Rarity"`
	Color       string `json:"Color" yaml:"Color"`
	Cost        int    `json:"Cost" yaml:"Cost"`
	BP          *int   `json:"BP" yaml:"BP"`
	Type        string `json:"Type" yaml:"Type"`
	Effect      string `json:"Effect" yaml:"Effect"`
	Code        string `json:"Code,omitempty" yaml:"Code,omitempty"`
	Attribute   string `json:"Attribute" yaml:"Attribute"`
	Counter     *int   `json:"Counter" yaml:"Counter"`
	BlockIcon   string `json:"BlockIcon" yaml:"BlockIcon"`
	Feature     string `json:"Feature" yaml:"Feature"`
	Trigger     string `json:"Trigger" yaml:"Trigger"`
	Acquisition string `json:"Acquisition" yaml:"Acquisition"`
	SeriesID    string `json:"SeriesID" yaml:"SeriesID"`
	IsParallel  bool   `json:"is_parallel" yaml:"is_parallel"`
	ImgURL      string `json:"ImgUrl" yaml:"ImgUrl"`
	SetID       string `json:"SetID,omitempty" yaml:"SetID,omitempty"`
	Set         string `json:"Set,omitempty" yaml:"Set,omitempty"`
}

// Card is one printed card entry with its multi-value fields parsed.
type Card struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Rarity     string   `json:"rarity"`
	Colors     []string `json:"colors"`
	Type       Type     `json:"card_type"`
	Cost       int      `json:"cost"`
	Power      *int     `json:"power"`
	Counter    *int     `json:"counter"`
	Effect     string   `json:"effect"`
	Attributes []string `json:"attributes"`
	Features   []string `json:"features"`
	Trigger    string   `json:"trigger"`
	BlockIcon  string   `json:"block_icon"`
	SeriesID   string   `json:"series_id"`
	IsParallel bool     `json:"is_parallel"`
	ImageURL   string   `json:"image_url"`
	SetID      string   `json:"set_id,omitempty"`

	// Source is the record the card was parsed from. It is forwarded verbatim
	// to collaborators that expect the catalog's own shape.
	Source Record `json:"-"`
}

// Parse converts a raw catalog record into a Card.
func Parse(r Record) Card {
	seriesID := ExtractSeriesID(r.Acquisition)
	if seriesID == "" {
		seriesID = strings.TrimSpace(r.SeriesID)
	}
	if seriesID == "" {
		seriesID = DefaultSeriesID
	}

	return Card{
		ID:         r.ID,
		Name:       r.Name,
		Rarity:     r.Rarity,
		Colors:     SplitValues(r.Color),
		Type:       ParseType(r.Type),
		Cost:       r.Cost,
		Power:      r.BP,
		Counter:    r.Counter,
		Effect:     r.Effect,
		Attributes: SplitValues(r.Attribute),
		Features:   SplitValues(r.Feature),
		Trigger:    strings.TrimSpace(r.Trigger),
		BlockIcon:  strings.TrimSpace(r.BlockIcon),
		SeriesID:   seriesID,
		IsParallel: r.IsParallel,
		ImageURL:   r.ImgURL,
		SetID:      r.SetID,
		Source:     r,
	}
}

// ParseAll converts a slice of records, preserving order.
func ParseAll(records []Record) []Card {
	out := make([]Card, 0, len(records))
	for _, r := range records {
		out = append(out, Parse(r))
	}
	return out
}

// IsLeader reports whether the card is of type LEADER.
func (c Card) IsLeader() bool {
	return c.Type == TypeLeader
}

// IsMulticolor reports whether the card lists two or more colors.
func (c Card) IsMulticolor() bool {
	return len(c.Colors) > 1
}

// SharesColor reports whether c has at least one color in common with other.
func (c Card) SharesColor(other Card) bool {
	return Intersects(c.Colors, other.Colors)
}

// TypeRank returns the index of t in AllTypes, or len(AllTypes) for unknown types.
func TypeRank(t Type) int {
	for i, known := range AllTypes {
		if t == known {
			return i
		}
	}
	return len(AllTypes)
}

// ColorIndex returns the index of color in AllColors, or -1.
func ColorIndex(color string) int {
	for i, c := range AllColors {
		if c == color {
			return i
		}
	}
	return -1
}
