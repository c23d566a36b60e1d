package ordering

import "github.com/ramonehamilton/deckbuilder/internal/cards"

// Grouping color ranks: the six palette colors, colorless, then anything
// unparseable. Multicolor cards take a primary key past all of these.
var groupingColors = []string{
	cards.ColorRed,
	cards.ColorGreen,
	cards.ColorBlue,
	cards.ColorPurple,
	cards.ColorBlack,
	cards.ColorYellow,
	cards.ColorColorless,
}

var (
	groupingUnknown    = len(groupingColors)
	groupingMulticolor = len(groupingColors) + 1
)

// UnknownColor is the primary key of cards without a recognised color in the
// display and deck orderings.
const UnknownColor = 999

func groupingRank(color string) int {
	for i, c := range groupingColors {
		if c == color {
			return i
		}
	}
	return groupingUnknown
}

func displayRank(color string) int {
	if i := cards.ColorIndex(color); i >= 0 {
		return i
	}
	return UnknownColor
}

// GroupingKey is the key of SchemeGrouping:
// (colorGroup, colorDetail, typeRank, cost).
func GroupingKey(c cards.Card) Key {
	var group, detail int
	switch len(c.Colors) {
	case 0:
		group = groupingUnknown
	case 1:
		group = groupingRank(c.Colors[0])
	default:
		group = groupingMulticolor
		detail = groupingRank(c.Colors[0])*100 + groupingRank(c.Colors[1])
	}
	return Key{group, detail, cards.TypeRank(c.Type), c.Cost}
}

// DisplayKey is the key of SchemeDisplay:
// (primaryColor, typeRank, secondaryColor+1 or 0, isMulticolor, cost).
func DisplayKey(c cards.Card) Key {
	primary := UnknownColor
	secondary := 0
	multicolor := 0
	if len(c.Colors) > 0 {
		primary = displayRank(c.Colors[0])
	}
	if len(c.Colors) > 1 {
		secondary = displayRank(c.Colors[1]) + 1
		multicolor = 1
	}
	return Key{primary, cards.TypeRank(c.Type), secondary, multicolor, c.Cost}
}

// DeckKey is the key of the deck listing: (typeRank, cost, primaryColor).
func DeckKey(c cards.Card) Key {
	primary := UnknownColor
	for _, color := range c.Colors {
		if i := cards.ColorIndex(color); i >= 0 {
			primary = i
			break
		}
	}
	return Key{cards.TypeRank(c.Type), c.Cost, primary}
}
