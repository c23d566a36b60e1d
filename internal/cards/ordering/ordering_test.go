package ordering

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
)

func card(id, color string, typ cards.Type, cost int) cards.Card {
	return cards.Card{ID: id, Colors: cards.SplitValues(color), Type: typ, Cost: cost}
}

func ids(list []cards.Card) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.ID
	}
	return out
}

func TestParseScheme(t *testing.T) {
	s, err := ParseScheme("")
	require.NoError(t, err)
	assert.Equal(t, SchemeGrouping, s)

	s, err = ParseScheme("Display")
	require.NoError(t, err)
	assert.Equal(t, SchemeDisplay, s)

	_, err = ParseScheme("alphabetical")
	assert.Error(t, err)
}

func TestGrouping_ConcreteScenario(t *testing.T) {
	catalog := []cards.Card{
		card("B", "赤/青", cards.TypeCharacter, 2),
		card("C", "青", cards.TypeCharacter, 1),
		card("A", "赤", cards.TypeLeader, 0),
	}

	sorted := ForScheme(SchemeGrouping).Sorted(catalog)

	assert.Equal(t, []string{"A", "C", "B"}, ids(sorted))
}

func TestGrouping_SingleColorBeforeMulticolor(t *testing.T) {
	cmp := ForScheme(SchemeGrouping)

	singles := []cards.Card{
		card("Z-single-yellow", "黄", cards.TypeStage, 10),
		card("Z-single-black", "黒", cards.TypeEvent, 9),
		card("Z-colorless", "無色", cards.TypeCharacter, 7),
	}
	multis := []cards.Card{
		card("A-multi", "赤/緑", cards.TypeLeader, 0),
		card("A-multi-2", "黄／黒", cards.TypeCharacter, 1),
	}

	for _, s := range singles {
		for _, m := range multis {
			assert.Negativef(t, cmp.Compare(s, m), "%s should sort before %s", s.ID, m.ID)
			assert.Positivef(t, cmp.Compare(m, s), "%s should sort after %s", m.ID, s.ID)
		}
	}
}

func TestGrouping_MulticolorByFirstThenSecondColor(t *testing.T) {
	list := []cards.Card{
		card("3", "青/赤", cards.TypeLeader, 0),
		card("2", "赤/青", cards.TypeLeader, 0),
		card("1", "赤/緑", cards.TypeLeader, 0),
	}

	sorted := ForScheme(SchemeGrouping).Sorted(list)

	assert.Equal(t, []string{"1", "2", "3"}, ids(sorted))
}

func TestGrouping_UnknownColorSortsAfterKnownSingles(t *testing.T) {
	list := []cards.Card{
		card("no-color", "", cards.TypeCharacter, 0),
		card("dash", "-", cards.TypeCharacter, 0),
		card("yellow", "黄", cards.TypeCharacter, 9),
	}

	sorted := ForScheme(SchemeGrouping).Sorted(list)

	assert.Equal(t, []string{"yellow", "dash", "no-color"}, ids(sorted))
}

func TestGrouping_TypeThenCostThenID(t *testing.T) {
	list := []cards.Card{
		card("OP01-010", "赤", cards.TypeEvent, 1),
		card("OP01-004", "赤", cards.TypeCharacter, 3),
		card("OP01-003", "赤", cards.TypeCharacter, 3),
		card("OP01-002", "赤", cards.TypeCharacter, 1),
		card("OP01-001", "赤", cards.TypeLeader, 0),
		card("OP01-099", "赤", cards.Type("UNKNOWN"), 0),
	}

	sorted := ForScheme(SchemeGrouping).Sorted(list)

	assert.Equal(t, []string{"OP01-001", "OP01-002", "OP01-003", "OP01-004", "OP01-010", "OP01-099"}, ids(sorted))
}

func TestGrouping_CostIsNumeric(t *testing.T) {
	list := []cards.Card{
		card("a", "赤", cards.TypeCharacter, 10),
		card("b", "赤", cards.TypeCharacter, 2),
	}

	sorted := ForScheme(SchemeGrouping).Sorted(list)

	assert.Equal(t, []string{"b", "a"}, ids(sorted))
}

func TestDisplay_Ordering(t *testing.T) {
	list := []cards.Card{
		card("red-blue-char", "赤/青", cards.TypeCharacter, 1),
		card("red-green-char", "赤/緑", cards.TypeCharacter, 5),
		card("red-char", "赤", cards.TypeCharacter, 7),
		card("red-leader", "赤/青", cards.TypeLeader, 0),
		card("green-leader", "緑", cards.TypeLeader, 0),
		card("unknown", "", cards.TypeLeader, 0),
	}

	sorted := ForScheme(SchemeDisplay).Sorted(list)

	assert.Equal(t, []string{
		"red-leader",
		"red-char",
		"red-green-char",
		"red-blue-char",
		"green-leader",
		"unknown",
	}, ids(sorted))
}

func TestDisplayKey(t *testing.T) {
	assert.Equal(t, Key{0, 1, 0, 0, 4}, DisplayKey(card("x", "赤", cards.TypeCharacter, 4)))
	assert.Equal(t, Key{2, 0, 4, 1, 0}, DisplayKey(card("x", "青／紫", cards.TypeLeader, 0)))
	assert.Equal(t, Key{UnknownColor, 4, 0, 0, 0}, DisplayKey(card("x", "", cards.Type("?"), 0)))
}

func TestDeckComparator(t *testing.T) {
	list := []cards.Card{
		card("event-1", "赤", cards.TypeEvent, 1),
		card("char-2-green", "緑", cards.TypeCharacter, 2),
		card("char-2-red", "赤", cards.TypeCharacter, 2),
		card("char-1-yellow", "黄", cards.TypeCharacter, 1),
		card("leader", "赤/緑", cards.TypeLeader, 0),
	}

	sorted := Deck().Sorted(list)

	assert.Equal(t, []string{"leader", "char-1-yellow", "char-2-red", "char-2-green", "event-1"}, ids(sorted))
}

func TestComparator_TotalOrderWithUniqueIDs(t *testing.T) {
	colors := []string{"赤", "緑", "青", "紫", "黒", "黄", "赤/青", "緑／黄", "", "無色"}
	types := []cards.Type{cards.TypeLeader, cards.TypeCharacter, cards.TypeEvent, cards.TypeStage}

	rng := rand.New(rand.NewSource(7))
	list := make([]cards.Card, 0, 200)
	for i := 0; i < 200; i++ {
		list = append(list, card(
			fmt.Sprintf("ID-%03d", i),
			colors[rng.Intn(len(colors))],
			types[rng.Intn(len(types))],
			rng.Intn(4),
		))
	}

	for _, scheme := range []Comparator{ForScheme(SchemeGrouping), ForScheme(SchemeDisplay), Deck()} {
		for i := range list {
			for j := range list {
				ab := scheme.Compare(list[i], list[j])
				ba := scheme.Compare(list[j], list[i])
				if i == j {
					require.Zero(t, ab)
					continue
				}
				require.NotZero(t, ab, "distinct cards %s and %s compared equal", list[i].ID, list[j].ID)
				require.Equal(t, -ab, ba, "comparator is not antisymmetric for %s/%s", list[i].ID, list[j].ID)
			}
		}
	}
}

func TestComparator_StableUnderRerun(t *testing.T) {
	list := []cards.Card{
		card("c", "青", cards.TypeCharacter, 1),
		card("a", "赤/青", cards.TypeCharacter, 2),
		card("b", "赤", cards.TypeLeader, 0),
		card("d", "", cards.TypeEvent, 0),
	}

	cmp := ForScheme(SchemeGrouping)
	first := cmp.Sorted(list)
	second := cmp.Sorted(first)

	assert.Equal(t, ids(first), ids(second))

	shuffled := []cards.Card{list[3], list[1], list[0], list[2]}
	assert.Equal(t, ids(first), ids(cmp.Sorted(shuffled)))
}

func TestSorted_DoesNotMutateInput(t *testing.T) {
	list := []cards.Card{card("b", "赤", cards.TypeCharacter, 0), card("a", "赤", cards.TypeCharacter, 0)}

	_ = ForScheme(SchemeGrouping).Sorted(list)

	assert.Equal(t, []string{"b", "a"}, ids(list))
}

func TestSort_EmptyList(t *testing.T) {
	assert.Empty(t, ForScheme(SchemeDisplay).Sorted(nil))
}
