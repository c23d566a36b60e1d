package cards

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestSplitValues(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single color", input: "赤", want: []string{"赤"}},
		{name: "ascii slash", input: "赤/青", want: []string{"赤", "青"}},
		{name: "full-width slash", input: "赤／青", want: []string{"赤", "青"}},
		{name: "mixed delimiters", input: "赤／青/緑", want: []string{"赤", "青", "緑"}},
		{name: "whitespace around tokens", input: " 打 / 斬 ", want: []string{"打", "斬"}},
		{name: "empty string", input: "", want: nil},
		{name: "placeholder", input: "-", want: nil},
		{name: "trailing separator", input: "麦わらの一味/", want: []string{"麦わらの一味"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitValues(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitValues(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractSeriesID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ブースターパック 【OP-01】 ROMANCE DAWN", "OP-01"},
		{"【ST-01】【OP-02】", "ST-01"},
		{"プロモーション", ""},
		{"【unterminated", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExtractSeriesID(tt.input); got != tt.want {
			t.Errorf("ExtractSeriesID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	raw := `{
		"ID": "OP01-001",
		"Name": "ロロノア・ゾロ",
		"Rarity": "L",
		"Color": "赤／緑",
		"Cost": 0,
		"BP": 5000,
		"Type": "leader",
		"Effect": "【ドン!!×1】",
		"Attribute": "斬",
		"Counter": null,
		"BlockIcon": "1",
		"Feature": "超新星/麦わらの一味",
		"Trigger": "",
		"Acquisition": "ブースターパック【OP-01】",
		"is_parallel": true,
		"ImgUrl": "https://example.test/OP01-001.png"
	}`

	var record Record
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}

	card := Parse(record)

	if card.Type != TypeLeader {
		t.Errorf("Type = %q, want %q", card.Type, TypeLeader)
	}
	if !card.IsLeader() {
		t.Error("expected IsLeader")
	}
	if !reflect.DeepEqual(card.Colors, []string{"赤", "緑"}) {
		t.Errorf("Colors = %v", card.Colors)
	}
	if !card.IsMulticolor() {
		t.Error("expected multicolor card")
	}
	if card.Counter != nil {
		t.Errorf("Counter = %v, want nil", *card.Counter)
	}
	if card.Power == nil || *card.Power != 5000 {
		t.Errorf("Power = %v, want 5000", card.Power)
	}
	if card.SeriesID != "OP-01" {
		t.Errorf("SeriesID = %q, want OP-01", card.SeriesID)
	}
	if !reflect.DeepEqual(card.Features, []string{"超新星", "麦わらの一味"}) {
		t.Errorf("Features = %v", card.Features)
	}
	if card.Source.ID != "OP01-001" {
		t.Errorf("Source record not retained")
	}
}

func TestParse_SeriesFallback(t *testing.T) {
	if got := Parse(Record{ID: "X", Acquisition: "プロモ"}).SeriesID; got != DefaultSeriesID {
		t.Errorf("SeriesID = %q, want %q", got, DefaultSeriesID)
	}
	if got := Parse(Record{ID: "X", SeriesID: "ST-10"}).SeriesID; got != "ST-10" {
		t.Errorf("SeriesID = %q, want ST-10", got)
	}
}

func TestCounterZeroIsDistinctFromAbsent(t *testing.T) {
	var withZero, absent Record
	if err := json.Unmarshal([]byte(`{"ID":"A","Counter":0}`), &withZero); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(`{"ID":"B"}`), &absent); err != nil {
		t.Fatal(err)
	}

	if c := Parse(withZero).Counter; c == nil || *c != 0 {
		t.Errorf("expected explicit zero counter, got %v", c)
	}
	if c := Parse(absent).Counter; c != nil {
		t.Errorf("expected absent counter, got %d", *c)
	}
}

func TestSharesColor(t *testing.T) {
	leader := Card{ID: "L", Colors: []string{"赤", "青"}}

	if !(Card{Colors: []string{"青"}}).SharesColor(leader) {
		t.Error("青 should share a color with 赤/青")
	}
	if (Card{Colors: []string{"緑"}}).SharesColor(leader) {
		t.Error("緑 should not share a color with 赤/青")
	}
	if (Card{}).SharesColor(leader) {
		t.Error("a card without colors shares nothing")
	}
}

func TestTypeRank(t *testing.T) {
	if TypeRank(TypeLeader) != 0 || TypeRank(TypeStage) != 3 {
		t.Error("unexpected rank for known types")
	}
	if TypeRank(Type("DON")) != len(AllTypes) {
		t.Error("unknown types should rank after all known types")
	}
}
