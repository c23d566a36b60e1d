package deckexport

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
	"github.com/ramonehamilton/deckbuilder/internal/deck"
	"github.com/ramonehamilton/deckbuilder/internal/deckimport"
)

func testIndex() deck.Index {
	return deck.NewIndex([]cards.Card{
		{ID: "OP01-001", Colors: []string{"赤"}, Type: cards.TypeLeader},
		{ID: "OP01-004", Colors: []string{"赤"}, Type: cards.TypeCharacter, Cost: 3},
		{ID: "OP01-002", Colors: []string{"赤"}, Type: cards.TypeCharacter, Cost: 1},
		{ID: "OP01-010", Colors: []string{"赤"}, Type: cards.TypeEvent, Cost: 1},
	})
}

func createTestDeck() deck.State {
	leader := "OP01-001"
	return deck.State{
		Deck:     deck.CountMap{"OP01-001": 1, "OP01-004": 4, "OP01-002": 2, "OP01-010": 3, "ZZ-999": 1},
		LeaderID: &leader,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    ExportFormat
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"text", FormatText, false},
		{"qr", FormatQR, false},
		{"arena", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExportText(t *testing.T) {
	exporter := NewExporter(testIndex())

	result, err := exporter.Export(createTestDeck(), "Red Aggro", FormatText)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	want := "1xOP01-001\n2xOP01-002\n4xOP01-004\n3xOP01-010\n1xZZ-999\n"
	if string(result.Content) != want {
		t.Errorf("Content =\n%s\nwant\n%s", result.Content, want)
	}
	if result.Filename != "Red Aggro.txt" {
		t.Errorf("Filename = %q", result.Filename)
	}
}

func TestExportText_RoundTripsThroughImport(t *testing.T) {
	state := createTestDeck()
	text := NewExporter(testIndex()).Text(state)

	parsed, err := deckimport.NewParser(testIndex()).Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.State.Leader() != state.Leader() {
		t.Errorf("Leader = %q, want %q", parsed.State.Leader(), state.Leader())
	}
	for id, n := range state.Deck {
		if parsed.State.Deck[id] != n {
			t.Errorf("Deck[%s] = %d, want %d", id, parsed.State.Deck[id], n)
		}
	}
}

func TestExportJSON_RoundTripsThroughImport(t *testing.T) {
	state := createTestDeck()
	result, err := NewExporter(nil).Export(state, "", FormatJSON)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if result.Filename != "deck.json" {
		t.Errorf("Filename = %q, want deck.json", result.Filename)
	}

	parsed, err := deckimport.NewParser(nil).Parse(string(result.Content))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if parsed.State.Leader() != "OP01-001" || len(parsed.State.Deck) != len(state.Deck) {
		t.Errorf("round trip mismatch: %+v", parsed.State)
	}
}

func TestExportJSON_NoLeader(t *testing.T) {
	data, err := NewExporter(nil).JSON(deck.State{Deck: deck.CountMap{"a": 1}})
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	if strings.Contains(string(data), "leaderId") {
		t.Errorf("expected leaderId to be omitted, got %s", data)
	}
}

func TestExportQR(t *testing.T) {
	result, err := NewExporter(nil).Export(createTestDeck(), "qr", FormatQR)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !bytes.HasPrefix(result.Content, []byte("\x89PNG")) {
		t.Errorf("expected PNG content")
	}
	if result.ContentType != "image/png" {
		t.Errorf("ContentType = %q", result.ContentType)
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	if _, err := NewExporter(nil).Export(createTestDeck(), "x", ExportFormat("mtgo")); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"My Deck", "My Deck"},
		{"a/b:c", "a_b_c"},
		{"   ", "deck"},
		{strings.Repeat("赤", 120), strings.Repeat("赤", 100)},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.input); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
