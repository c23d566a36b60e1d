// Package deckexport renders a deck state in the formats accepted by deckimport.
package deckexport

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/ramonehamilton/deckbuilder/internal/deck"
	"github.com/ramonehamilton/deckbuilder/internal/deckimport"
)

// ExportFormat represents the format to export the deck in.
type ExportFormat string

const (
	FormatJSON ExportFormat = "json" // {"deck": {...}, "leaderId": "..."}
	FormatText ExportFormat = "text" // deck-sheet list, "1x<leader>" then "NxID"
	FormatQR   ExportFormat = "qr"   // PNG QR code of the JSON payload
)

// DefaultQRSize is the QR image edge length in pixels.
const DefaultQRSize = 400

// ParseFormat validates a format name. An empty name selects FormatJSON.
func ParseFormat(name string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatText, FormatQR:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", name)
	}
}

// DeckExport represents an exported deck.
type DeckExport struct {
	Content     []byte
	Format      ExportFormat
	ContentType string
	Filename    string
}

// Exporter handles deck export to the supported formats.
type Exporter struct {
	lookup deck.CardLookup
	qrSize int
}

// NewExporter creates an exporter. lookup orders the text format in
// deck-display order; cards it cannot resolve are listed last by ID.
func NewExporter(lookup deck.CardLookup) *Exporter {
	return &Exporter{lookup: lookup, qrSize: DefaultQRSize}
}

// Export renders state in format. name only affects the suggested filename.
func (e *Exporter) Export(state deck.State, name string, format ExportFormat) (*DeckExport, error) {
	base := sanitizeFilename(name)

	switch format {
	case FormatJSON, "":
		content, err := e.JSON(state)
		if err != nil {
			return nil, err
		}
		return &DeckExport{Content: content, Format: FormatJSON, ContentType: "application/json", Filename: base + ".json"}, nil
	case FormatText:
		return &DeckExport{Content: []byte(e.Text(state)), Format: FormatText, ContentType: "text/plain; charset=utf-8", Filename: base + ".txt"}, nil
	case FormatQR:
		content, err := e.QR(state)
		if err != nil {
			return nil, err
		}
		return &DeckExport{Content: content, Format: FormatQR, ContentType: "image/png", Filename: base + ".png"}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// JSON encodes state as the import payload.
func (e *Exporter) JSON(state deck.State) ([]byte, error) {
	payload := deckimport.Payload{Deck: state.Deck.Normalize(), LeaderID: state.LeaderID}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deck: %w", err)
	}
	return data, nil
}

// Text renders the deck-sheet list. The leader is written first as "1x<id>"
// and is not repeated below.
func (e *Exporter) Text(state deck.State) string {
	var sb strings.Builder

	leaderID := state.Leader()
	if leaderID != "" {
		fmt.Fprintf(&sb, "1x%s\n", leaderID)
	}

	var lookup deck.CardLookup = deck.Index{}
	if e.lookup != nil {
		lookup = e.lookup
	}
	listing := deck.Entries(state, lookup)
	for _, entry := range listing.Entries {
		if entry.Card.ID == leaderID {
			continue
		}
		fmt.Fprintf(&sb, "%dx%s\n", entry.Count, entry.Card.ID)
	}
	for _, id := range listing.Unknown {
		if id == leaderID {
			continue
		}
		fmt.Fprintf(&sb, "%dx%s\n", state.Deck[id], id)
	}

	return sb.String()
}

// QR encodes the JSON payload as a PNG QR code.
func (e *Exporter) QR(state deck.State) ([]byte, error) {
	data, err := e.JSON(state)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, e.qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}

// sanitizeFilename removes invalid characters from filename.
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := name
	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if r := []rune(result); len(r) > 100 {
		result = string(r[:100])
	}
	if result == "" {
		result = "deck"
	}
	return result
}
