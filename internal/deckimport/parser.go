// Package deckimport parses externally supplied deck payloads into a deck state.
package deckimport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ramonehamilton/deckbuilder/internal/deck"
)

// ErrImportFailed is returned for any payload that cannot be imported. The
// underlying cause is wrapped.
var ErrImportFailed = errors.New("import failed")

// Format identifies which encoding a payload was parsed from.
type Format string

const (
	FormatJSON Format = "json" // {"deck": {...}, "leaderId": "..."}
	FormatText Format = "text" // one "NxID" per line, leader first
)

// Payload is the JSON import shape. It is also what the JSON exporter and the
// QR code carry.
type Payload struct {
	Deck     deck.CountMap `json:"deck"`
	LeaderID *string       `json:"leaderId,omitempty"`
}

// Result holds a successfully parsed deck.
type Result struct {
	State    deck.State
	Format   Format
	Warnings []string
}

// Parser handles deck import from JSON and text payloads.
type Parser struct {
	lookup deck.CardLookup
}

// NewParser creates a parser. lookup is optional; when set, the text format
// only takes its first line as the leader if that card is a LEADER.
func NewParser(lookup deck.CardLookup) *Parser {
	return &Parser{lookup: lookup}
}

// Parse tries the JSON format when the input looks like an object and the
// text format otherwise. Nothing is returned on failure.
func (p *Parser) Parse(input string) (*Result, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrImportFailed)
	}
	if strings.HasPrefix(input, "{") {
		return p.ParseJSON([]byte(input))
	}
	return p.ParseText(input)
}

// ParseJSON parses the {deck, leaderId?} payload. deck must be present and be
// an object of integer counts; leaderId may be absent, null or a string.
func (p *Parser) ParseJSON(data []byte) (*Result, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	deckRaw, ok := raw["deck"]
	if !ok {
		return nil, fmt.Errorf("%w: missing deck field", ErrImportFailed)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(deckRaw), []byte("{")) {
		return nil, fmt.Errorf("%w: deck must be an object", ErrImportFailed)
	}

	var counts map[string]json.Number
	if err := json.Unmarshal(deckRaw, &counts); err != nil {
		return nil, fmt.Errorf("%w: deck: %v", ErrImportFailed, err)
	}

	result := &Result{Format: FormatJSON, State: deck.NewState()}
	for id, n := range counts {
		count, err := strconv.Atoi(n.String())
		if err != nil {
			return nil, fmt.Errorf("%w: count for %q is not an integer", ErrImportFailed, id)
		}
		if count <= 0 || id == "" {
			result.Warnings = append(result.Warnings, fmt.Sprintf("dropped entry %q with count %d", id, count))
			continue
		}
		result.State.Deck[id] = count
	}

	if leaderRaw, ok := raw["leaderId"]; ok && string(bytes.TrimSpace(leaderRaw)) != "null" {
		var leaderID string
		if err := json.Unmarshal(leaderRaw, &leaderID); err != nil {
			return nil, fmt.Errorf("%w: leaderId must be a string", ErrImportFailed)
		}
		if leaderID != "" {
			result.State.LeaderID = &leaderID
		}
	}

	return result, nil
}

var lineRegex = regexp.MustCompile(`^(\d+)\s*[xX×]\s*(\S+)$`)

// ParseText parses the deck-sheet text format:
//
//	1xOP01-001
//	4xOP01-004
//	2xOP01-010
//
// The first line names the leader and its count is capped at one copy.
// Repeated IDs are summed.
func (p *Parser) ParseText(input string) (*Result, error) {
	result := &Result{Format: FormatText, State: deck.NewState()}

	first := true
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		matches := lineRegex.FindStringSubmatch(line)
		if matches == nil {
			return nil, fmt.Errorf("%w: line %d: could not parse %q", ErrImportFailed, i+1, line)
		}
		count, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: invalid quantity %q", ErrImportFailed, i+1, matches[1])
		}
		id := matches[2]

		if count <= 0 {
			first = false
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: dropped %q with count 0", i+1, id))
			continue
		}

		if first {
			first = false
			if p.isLeader(id) {
				leaderID := id
				result.State.LeaderID = &leaderID
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("first card %q is not a leader", id))
			}
		}
		result.State.Deck[id] += count
	}

	if leaderID := result.State.Leader(); leaderID != "" && result.State.Deck[leaderID] > deck.DefaultMaxLeaderCopies {
		result.Warnings = append(result.Warnings, fmt.Sprintf("leader %q capped at %d", leaderID, deck.DefaultMaxLeaderCopies))
		result.State.Deck[leaderID] = deck.DefaultMaxLeaderCopies
	}

	if len(result.State.Deck) == 0 {
		return nil, fmt.Errorf("%w: no cards found", ErrImportFailed)
	}
	return result, nil
}

func (p *Parser) isLeader(id string) bool {
	if p.lookup == nil {
		return true
	}
	c, ok := p.lookup.Lookup(id)
	return ok && c.IsLeader()
}
