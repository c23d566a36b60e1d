// Package deckstore saves and loads named decks in a key-value store.
package deckstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/ramonehamilton/deckbuilder/internal/deck"
)

const (
	// KeyPrefix prefixes the key of every saved deck.
	KeyPrefix = "deckbuilder_"

	// NamesKey holds the JSON array of saved deck names.
	NamesKey = KeyPrefix + "names"
)

var (
	// ErrNotFound is returned when no deck is saved under a name.
	ErrNotFound = errors.New("deck not found")

	// ErrEmptyName is returned when a deck name is empty or blank.
	ErrEmptyName = errors.New("deck name is required")

	// ErrReservedName is returned for a name whose key would collide with the index.
	ErrReservedName = errors.New("deck name is reserved")
)

// KeyValue is the storage the decks are kept in.
type KeyValue interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// BatchWriter is implemented by backends that can write several keys in one
// transaction. Save uses it to write a new deck and the index together.
type BatchWriter interface {
	SetMany(ctx context.Context, values map[string]string) error
}

// DeckKey returns the storage key of the deck called name.
func DeckKey(name string) string {
	return KeyPrefix + name
}

// Store persists decks by name and keeps the name index in step.
type Store struct {
	kv KeyValue
	mu sync.Mutex // serialises index read-modify-write
}

// New creates a deck store over kv.
func New(kv KeyValue) *Store {
	return &Store{kv: kv}
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if DeckKey(name) == NamesKey {
		return "", fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	return name, nil
}

// Save writes the deck under name, overwriting any previous content, and adds
// name to the index if it is not already there.
func (s *Store) Save(ctx context.Context, name string, d deck.CountMap, leaderID *string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}

	record := deck.State{Deck: d.Normalize(), LeaderID: leaderID}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode deck %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.names(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(names, name) {
		if err := s.kv.Set(ctx, DeckKey(name), string(data)); err != nil {
			return fmt.Errorf("failed to save deck %s: %w", name, err)
		}
		return nil
	}

	if batch, ok := s.kv.(BatchWriter); ok {
		index, err := json.Marshal(append(names, name))
		if err != nil {
			return fmt.Errorf("failed to encode deck names: %w", err)
		}
		err = batch.SetMany(ctx, map[string]string{
			DeckKey(name): string(data),
			NamesKey:      string(index),
		})
		if err != nil {
			return fmt.Errorf("failed to save deck %s: %w", name, err)
		}
		return nil
	}

	if err := s.kv.Set(ctx, DeckKey(name), string(data)); err != nil {
		return fmt.Errorf("failed to save deck %s: %w", name, err)
	}
	return s.writeNames(ctx, append(names, name))
}

// Load returns the deck saved under name, or ErrNotFound.
func (s *Store) Load(ctx context.Context, name string) (deck.State, error) {
	name, err := normalizeName(name)
	if err != nil {
		return deck.State{}, err
	}

	raw, ok, err := s.kv.Get(ctx, DeckKey(name))
	if err != nil {
		return deck.State{}, fmt.Errorf("failed to load deck %s: %w", name, err)
	}
	if !ok {
		return deck.State{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	var record deck.State
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return deck.State{}, fmt.Errorf("failed to decode deck %s: %w", name, err)
	}
	record.Deck = record.Deck.Normalize()
	if record.LeaderID != nil && *record.LeaderID == "" {
		record.LeaderID = nil
	}
	return record, nil
}

// ListNames returns the saved deck names.
func (s *Store) ListNames(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names(ctx)
}

// Delete removes the deck saved under name and its index entry.
func (s *Store) Delete(ctx context.Context, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok, err := s.kv.Get(ctx, DeckKey(name))
	if err != nil {
		return fmt.Errorf("failed to load deck %s: %w", name, err)
	}

	names, err := s.names(ctx)
	if err != nil {
		return err
	}
	idx := slices.Index(names, name)
	if !ok && idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	if err := s.kv.Delete(ctx, DeckKey(name)); err != nil {
		return fmt.Errorf("failed to delete deck %s: %w", name, err)
	}
	if idx < 0 {
		return nil
	}
	return s.writeNames(ctx, slices.Delete(names, idx, idx+1))
}

func (s *Store) names(ctx context.Context) ([]string, error) {
	raw, ok, err := s.kv.Get(ctx, NamesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load deck names: %w", err)
	}
	names := []string{}
	if !ok {
		return names, nil
	}
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, fmt.Errorf("failed to decode deck names: %w", err)
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *Store) writeNames(ctx context.Context, names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to encode deck names: %w", err)
	}
	if err := s.kv.Set(ctx, NamesKey, string(data)); err != nil {
		return fmt.Errorf("failed to save deck names: %w", err)
	}
	return nil
}
