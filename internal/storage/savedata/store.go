// Package savedata stores decks in the platform's per-user application data
// directory through gdata.
package savedata

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/quasilyte/gdata/v2"
)

// DefaultAppName is the gdata application name used when none is configured.
const DefaultAppName = "deckbuilder"

const object = "kv"

// Store is a key-value store over a gdata manager. Keys are hashed into
// fixed-length property names so that any deck name is a valid file name.
type Store struct {
	manager *gdata.Manager
}

// Open creates a store for appName.
func Open(appName string) (*Store, error) {
	if appName == "" {
		appName = DefaultAppName
	}
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		return nil, fmt.Errorf("failed to open save data for %s: %w", appName, err)
	}
	return New(manager), nil
}

// New wraps an existing manager.
func New(manager *gdata.Manager) *Store {
	return &Store{manager: manager}
}

func prop(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "k" + hex.EncodeToString(sum[:])
}

// Get returns the value at key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	p := prop(key)
	if !s.manager.ObjectPropExists(object, p) {
		return "", false, nil
	}
	data, err := s.manager.LoadObjectProp(object, p)
	if err != nil {
		return "", false, fmt.Errorf("failed to load key %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set stores value at key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.manager.SaveObjectProp(object, prop(key), []byte(value)); err != nil {
		return fmt.Errorf("failed to save key %s: %w", key, err)
	}
	return nil
}

// Delete removes the value at key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.manager.DeleteObjectProp(object, prop(key)); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
