// Package repository holds the SQL repositories used by storage.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// KeyValueRepository stores opaque string values by key.
type KeyValueRepository interface {
	// Get returns the value stored at key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value at key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// SetMany stores several values in one transaction.
	SetMany(ctx context.Context, values map[string]string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// keyValueRepository implements KeyValueRepository using SQLite.
type keyValueRepository struct {
	db *sql.DB
}

// NewKeyValueRepository creates a new key-value repository.
func NewKeyValueRepository(db *sql.DB) KeyValueRepository {
	return &keyValueRepository{db: db}
}

const upsertKV = `
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`

// Get retrieves a value by key.
func (r *keyValueRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores a value.
func (r *keyValueRepository) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, upsertKV, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// SetMany stores multiple values at once.
func (r *keyValueRepository) SetMany(ctx context.Context, values map[string]string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // Explicitly ignore error - will be nil if Commit() succeeds
	}()

	stmt, err := tx.PrepareContext(ctx, upsertKV)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		_ = stmt.Close() // Explicitly ignore error - cleanup operation
	}()

	now := time.Now()
	for key, value := range values {
		if _, err := stmt.ExecContext(ctx, key, value, now); err != nil {
			return fmt.Errorf("failed to set key %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Delete removes a key.
func (r *keyValueRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}
