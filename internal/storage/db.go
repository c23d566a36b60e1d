// Package storage provides the SQLite database that backs saved decks.
package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/ramonehamilton/deckbuilder/internal/storage/repository"

	_ "modernc.org/sqlite" // SQLite driver
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps the database connection and provides access to repositories.
type DB struct {
	conn *sql.DB
	kv   repository.KeyValueRepository
}

// Config holds database configuration settings.
type Config struct {
	// Path is the file path to the SQLite database.
	// Use ":memory:" for an in-memory database (useful for testing).
	Path string

	// MaxOpenConns sets the maximum number of open connections to the database.
	// Forced to 1 for in-memory databases, which are per-connection.
	// Default: 25
	MaxOpenConns int

	// MaxIdleConns sets the maximum number of idle connections in the pool.
	// Default: 5
	MaxIdleConns int

	// ConnMaxLifetime sets the maximum amount of time a connection may be reused.
	// Default: 5 minutes
	ConnMaxLifetime time.Duration

	// BusyTimeout sets how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// JournalMode sets the SQLite journal mode.
	// Default: WAL
	JournalMode string

	// Synchronous sets the SQLite synchronous mode.
	// Default: NORMAL
	Synchronous string

	// AutoMigrate runs pending migrations on Open.
	AutoMigrate bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig(path string) *Config {
	return &Config{
		Path:            path,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		BusyTimeout:     5 * time.Second,
		JournalMode:     "WAL",
		Synchronous:     "NORMAL",
		AutoMigrate:     true,
	}
}

func (c *Config) inMemory() bool {
	return c.Path == MemoryPath
}

func (c *Config) dsn() string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", c.BusyTimeout.Milliseconds()))
	if c.JournalMode != "" && !c.inMemory() {
		q.Add("_pragma", fmt.Sprintf("journal_mode(%s)", c.JournalMode))
	}
	if c.Synchronous != "" {
		q.Add("_pragma", fmt.Sprintf("synchronous(%s)", c.Synchronous))
	}
	q.Add("_pragma", "foreign_keys(1)")
	return c.Path + "?" + q.Encode()
}

// Open creates a new database connection with the given configuration.
// Migrations run on the open connection so in-memory databases keep their schema.
func Open(config *Config) (*DB, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if !config.inMemory() {
		dir := filepath.Dir(config.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", config.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := config.MaxOpenConns
	if config.inMemory() {
		maxOpen = 1
	}
	conn.SetMaxOpenConns(maxOpen)
	conn.SetMaxIdleConns(config.MaxIdleConns)
	if !config.inMemory() {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := conn.Ping(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to close database after ping error: %w (original error: %v)", closeErr, err)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if config.AutoMigrate {
		if err := migrateConn(conn); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &DB{conn: conn, kv: repository.NewKeyValueRepository(conn)}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// KeyValue returns the key-value repository backed by this database.
func (db *DB) KeyValue() repository.KeyValueRepository {
	return db.kv
}
