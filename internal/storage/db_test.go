package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("test.db")

	if config.Path != "test.db" {
		t.Errorf("expected path 'test.db', got '%s'", config.Path)
	}

	if config.MaxOpenConns != 25 {
		t.Errorf("expected MaxOpenConns 25, got %d", config.MaxOpenConns)
	}

	if config.BusyTimeout != 5*time.Second {
		t.Errorf("expected BusyTimeout 5s, got %v", config.BusyTimeout)
	}

	if config.JournalMode != "WAL" {
		t.Errorf("expected JournalMode 'WAL', got '%s'", config.JournalMode)
	}

	if !config.AutoMigrate {
		t.Error("expected AutoMigrate to default to true")
	}
}

func TestOpen_InMemory(t *testing.T) {
	db, err := Open(DefaultConfig(MemoryPath))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Errorf("failed to ping database: %v", err)
	}

	ctx := context.Background()
	if err := db.KeyValue().Set(ctx, "k", "v"); err != nil {
		t.Fatalf("kv table missing after migrations: %v", err)
	}
	value, ok, err := db.KeyValue().Get(ctx, "k")
	if err != nil || !ok || value != "v" {
		t.Errorf("Get() = %q, %v, %v", value, ok, err)
	}
}

func TestOpen_FilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "decks.db")
	ctx := context.Background()

	db, err := Open(DefaultConfig(path))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.KeyValue().Set(ctx, "deckbuilder_names", `["a"]`); err != nil {
		t.Fatalf("failed to set: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	reopened, err := Open(DefaultConfig(path))
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer reopened.Close()

	value, ok, err := reopened.KeyValue().Get(ctx, "deckbuilder_names")
	if err != nil || !ok {
		t.Fatalf("Get() ok=%v err=%v", ok, err)
	}
	if value != `["a"]` {
		t.Errorf("expected persisted value, got %s", value)
	}
}

func TestOpenWithNilConfig(t *testing.T) {
	_, err := Open(nil)
	if err == nil {
		t.Error("expected error when opening with nil config")
	}
}
