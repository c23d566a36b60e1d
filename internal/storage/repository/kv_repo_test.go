package repository

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func setupKVTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create kv table: %v", err)
	}

	return db
}

func TestKeyValueRepository_SetAndGet(t *testing.T) {
	db := setupKVTestDB(t)
	defer db.Close()

	repo := NewKeyValueRepository(db)
	ctx := context.Background()

	if err := repo.Set(ctx, "deckbuilder_赤単", `{"deckList":{}}`); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}

	value, ok, err := repo.Get(ctx, "deckbuilder_赤単")
	if err != nil {
		t.Fatalf("Failed to get value: %v", err)
	}
	if !ok {
		t.Fatal("Expected key to exist")
	}
	if value != `{"deckList":{}}` {
		t.Errorf("Expected stored JSON, got '%s'", value)
	}
}

func TestKeyValueRepository_GetMissing(t *testing.T) {
	db := setupKVTestDB(t)
	defer db.Close()

	repo := NewKeyValueRepository(db)

	value, ok, err := repo.Get(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Expected no error for missing key, got %v", err)
	}
	if ok || value != "" {
		t.Errorf("Expected missing key, got ok=%v value=%q", ok, value)
	}
}

func TestKeyValueRepository_Overwrite(t *testing.T) {
	db := setupKVTestDB(t)
	defer db.Close()

	repo := NewKeyValueRepository(db)
	ctx := context.Background()

	if err := repo.Set(ctx, "k", "one"); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}
	if err := repo.Set(ctx, "k", "two"); err != nil {
		t.Fatalf("Failed to overwrite value: %v", err)
	}

	value, _, err := repo.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Failed to get value: %v", err)
	}
	if value != "two" {
		t.Errorf("Expected 'two', got '%s'", value)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row, got %d", count)
	}
}

func TestKeyValueRepository_SetMany(t *testing.T) {
	db := setupKVTestDB(t)
	defer db.Close()

	repo := NewKeyValueRepository(db)
	ctx := context.Background()

	values := map[string]string{
		"deckbuilder_a":     `{"deckList":{}}`,
		"deckbuilder_names": `["a"]`,
	}
	if err := repo.SetMany(ctx, values); err != nil {
		t.Fatalf("Failed to set many: %v", err)
	}

	for key, want := range values {
		got, ok, err := repo.Get(ctx, key)
		if err != nil {
			t.Fatalf("Failed to get %s: %v", key, err)
		}
		if !ok || got != want {
			t.Errorf("%s = %q (ok=%v), want %q", key, got, ok, want)
		}
	}
}

func TestKeyValueRepository_SetManyCanceledLeavesNothing(t *testing.T) {
	db := setupKVTestDB(t)
	defer db.Close()

	repo := NewKeyValueRepository(db)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.SetMany(ctx, map[string]string{"a": "1", "b": "2"}); err == nil {
		t.Fatal("Expected error for canceled context")
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&count); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected no rows, got %d", count)
	}
}

func TestKeyValueRepository_Delete(t *testing.T) {
	db := setupKVTestDB(t)
	defer db.Close()

	repo := NewKeyValueRepository(db)
	ctx := context.Background()

	if err := repo.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}
	if err := repo.Delete(ctx, "k"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if err := repo.Delete(ctx, "k"); err != nil {
		t.Fatalf("Deleting a missing key should not fail: %v", err)
	}

	if _, ok, _ := repo.Get(ctx, "k"); ok {
		t.Error("Expected key to be deleted")
	}
}
