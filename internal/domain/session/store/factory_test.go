package store

import (
	"context"
	"path/filepath"
	"testing"

	"vibibay-client-go/internal/platform/storage"
)

func TestFactoryCreatesMemoryStore(t *testing.T) {
	store, err := New(Config{Driver: DriverMemory}, Dependencies{})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close(context.Background())
	})

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats["type"] != "memory" {
		t.Fatalf("expected memory store, got %v", stats["type"])
	}
}

func TestFactoryDefaultsToSQLite(t *testing.T) {
	db, err := storage.OpenForTest(filepath.Join(t.TempDir(), "factory.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	store, err := New(Config{}, Dependencies{SQLiteDB: db})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats error: %v", err)
	}
	if stats["type"] != "sqlite" {
		t.Fatalf("expected sqlite store, got %v", stats["type"])
	}
}

func TestFactoryRejectsMissingDependencies(t *testing.T) {
	if _, err := New(Config{Driver: DriverSQLite}, Dependencies{}); err == nil {
		t.Fatal("expected error for sqlite driver without database handle")
	}
	if _, err := New(Config{Driver: "etcd"}, Dependencies{}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
