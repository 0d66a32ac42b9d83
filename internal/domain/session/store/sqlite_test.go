package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"vibibay-client-go/internal/domain/session/model"
	"vibibay-client-go/internal/platform/storage"
)

func newSQLiteTestStore(t *testing.T, ttl time.Duration) Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "sessions.db")
	db, err := storage.OpenForTest(dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	store, err := NewSQLite(db, Config{TTL: ttl})
	if err != nil {
		t.Fatalf("NewSQLite error: %v", err)
	}
	return store
}

func TestSQLiteStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t, time.Hour)

	session := model.Session{
		Profile: "default",
		Token:   "tok-sqlite",
		Email:   "a@b.com",
		UserID:  42,
		Metadata: map[string]any{
			"expires_at": "2026-09-07T00:00:00Z",
		},
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := store.Get(ctx, session.Profile)
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Token != session.Token || got.UserID != session.UserID {
		t.Fatalf("unexpected session: %+v", got)
	}
	if got.Metadata["expires_at"] != "2026-09-07T00:00:00Z" {
		t.Fatalf("metadata not round-tripped: %+v", got.Metadata)
	}

	if err := store.Remove(ctx, session.Profile); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if _, err := store.Get(ctx, session.Profile); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after removal, got %v", err)
	}
}

func TestSQLiteStoreSaveReplacesExisting(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t, time.Hour)

	if err := store.Save(ctx, model.Session{Profile: "default", Token: "tok-old"}); err != nil {
		t.Fatalf("first Save error: %v", err)
	}
	if err := store.Save(ctx, model.Session{Profile: "default", Token: "tok-new"}); err != nil {
		t.Fatalf("second Save error: %v", err)
	}

	got, err := store.Get(ctx, "default")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if got.Token != "tok-new" {
		t.Fatalf("expected replacement token, got %q", got.Token)
	}

	profiles, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("expected single profile after replace, got %v", profiles)
	}
}

func TestSQLiteStoreCleanupExpired(t *testing.T) {
	ctx := context.Background()
	store := newSQLiteTestStore(t, time.Hour)

	past := time.Now().Add(-time.Minute)
	expired := model.Session{
		Profile:   "stale",
		Token:     "tok-stale",
		ExpiresAt: &past,
	}
	if err := store.Save(ctx, expired); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if err := store.Save(ctx, model.Session{Profile: "live", Token: "tok-live"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	if _, err := store.Get(ctx, "stale"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired session, got %v", err)
	}

	if err := store.CleanupExpired(ctx); err != nil {
		t.Fatalf("CleanupExpired error: %v", err)
	}

	profiles, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(profiles) != 1 || profiles[0] != "live" {
		t.Fatalf("expected only live profile after cleanup, got %v", profiles)
	}
}
