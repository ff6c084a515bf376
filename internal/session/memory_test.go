package session

import (
	"context"
	"testing"
	"time"
)

func newTestMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMemoryStore_SaveGet(t *testing.T) {
	s := newTestMemoryStore(t)
	ctx := context.Background()

	rec := &Record{
		ID:        "sid-1",
		UserID:    7,
		Username:  "alice",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil for a saved record")
	}
	if got.UserID != 7 || got.Username != "alice" {
		t.Errorf("Get() = %+v, want UserID 7 / alice", got)
	}

	// the store hands out copies
	got.Username = "mallory"
	again, _ := s.Get(ctx, "sid-1")
	if again.Username != "alice" {
		t.Error("mutating a returned record leaked into the store")
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	s := newTestMemoryStore(t)

	got, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil for a missing id", got)
	}
}

func TestMemoryStore_GetExpired(t *testing.T) {
	s := newTestMemoryStore(t)
	ctx := context.Background()

	rec := &Record{ID: "sid-old", ExpiresAt: time.Now().Add(-time.Minute)}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Get(ctx, "sid-old")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Error("Get() returned an expired record")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	s := newTestMemoryStore(t)
	ctx := context.Background()

	rec := &Record{ID: "sid-1", ExpiresAt: time.Now().Add(time.Hour)}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, _ := s.Get(ctx, "sid-1")
	if got != nil {
		t.Error("Get() returned a deleted record")
	}

	// deleting again is fine
	if err := s.Delete(ctx, "sid-1"); err != nil {
		t.Errorf("Delete() of a missing id errored: %v", err)
	}
}
