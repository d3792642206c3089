package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pookieverse/apiserver/types"
)

func TestMemoryEntries_ListOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEntries()

	older := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	if _, err := repo.Create(ctx, types.Entry{ID: "a", Date: older}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, types.Entry{ID: "b", Date: newer}); err != nil {
		t.Fatalf("create: %v", err)
	}

	entries, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "b" || entries[1].ID != "a" {
		t.Errorf("expected newest date first, got %s, %s", entries[0].ID, entries[1].ID)
	}
}

func TestMemoryEntries_UpdatePreservesCreatedAt(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEntries()

	created, err := repo.Create(ctx, types.Entry{ID: "a", Title: "before"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.Update(ctx, types.Entry{ID: "a", Title: "after"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("update must not change created_at")
	}
	if updated.Title != "after" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}
}

func TestMemoryEntries_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryEntries()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, types.Entry{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update: expected ErrNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUsers_Lookup(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUsers()

	if _, err := repo.Create(ctx, types.User{ID: "u1", Name: "Wolfie"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	byName, err := repo.GetByName(ctx, "Wolfie")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if byName.ID != "u1" {
		t.Errorf("expected id u1, got %q", byName.ID)
	}

	byID, err := repo.GetByID(ctx, "u1")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if byID.Name != "Wolfie" {
		t.Errorf("expected name 'Wolfie', got %q", byID.Name)
	}

	if _, err := repo.GetByName(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemorySessions_ExpiryOnRead(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessions()

	if _, err := repo.Create(ctx, types.Session{Token: "dead", ExpiresAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, types.Session{Token: "live", ExpiresAt: time.Now().Add(time.Hour)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.Get(ctx, "dead"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected expired session to be gone, got %v", err)
	}
	if _, err := repo.Get(ctx, "live"); err != nil {
		t.Errorf("expected live session, got %v", err)
	}

	if err := repo.Delete(ctx, "live"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, "live"); err != nil {
		t.Errorf("second delete should succeed, got %v", err)
	}
	if _, err := repo.Get(ctx, "live"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected deleted session to be gone, got %v", err)
	}
}
