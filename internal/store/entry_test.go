package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pookieverse/apiserver/types"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var entryColumns = []string{"id", "title", "date", "image_url", "description", "created_at", "updated_at"}

func TestEntryRepository_List(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntryRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(entryColumns).
		AddRow("e2", "Newer", now, "https://img/2.png", "second", now, now).
		AddRow("e1", "Older", now.Add(-24*time.Hour), "https://img/1.png", "first", now, now)

	mock.ExpectQuery("SELECT id, title, date, image_url, description, created_at, updated_at FROM entries ORDER BY date DESC, created_at DESC, id DESC").
		WillReturnRows(rows)

	entries, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "e2" || entries[1].ID != "e1" {
		t.Errorf("unexpected order: %s, %s", entries[0].ID, entries[1].ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestEntryRepository_List_Empty(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntryRepository(db)

	mock.ExpectQuery("SELECT id, title, date, image_url, description, created_at, updated_at FROM entries").
		WillReturnRows(sqlmock.NewRows(entryColumns))

	entries, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries == nil {
		t.Error("expected an empty slice, not nil")
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestEntryRepository_Get(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntryRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(entryColumns).
		AddRow("e1", "Beach day", now, "https://img/1.png", "sandcastles", now, now)

	mock.ExpectQuery("SELECT id, title, date, image_url, description, created_at, updated_at FROM entries WHERE id = \\$1").
		WithArgs("e1").
		WillReturnRows(rows)

	entry, err := repo.Get(context.Background(), "e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Title != "Beach day" {
		t.Errorf("expected title 'Beach day', got %q", entry.Title)
	}
}

func TestEntryRepository_Get_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntryRepository(db)

	mock.ExpectQuery("SELECT id, title, date, image_url, description, created_at, updated_at FROM entries WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryRepository_Create(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntryRepository(db)

	entry := types.Entry{
		ID:          "e1",
		Title:       "Beach day",
		Date:        time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC),
		ImageUrl:    "https://img/1.png",
		Description: "sandcastles",
	}

	mock.ExpectExec("INSERT INTO entries").
		WithArgs(entry.ID, entry.Title, entry.Date, entry.ImageUrl, entry.Description, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	created, err := repo.Create(context.Background(), entry)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestEntryRepository_Update_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntryRepository(db)

	mock.ExpectExec("UPDATE entries").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Update(context.Background(), types.Entry{ID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryRepository_Delete(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntryRepository(db)

	mock.ExpectExec("DELETE FROM entries WHERE id = \\$1").
		WithArgs("e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "e1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEntryRepository_Delete_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewEntryRepository(db)

	mock.ExpectExec("DELETE FROM entries WHERE id = \\$1").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
