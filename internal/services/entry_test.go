package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pookieverse/apiserver/internal/storage"
	"github.com/pookieverse/apiserver/internal/store"
	"github.com/pookieverse/apiserver/types"
)

type mockEntryRepo struct {
	listFn   func(ctx context.Context) ([]types.Entry, error)
	getFn    func(ctx context.Context, id string) (types.Entry, error)
	createFn func(ctx context.Context, entry types.Entry) (types.Entry, error)
	updateFn func(ctx context.Context, entry types.Entry) (types.Entry, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockEntryRepo) List(ctx context.Context) ([]types.Entry, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockEntryRepo) Get(ctx context.Context, id string) (types.Entry, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return types.Entry{}, store.ErrNotFound
}

func (m *mockEntryRepo) Create(ctx context.Context, entry types.Entry) (types.Entry, error) {
	if m.createFn != nil {
		return m.createFn(ctx, entry)
	}
	return entry, nil
}

func (m *mockEntryRepo) Update(ctx context.Context, entry types.Entry) (types.Entry, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, entry)
	}
	return entry, nil
}

func (m *mockEntryRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockImageStore struct {
	uploadFn func(ctx context.Context, file storage.File) (string, error)
}

func (m *mockImageStore) Upload(ctx context.Context, file storage.File) (string, error) {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, file)
	}
	return "https://images.test/" + file.Filename, nil
}

type mockPublisher struct {
	publishFn func(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if m.publishFn != nil {
		return m.publishFn(ctx, channel, data, attrs)
	}
	return "msg-1", nil
}

func validCreateParams() CreateEntryParams {
	return CreateEntryParams{
		Title:       "Beach day",
		Date:        time.Date(2024, time.July, 4, 15, 30, 0, 0, time.UTC),
		Description: "Sandcastles all afternoon",
		Image:       storage.File{Filename: "beach.png", ContentType: "image/png", Data: []byte("png-bytes")},
	}
}

func TestEntryService_Create(t *testing.T) {
	var stored types.Entry
	repo := &mockEntryRepo{
		createFn: func(ctx context.Context, entry types.Entry) (types.Entry, error) {
			stored = entry
			return entry, nil
		},
	}

	svc := NewEntryService(repo, &mockImageStore{}, nil, "", nil)
	entry, err := svc.Create(context.Background(), validCreateParams())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if stored.ID == "" {
		t.Error("expected a generated id")
	}
	if stored.ImageUrl != "https://images.test/beach.png" {
		t.Errorf("unexpected image url: %q", stored.ImageUrl)
	}
	wantDate := time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC)
	if !stored.Date.Equal(wantDate) {
		t.Errorf("expected date normalized to %v, got %v", wantDate, stored.Date)
	}
	if entry.ID != stored.ID {
		t.Error("returned entry should match the persisted one")
	}
}

func TestEntryService_Create_Validation(t *testing.T) {
	svc := NewEntryService(&mockEntryRepo{}, &mockImageStore{}, nil, "", nil)

	tests := []struct {
		name   string
		mutate func(p *CreateEntryParams)
	}{
		{"missing title", func(p *CreateEntryParams) { p.Title = "  " }},
		{"missing date", func(p *CreateEntryParams) { p.Date = time.Time{} }},
		{"missing description", func(p *CreateEntryParams) { p.Description = "" }},
		{"missing image", func(p *CreateEntryParams) { p.Image.Data = nil }},
	}

	for _, tt := range tests {
		params := validCreateParams()
		tt.mutate(&params)
		if _, err := svc.Create(context.Background(), params); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tt.name, err)
		}
	}
}

func TestEntryService_Create_UploadFailure(t *testing.T) {
	images := &mockImageStore{
		uploadFn: func(ctx context.Context, file storage.File) (string, error) {
			return "", storage.ErrUnsupportedFormat
		},
	}
	repo := &mockEntryRepo{
		createFn: func(ctx context.Context, entry types.Entry) (types.Entry, error) {
			t.Error("nothing should be persisted when the upload fails")
			return entry, nil
		},
	}

	svc := NewEntryService(repo, images, nil, "", nil)
	_, err := svc.Create(context.Background(), validCreateParams())
	if !errors.Is(err, storage.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestEntryService_Update_PartialMerge(t *testing.T) {
	existing := types.Entry{
		ID:          "e1",
		Title:       "Old title",
		Date:        time.Date(2024, time.July, 4, 0, 0, 0, 0, time.UTC),
		ImageUrl:    "https://images.test/old.png",
		Description: "Old description",
	}

	var updated types.Entry
	repo := &mockEntryRepo{
		getFn: func(ctx context.Context, id string) (types.Entry, error) {
			return existing, nil
		},
		updateFn: func(ctx context.Context, entry types.Entry) (types.Entry, error) {
			updated = entry
			return entry, nil
		},
	}

	svc := NewEntryService(repo, &mockImageStore{}, nil, "", nil)
	_, err := svc.Update(context.Background(), "e1", UpdateEntryParams{Title: "New title"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if updated.Title != "New title" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}
	if updated.Description != existing.Description {
		t.Error("description should be unchanged when not supplied")
	}
	if !updated.Date.Equal(existing.Date) {
		t.Error("date should be unchanged when not supplied")
	}
	if updated.ImageUrl != existing.ImageUrl {
		t.Error("image url should be unchanged when no file is supplied")
	}
}

func TestEntryService_Update_ReplacesImage(t *testing.T) {
	repo := &mockEntryRepo{
		getFn: func(ctx context.Context, id string) (types.Entry, error) {
			return types.Entry{ID: "e1", ImageUrl: "https://images.test/old.png"}, nil
		},
	}

	svc := NewEntryService(repo, &mockImageStore{}, nil, "", nil)
	image := storage.File{Filename: "new.jpg", ContentType: "image/jpeg", Data: []byte("jpg")}
	entry, err := svc.Update(context.Background(), "e1", UpdateEntryParams{Image: &image})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if entry.ImageUrl != "https://images.test/new.jpg" {
		t.Errorf("expected replaced image url, got %q", entry.ImageUrl)
	}
}

func TestEntryService_Update_NotFound(t *testing.T) {
	svc := NewEntryService(&mockEntryRepo{}, &mockImageStore{}, nil, "", nil)

	_, err := svc.Update(context.Background(), "missing", UpdateEntryParams{Title: "x"})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEntryService_Delete_PublishesEvent(t *testing.T) {
	var gotChannel string
	var gotEvent entryEvent
	events := &mockPublisher{
		publishFn: func(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
			gotChannel = channel
			if err := json.Unmarshal(data, &gotEvent); err != nil {
				t.Fatalf("event payload is not JSON: %v", err)
			}
			return "msg-1", nil
		},
	}

	svc := NewEntryService(&mockEntryRepo{}, &mockImageStore{}, events, "scrapbook.entries", nil)
	if err := svc.Delete(context.Background(), "e1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotChannel != "scrapbook.entries" {
		t.Errorf("expected channel scrapbook.entries, got %q", gotChannel)
	}
	if gotEvent.Action != "deleted" || gotEvent.EntryID != "e1" {
		t.Errorf("unexpected event: %+v", gotEvent)
	}
}

func TestEntryService_PublishFailureDoesNotFailRequest(t *testing.T) {
	events := &mockPublisher{
		publishFn: func(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
			return "", errors.New("broker down")
		},
	}

	svc := NewEntryService(&mockEntryRepo{}, &mockImageStore{}, events, "scrapbook.entries", nil)
	if _, err := svc.Create(context.Background(), validCreateParams()); err != nil {
		t.Fatalf("a broker failure must not fail the request, got %v", err)
	}
}

func TestEntryService_Create_TrimsFields(t *testing.T) {
	var stored types.Entry
	repo := &mockEntryRepo{
		createFn: func(ctx context.Context, entry types.Entry) (types.Entry, error) {
			stored = entry
			return entry, nil
		},
	}

	svc := NewEntryService(repo, &mockImageStore{}, nil, "", nil)
	params := validCreateParams()
	params.Title = "  Beach day  "
	params.Description = "\tSandcastles\n"
	if _, err := svc.Create(context.Background(), params); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if stored.Title != "Beach day" || strings.TrimSpace(stored.Description) != stored.Description {
		t.Errorf("expected trimmed fields, got %q / %q", stored.Title, stored.Description)
	}
}
