package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pookieverse/apiserver/internal/logger"
	"github.com/pookieverse/apiserver/internal/storage"
	"github.com/pookieverse/apiserver/types"
)

// EntryRepository defines persistence operations for scrapbook entries.
type EntryRepository interface {
	List(ctx context.Context) ([]types.Entry, error)
	Get(ctx context.Context, id string) (types.Entry, error)
	Create(ctx context.Context, entry types.Entry) (types.Entry, error)
	Update(ctx context.Context, entry types.Entry) (types.Entry, error)
	Delete(ctx context.Context, id string) error
}

// ImageStore stores an uploaded image and returns its retrieval URL.
type ImageStore interface {
	Upload(ctx context.Context, file storage.File) (string, error)
}

// EventPublisher announces entry lifecycle events to a broker channel.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// CreateEntryParams carries a fully-parsed create request.
type CreateEntryParams struct {
	Title       string
	Date        time.Time
	Description string
	Image       storage.File
}

// UpdateEntryParams carries a fully-parsed update request. Empty string
// fields and nil pointers mean "leave unchanged".
type UpdateEntryParams struct {
	Title       string
	Date        *time.Time
	Description string
	Image       *storage.File
}

// EntryService encapsulates scrapbook entry use-cases.
type EntryService struct {
	repo    EntryRepository
	images  ImageStore
	events  EventPublisher
	channel string
	log     *logger.Logger
}

// NewEntryService constructs an EntryService. events may be nil, in
// which case no lifecycle events are published.
func NewEntryService(repo EntryRepository, images ImageStore, events EventPublisher, channel string, log *logger.Logger) *EntryService {
	if log == nil {
		log = logger.Nop()
	}
	return &EntryService{
		repo:    repo,
		images:  images,
		events:  events,
		channel: channel,
		log:     log,
	}
}

// List returns all entries, newest date first.
func (s *EntryService) List(ctx context.Context) ([]types.Entry, error) {
	return s.repo.List(ctx)
}

// Get returns one entry by id.
func (s *EntryService) Get(ctx context.Context, id string) (types.Entry, error) {
	return s.repo.Get(ctx, id)
}

// Create uploads the image, then persists a new entry. The entry is
// never written without a stored image URL.
func (s *EntryService) Create(ctx context.Context, params CreateEntryParams) (types.Entry, error) {
	title := strings.TrimSpace(params.Title)
	description := strings.TrimSpace(params.Description)
	if title == "" || description == "" || params.Date.IsZero() {
		return types.Entry{}, fmt.Errorf("%w: title, date and description are required", ErrValidation)
	}
	if len(params.Image.Data) == 0 {
		return types.Entry{}, fmt.Errorf("%w: image file is required", ErrValidation)
	}

	imageURL, err := s.images.Upload(ctx, params.Image)
	if err != nil {
		return types.Entry{}, err
	}

	entry := types.Entry{
		ID:          uuid.NewString(),
		Title:       title,
		Date:        types.DateOnly(params.Date),
		ImageUrl:    imageURL,
		Description: description,
	}
	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return types.Entry{}, fmt.Errorf("persist entry: %w", err)
	}

	s.publish(ctx, "created", created.ID)
	return created, nil
}

// Update replaces the supplied fields of an existing entry and leaves
// the rest unchanged. A new image replaces the stored URL; the old
// object is not deleted.
func (s *EntryService) Update(ctx context.Context, id string, params UpdateEntryParams) (types.Entry, error) {
	entry, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Entry{}, err
	}

	if title := strings.TrimSpace(params.Title); title != "" {
		entry.Title = title
	}
	if params.Date != nil {
		entry.Date = types.DateOnly(*params.Date)
	}
	if description := strings.TrimSpace(params.Description); description != "" {
		entry.Description = description
	}
	if params.Image != nil {
		imageURL, err := s.images.Upload(ctx, *params.Image)
		if err != nil {
			return types.Entry{}, err
		}
		entry.ImageUrl = imageURL
	}

	updated, err := s.repo.Update(ctx, entry)
	if err != nil {
		return types.Entry{}, err
	}

	s.publish(ctx, "updated", updated.ID)
	return updated, nil
}

// Delete removes an entry. The stored image is left in place.
func (s *EntryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, "deleted", id)
	return nil
}

type entryEvent struct {
	Action  string    `json:"action"`
	EntryID string    `json:"entryId"`
	At      time.Time `json:"at"`
}

// publish is best-effort: a broker failure never fails the request.
func (s *EntryService) publish(ctx context.Context, action, entryID string) {
	if s.events == nil {
		return
	}

	data, err := json.Marshal(entryEvent{Action: action, EntryID: entryID, At: time.Now()})
	if err != nil {
		return
	}
	if _, err := s.events.Publish(ctx, s.channel, data, map[string]string{"action": action}); err != nil {
		s.log.Warn().Err(err).Str("action", action).Str("entry_id", entryID).Msg("publish entry event")
	}
}
