package types

import "time"

// Entry represents a single scrapbook page: a dated photo with a title
// and a short journal-style description.
type Entry struct {
	// ID is the unique identifier of the entry.
	ID string `json:"_id" db:"id"`

	// Title is the human-readable caption of the entry.
	Title string `json:"title" db:"title"`

	// Date is the calendar day the entry commemorates. Time of day is
	// not significant; the value is normalized to UTC midnight.
	Date time.Time `json:"date" db:"date"`

	// ImageUrl is the durable retrieval URL of the uploaded photo,
	// produced by the object storage backend.
	ImageUrl string `json:"imageUrl" db:"image_url"`

	// Description is the journal text attached to the entry.
	Description string `json:"description" db:"description"`

	// CreatedAt is the timestamp at which the entry was created.
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the entry.
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}
