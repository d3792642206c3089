package types

import "time"

// User represents a registered scrapbook member. Users are provisioned
// out of band by the seed-users command and are immutable afterwards.
type User struct {
	// ID is the unique identifier of the user.
	ID string `json:"id" db:"id"`

	// Name is the user's display name, unique across all users.
	Name string `json:"name" db:"name"`

	// Birthday is the user's date of birth. Together with Name it forms
	// the shared-secret credential pair; it is never exposed in API
	// responses.
	Birthday time.Time `json:"-" db:"birthday"`

	// CreatedAt is the timestamp when the user was provisioned.
	CreatedAt time.Time `json:"-" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user.
	UpdatedAt time.Time `json:"-" db:"updated_at"`
}
