package types

import "time"

// Session binds an opaque token to an authenticated user. Sessions live
// server-side; the client only ever holds the token, in a cookie.
type Session struct {
	// Token is the opaque session identifier carried by the cookie.
	Token string `json:"-" db:"token"`

	// UserID is the id of the authenticated user.
	UserID string `json:"userId" db:"user_id"`

	// UserName is the display name of the authenticated user, denormalized
	// so status checks do not need a user lookup.
	UserName string `json:"userName" db:"user_name"`

	// ExpiresAt is the instant after which the session no longer
	// authenticates requests. Expiry is checked on read, not swept.
	ExpiresAt time.Time `json:"-" db:"expires_at"`

	// CreatedAt is the timestamp when the session was created.
	CreatedAt time.Time `json:"-" db:"created_at"`
}

// Expired reports whether the session is past its retention window at
// the given instant.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
