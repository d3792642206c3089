package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pookieverse/apiserver/types"
)

// SessionRepository handles persistence for server-side sessions.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session types.Session) (types.Session, error) {
	session.CreatedAt = time.Now()

	const query = `
		INSERT INTO sessions (token, user_id, user_name, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		session.Token,
		session.UserID,
		session.UserName,
		session.ExpiresAt,
		session.CreatedAt,
	); err != nil {
		return types.Session{}, err
	}
	return session, nil
}

// Get returns the session for a token. Expired sessions are removed
// lazily and reported as ErrNotFound; there is no background sweep.
func (r *SessionRepository) Get(ctx context.Context, token string) (types.Session, error) {
	const query = `
		SELECT token, user_id, user_name, expires_at, created_at
		FROM sessions
		WHERE token = $1`
	var session types.Session
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.UserName,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Session{}, ErrNotFound
		}
		return types.Session{}, err
	}

	if session.Expired(time.Now()) {
		_ = r.Delete(ctx, token)
		return types.Session{}, ErrNotFound
	}

	return session, nil
}

// Delete removes a session. Deleting an absent token is not an error:
// sign-out must be idempotent.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM sessions WHERE token = $1`
	_, err := r.db.ExecContext(ctx, query, token)
	return err
}
