package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pookieverse/apiserver/internal/store"
	"github.com/pookieverse/apiserver/types"
)

// SessionTTL is the fixed retention window for sessions.
const SessionTTL = 7 * 24 * time.Hour

// SessionRepository defines persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session types.Session) (types.Session, error)
	Get(ctx context.Context, token string) (types.Session, error)
	Delete(ctx context.Context, token string) error
}

// AuthService handles sign-in, sign-out and session validation.
type AuthService struct {
	users    UserRepository
	sessions SessionRepository
	ttl      time.Duration
}

func NewAuthService(users UserRepository, sessions SessionRepository) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		ttl:      SessionTTL,
	}
}

// SignIn verifies the name/birthday credential pair and creates a
// session on success. The birthday comparison uses calendar fields only;
// time of day and zone are not significant. Unknown names and birthday
// mismatches both fail with ErrInvalidCredentials.
func (s *AuthService) SignIn(ctx context.Context, name string, birthday time.Time) (types.Session, error) {
	user, err := s.users.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Session{}, ErrInvalidCredentials
		}
		return types.Session{}, fmt.Errorf("look up user: %w", err)
	}

	if !types.SameCalendarDay(user.Birthday, birthday) {
		return types.Session{}, ErrInvalidCredentials
	}

	token, err := newSessionToken()
	if err != nil {
		return types.Session{}, fmt.Errorf("generate session token: %w", err)
	}

	session := types.Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.Name,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	created, err := s.sessions.Create(ctx, session)
	if err != nil {
		return types.Session{}, fmt.Errorf("create session: %w", err)
	}
	return created, nil
}

// SignOut destroys the session for a token. An empty or unknown token is
// not an error: sign-out is idempotent.
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// Validate resolves a token to its session. Missing and expired tokens
// both return store.ErrNotFound.
func (s *AuthService) Validate(ctx context.Context, token string) (types.Session, error) {
	return s.sessions.Get(ctx, token)
}

// TTL returns the session retention window, for cookie max-age.
func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

func newSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
