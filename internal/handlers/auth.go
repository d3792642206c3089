package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pookieverse/apiserver/internal/services"
	"github.com/pookieverse/apiserver/types"
)

const (
	msgMissingCredentials = "Name and birthday are required"
	msgInvalidCredentials = "Invalid credentials"
	msgUnauthorized       = "Unauthorized. Please sign in."
)

// CookieConfig describes how the session cookie is issued. In
// production the cookie is Secure and SameSite=None so a frontend on a
// different origin can send it; in dev it stays Lax over plain HTTP.
type CookieConfig struct {
	Name   string
	Secure bool
}

func (c CookieConfig) sameSite() http.SameSite {
	if c.Secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// AuthHandler provides session authentication endpoints.
type AuthHandler struct {
	auth   *services.AuthService
	cookie CookieConfig
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(auth *services.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie}
}

// AuthRouter registers auth routes on the given router. None of these
// routes sit behind the session gate.
func AuthRouter(r chi.Router, auth *services.AuthService, cookie CookieConfig) {
	handler := NewAuthHandler(auth, cookie)

	r.Post("/signin", handler.SignIn)
	r.Post("/signout", handler.SignOut)
	r.Get("/status", handler.Status)
}

// RequireSession is the authorization gate: it admits a request only if
// its cookie resolves to a live session, and injects that session into
// the request context. It never mutates store state on the allow path.
func RequireSession(auth *services.AuthService, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				writeError(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}

			session, err := auth.Validate(r.Context(), cookie.Value)
			if err != nil {
				writeError(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), contextSessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type SignInRequest struct {
	Name     string `json:"name"`
	Birthday string `json:"birthday"`
}

type SignInResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    UserPayload `json:"user"`
}

// SignIn verifies the name/birthday pair and establishes a session.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgMissingCredentials)
		return
	}

	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Birthday) == "" {
		writeError(w, http.StatusBadRequest, msgMissingCredentials)
		return
	}

	// An unparseable birthday can never match a stored one; it fails the
	// same way a wrong birthday does.
	birthday, err := types.ParseDate(req.Birthday)
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	session, err := h.auth.SignIn(r.Context(), req.Name, birthday)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		writeError(w, http.StatusInternalServerError, "Server error during sign in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    session.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.sameSite(),
		MaxAge:   int(h.auth.TTL().Seconds()),
	})

	writeJSON(w, http.StatusOK, SignInResponse{
		Success: true,
		Message: "Sign in successful",
		User:    UserPayload{ID: session.UserID, Name: session.UserName},
	})
}

// SignOut destroys the current session, if any, and clears the cookie.
// Signing out without a session still succeeds.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(h.cookie.Name); err == nil {
		token = cookie.Value
	}

	if err := h.auth.SignOut(r.Context(), token); err != nil {
		writeError(w, http.StatusInternalServerError, "Error signing out")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: h.cookie.sameSite(),
		MaxAge:   -1,
	})

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Signed out successfully",
	})
}

type StatusResponse struct {
	Success       bool         `json:"success"`
	Authenticated bool         `json:"authenticated"`
	User          *UserPayload `json:"user,omitempty"`
}

// Status reports whether the request carries a valid session. Absence of
// a session is a normal outcome, never an error.
func (h *AuthHandler) Status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(h.cookie.Name)
	if err != nil {
		writeJSON(w, http.StatusOK, StatusResponse{Success: true, Authenticated: false})
		return
	}

	session, err := h.auth.Validate(r.Context(), cookie.Value)
	if err != nil {
		writeJSON(w, http.StatusOK, StatusResponse{Success: true, Authenticated: false})
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{
		Success:       true,
		Authenticated: true,
		User:          &UserPayload{ID: session.UserID, Name: session.UserName},
	})
}
