package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pookieverse/apiserver/types"
)

type contextKey string

const contextSessionKey contextKey = "session"

var errNoSession = errors.New("no session in context")

func sessionFromContext(ctx context.Context) (types.Session, error) {
	session, ok := ctx.Value(contextSessionKey).(types.Session)
	if !ok || session.UserID == "" {
		return types.Session{}, errNoSession
	}
	return session, nil
}

// UserPayload is the public view of a user returned by the API. The
// birthday never leaves the server.
type UserPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ErrorResponse is the uniform failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SuccessResponse is the envelope for operations that return no payload.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// Healthz reports process liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
