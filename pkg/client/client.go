// Package client is a Go client for the PookieVerse scrapbook API. It
// holds the session cookie, keeps a local cache of entries that is
// rebuilt from the server after every mutation, and refuses to start a
// second mutation while one is in flight.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pookieverse/apiserver/types"
)

// ErrBusy is returned when a mutation is attempted while another one is
// still in flight. Duplicate submission of the same action is a client
// bug; failing fast keeps it visible.
var ErrBusy = errors.New("another request is in flight")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// User is the public view of a user returned by the API.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateEntry is the payload for creating an entry. All fields are
// required.
type CreateEntry struct {
	Title       string
	Date        string
	Description string
	ImageName   string
	Image       []byte
}

// UpdateEntry is the payload for updating an entry. Zero-valued fields
// are left unchanged on the server.
type UpdateEntry struct {
	Title       string
	Date        string
	Description string
	ImageName   string
	Image       []byte
}

// Client talks to the scrapbook API. The server is the sole source of
// truth: the cached entries are discarded and refetched after every
// mutation.
type Client struct {
	http *resty.Client

	busy atomic.Bool

	mu      sync.RWMutex
	entries []types.Entry
}

// New constructs a Client for the given base URL.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetCookieJar(jar).
		SetTimeout(15 * time.Second)

	return &Client{http: httpClient}, nil
}

// SignIn authenticates with the name/birthday pair. The session cookie
// is stored in the client's jar.
func (c *Client) SignIn(ctx context.Context, name, birthday string) (User, error) {
	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		User    User   `json:"user"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"name": name, "birthday": birthday}).
		SetResult(&result).
		Post("/api/auth/signin")
	if err != nil {
		return User{}, fmt.Errorf("sign in request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return User{}, err
	}

	return result.User, nil
}

// SignOut destroys the server-side session and drops the local cache.
func (c *Client) SignOut(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post("/api/auth/signout")
	if err != nil {
		return fmt.Errorf("sign out request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries = nil
	c.mu.Unlock()
	return nil
}

// Status reports whether the client currently holds a valid session.
func (c *Client) Status(ctx context.Context) (bool, *User, error) {
	var result struct {
		Success       bool   `json:"success"`
		Authenticated bool   `json:"authenticated"`
		User          *User  `json:"user"`
		Message       string `json:"message"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/api/auth/status")
	if err != nil {
		return false, nil, fmt.Errorf("status request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return false, nil, err
	}

	return result.Authenticated, result.User, nil
}

// Entries returns the cached entry list. It is a copy; mutating it has
// no effect on the cache.
func (c *Client) Entries() []types.Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]types.Entry, len(c.entries))
	copy(entries, c.entries)
	return entries
}

// Refresh refetches the entry list from the server and replaces the
// cache.
func (c *Client) Refresh(ctx context.Context) ([]types.Entry, error) {
	var result struct {
		Success bool          `json:"success"`
		Entries []types.Entry `json:"entries"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/api/scrapbook/entries")
	if err != nil {
		return nil, fmt.Errorf("list request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries = result.Entries
	c.mu.Unlock()
	return c.Entries(), nil
}

// Entry fetches a single entry by id.
func (c *Client) Entry(ctx context.Context, id string) (types.Entry, error) {
	var result struct {
		Success bool        `json:"success"`
		Entry   types.Entry `json:"entry"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/api/scrapbook/entries/" + id)
	if err != nil {
		return types.Entry{}, fmt.Errorf("get request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return types.Entry{}, err
	}

	return result.Entry, nil
}

// CreateEntry creates a new entry and refreshes the cache.
func (c *Client) CreateEntry(ctx context.Context, params CreateEntry) (types.Entry, error) {
	if err := c.begin(); err != nil {
		return types.Entry{}, err
	}
	defer c.end()

	var result struct {
		Success bool        `json:"success"`
		Entry   types.Entry `json:"entry"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"title":       params.Title,
			"date":        params.Date,
			"description": params.Description,
		}).
		SetFileReader("image", params.ImageName, bytes.NewReader(params.Image)).
		SetResult(&result).
		Post("/api/scrapbook/entries")
	if err != nil {
		return types.Entry{}, fmt.Errorf("create request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return types.Entry{}, err
	}

	if _, err := c.Refresh(ctx); err != nil {
		return result.Entry, err
	}
	return result.Entry, nil
}

// UpdateEntry updates an entry in place and refreshes the cache.
func (c *Client) UpdateEntry(ctx context.Context, id string, params UpdateEntry) (types.Entry, error) {
	if err := c.begin(); err != nil {
		return types.Entry{}, err
	}
	defer c.end()

	formData := map[string]string{}
	if params.Title != "" {
		formData["title"] = params.Title
	}
	if params.Date != "" {
		formData["date"] = params.Date
	}
	if params.Description != "" {
		formData["description"] = params.Description
	}

	var result struct {
		Success bool        `json:"success"`
		Entry   types.Entry `json:"entry"`
	}

	request := c.http.R().
		SetContext(ctx).
		SetFormData(formData).
		SetResult(&result)
	if len(params.Image) > 0 {
		request.SetFileReader("image", params.ImageName, bytes.NewReader(params.Image))
	}

	resp, err := request.Put("/api/scrapbook/entries/" + id)
	if err != nil {
		return types.Entry{}, fmt.Errorf("update request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return types.Entry{}, err
	}

	if _, err := c.Refresh(ctx); err != nil {
		return result.Entry, err
	}
	return result.Entry, nil
}

// DeleteEntry removes an entry and refreshes the cache.
func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	if err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/api/scrapbook/entries/" + id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return err
	}

	_, err = c.Refresh(ctx)
	return err
}

func (c *Client) begin() error {
	if !c.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

func (c *Client) end() {
	c.busy.Store(false)
}

func checkStatus(resp *resty.Response) error {
	if resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	var payload struct {
		Message string `json:"message"`
	}
	// The error body is best-effort; the status code alone is enough.
	_ = json.Unmarshal(resp.Body(), &payload)
	return &APIError{Status: resp.StatusCode(), Message: payload.Message}
}
