package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pookieverse/apiserver/types"
)

// In-memory repository implementations for tests and local development
// without Postgres. Each repo is safe for concurrent use.

// MemoryEntries is an in-memory EntryRepository.
type MemoryEntries struct {
	mu      sync.Mutex
	entries map[string]types.Entry
}

func NewMemoryEntries() *MemoryEntries {
	return &MemoryEntries{entries: make(map[string]types.Entry)}
}

func (m *MemoryEntries) List(ctx context.Context) ([]types.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := make([]types.Entry, 0, len(m.entries))
	for _, entry := range m.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].Date.Equal(entries[j].Date) {
			return entries[i].Date.After(entries[j].Date)
		}
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
	return entries, nil
}

func (m *MemoryEntries) Get(ctx context.Context, id string) (types.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[id]
	if !ok {
		return types.Entry{}, ErrNotFound
	}
	return entry, nil
}

func (m *MemoryEntries) Create(ctx context.Context, entry types.Entry) (types.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	m.entries[entry.ID] = entry
	return entry, nil
}

func (m *MemoryEntries) Update(ctx context.Context, entry types.Entry) (types.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.entries[entry.ID]
	if !ok {
		return types.Entry{}, ErrNotFound
	}
	entry.CreatedAt = existing.CreatedAt
	entry.UpdatedAt = time.Now()
	m.entries[entry.ID] = entry
	return entry, nil
}

func (m *MemoryEntries) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

// MemoryUsers is an in-memory UserRepository.
type MemoryUsers struct {
	mu    sync.Mutex
	users map[string]types.User
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]types.User)}
}

func (m *MemoryUsers) GetByID(ctx context.Context, id string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return types.User{}, ErrNotFound
}

func (m *MemoryUsers) GetByName(ctx context.Context, name string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[name]
	if !ok {
		return types.User{}, ErrNotFound
	}
	return user, nil
}

func (m *MemoryUsers) Create(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users[user.Name] = user
	return user, nil
}

// MemorySessions is an in-memory SessionRepository. Expiry is checked on
// read, matching the SQL repository.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]types.Session
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]types.Session)}
}

func (m *MemorySessions) Create(ctx context.Context, session types.Session) (types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session.CreatedAt = time.Now()
	m.sessions[session.Token] = session
	return session, nil
}

func (m *MemorySessions) Get(ctx context.Context, token string) (types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return types.Session{}, ErrNotFound
	}
	if session.Expired(time.Now()) {
		delete(m.sessions, token)
		return types.Session{}, ErrNotFound
	}
	return session, nil
}

func (m *MemorySessions) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}
