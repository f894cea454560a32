package store

import (
	"errors"
	"sync"

	"docquery/pkg/domain"
)

// MemoryStore keeps rows in-process. Used by tests and local experiments.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]domain.User // key: username
	nextUserID    int64
	docs          []domain.Document // insertion order; upsert removes and re-appends
	nextDocID     int64
	history       []domain.HistoryEntry
	nextHistoryID int64
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]domain.User),
	}
}

// CreateUser registers a user; duplicate usernames are rejected like the
// unique index would.
func (m *MemoryStore) CreateUser(u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[u.Username]; exists {
		return domain.User{}, errors.New("username already taken")
	}
	m.nextUserID++
	u.ID = m.nextUserID
	m.users[u.Username] = u
	return u, nil
}

// HasUsername checks if a username is taken.
func (m *MemoryStore) HasUsername(username string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[username]
	return ok, nil
}

// GetUserByUsername looks up a user by username.
func (m *MemoryStore) GetUserByUsername(username string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	return u, ok, nil
}

// UpsertDocument replaces any document with the same filename; the
// replacement takes a fresh id and becomes the latest document.
func (m *MemoryStore) UpsertDocument(filename, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	filtered := m.docs[:0]
	for _, d := range m.docs {
		if d.Filename != filename {
			filtered = append(filtered, d)
		}
	}
	m.docs = filtered
	m.nextDocID++
	m.docs = append(m.docs, domain.Document{
		ID:       m.nextDocID,
		Filename: filename,
		Content:  content,
	})
	return nil
}

// LatestDocument returns the most recently written document, if any.
func (m *MemoryStore) LatestDocument() (domain.Document, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.docs) == 0 {
		return domain.Document{}, false, nil
	}
	return m.docs[len(m.docs)-1], true, nil
}

// AppendHistory records one question/response pair.
func (m *MemoryStore) AppendHistory(e domain.HistoryEntry) (domain.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextHistoryID++
	e.ID = m.nextHistoryID
	m.history = append(m.history, e)
	return e, nil
}

// ListHistoryByUser returns the user's entries in insertion order.
func (m *MemoryStore) ListHistoryByUser(username string) ([]domain.HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []domain.HistoryEntry
	for _, e := range m.history {
		if e.Username == username {
			res = append(res, e)
		}
	}
	return res, nil
}
