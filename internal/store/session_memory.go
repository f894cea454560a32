package store

import (
	"sync"

	"docquery/internal/util"
)

// MemorySessionStore keeps tokens in-process. Used by tests.
type MemorySessionStore struct {
	mu   sync.RWMutex
	sess map[string]string // token -> username
}

// NewMemorySessionStore initializes an empty session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sess: make(map[string]string)}
}

// NewSession creates a session token for the username.
func (m *MemorySessionStore) NewSession(username string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := util.NewID()
	m.sess[token] = username
	return token, nil
}

// GetUsernameByToken resolves a token to a username.
func (m *MemorySessionStore) GetUsernameByToken(token string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	username, ok := m.sess[token]
	return username, ok, nil
}

// DeleteSession removes a token.
func (m *MemorySessionStore) DeleteSession(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, token)
	return nil
}
