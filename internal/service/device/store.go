package device

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"sync"

	"storefront/internal/domain"
	sessionrepo "storefront/internal/repository/session"
)

// memoryStore keeps sessions in process. Used when no database store is wired.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionrepo.Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: make(map[string]sessionrepo.Session)}
}

func (m *memoryStore) Create(_ context.Context, s sessionrepo.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.Token]; ok {
		return domain.ErrAlreadyExists
	}
	m.sessions[s.Token] = s
	return nil
}

func (m *memoryStore) Get(_ context.Context, token string) (*sessionrepo.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[token]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *memoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[token]; !ok {
		return domain.ErrNotFound
	}
	delete(m.sessions, token)
	return nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
