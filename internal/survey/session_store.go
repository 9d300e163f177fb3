package survey

import (
	"context"
	"sync"
)

// SessionStore owns the latest session snapshot per link token. The engine is
// the single writer for a token during a turn; stores only need to serve
// whole-snapshot reads and writes.
type SessionStore interface {
	// Get returns the stored snapshot, or ErrSessionNotFound.
	Get(ctx context.Context, token string) (*Session, error)
	// Put replaces the stored snapshot for the token.
	Put(ctx context.Context, token string, s *Session) error
}

// MemorySessionStore keeps sessions in process memory. Used in tests and
// single-instance development setups.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

func (m *MemorySessionStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	// Copies guard the stored snapshot against caller mutation.
	return s.Clone(), nil
}

func (m *MemorySessionStore) Put(_ context.Context, token string, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = s.Clone()
	return nil
}
