package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory session store. Suitable for development
// and tests; sessions do not survive process restarts.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
	}
}

// Save stores a session by token
func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return ErrInvalidSession
	}
	cp := *sess
	s.mu.Lock()
	s.sessions[sess.Token] = &cp
	s.mu.Unlock()
	return nil
}

// Get retrieves a session by token
func (s *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.IsExpired() {
		return nil, ErrSessionExpired
	}
	cp := *sess
	return &cp, nil
}

// Delete removes a session by token
func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// DeleteExpired removes all expired sessions
func (s *MemoryStore) DeleteExpired(_ context.Context) error {
	now := time.Now()
	s.mu.Lock()
	for token, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()
	return nil
}
