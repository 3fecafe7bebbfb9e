// internal/common/auth/credentials.go
package auth

import "sync"

// TokenProvider supplies the bearer credential attached to collaborator
// requests. It is set on login, cleared on logout, and cleared again by the
// transport whenever the collaborator answers 401, so a stale token never
// outlives its usefulness.
type TokenProvider interface {
	Token() (string, bool)
	SetToken(token string)
	Clear()
}

// MemoryTokenStore is the default in-process TokenProvider.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}
