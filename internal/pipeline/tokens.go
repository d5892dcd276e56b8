package pipeline

import "sync"

// TokenSlot holds the latest encoded token. The last write wins; readers may
// find it empty at any time.
type TokenSlot struct {
	mu    sync.RWMutex
	token string
}

// Store overwrites the slot.
func (s *TokenSlot) Store(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Load returns the stored token and whether one is present.
func (s *TokenSlot) Load() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}
