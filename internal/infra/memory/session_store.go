package memory

import (
	"context"
	"sync"
	"time"

	"study-client/internal/domain"
	"study-client/internal/infra"
)

// SessionStore is an in-memory implementation of gateway.SessionProvider
// holding the access token of the signed-in user.
type SessionStore struct {
	mu    sync.RWMutex
	token string
	clock func() time.Time
}

func NewSessionStore(token string) *SessionStore {
	return &SessionStore{token: token, clock: time.Now}
}

// SetToken replaces the stored access token (sign-in or refresh).
func (s *SessionStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear forgets the access token (sign-out).
func (s *SessionStore) Clear() {
	s.SetToken("")
}

func (s *SessionStore) AccessToken(_ context.Context) (string, error) {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return "", domain.ErrSessionNotFound
	}
	if err := infra.CheckExpiry(token, s.clock()); err != nil {
		return "", err
	}
	return token, nil
}
