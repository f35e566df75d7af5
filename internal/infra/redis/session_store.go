package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"study-client/internal/domain"
	"study-client/internal/infra"
)

// SessionStore keeps a user's access token in Redis so several client
// processes on one machine share a sign-in.
type SessionStore struct {
	client *redis.Client
	userID string
	ttl    time.Duration
	clock  func() time.Time
}

func NewSessionStore(client *redis.Client, userID string, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client: client,
		userID: userID,
		ttl:    ttl,
		clock:  time.Now,
	}
}

// Save stores token. JWTs expire with their exp claim, other tokens with the store TTL.
func (s *SessionStore) Save(ctx context.Context, token string) error {
	ttl := s.ttl
	if exp, ok := infra.Expiry(token); ok {
		ttl = exp.Sub(s.clock())
		if ttl <= 0 {
			return domain.ErrSessionExpired
		}
	}
	return s.client.Set(ctx, s.key(), token, ttl).Err()
}

// Delete removes the stored token (sign-out).
func (s *SessionStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key()).Err()
}

func (s *SessionStore) AccessToken(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key()).Result()
	if err == redis.Nil {
		return "", domain.ErrSessionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read session: %w", err)
	}
	if err := infra.CheckExpiry(token, s.clock()); err != nil {
		return "", err
	}
	return token, nil
}

func (s *SessionStore) key() string {
	return "study:session:" + s.userID
}
