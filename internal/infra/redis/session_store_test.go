package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"study-client/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, "u1", time.Minute)
	ctx := context.Background()

	if _, err := store.AccessToken(ctx); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected no session, got %v", err)
	}

	if err := store.Save(ctx, "opaque-token"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("study:session:u1") {
		t.Fatalf("expected redis key to be set")
	}
	token, err := store.AccessToken(ctx)
	if err != nil || token != "opaque-token" {
		t.Fatalf("expected stored token, got %q (%v)", token, err)
	}

	if err := store.Delete(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("study:session:u1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestSessionStoreHonoursJWTExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewSessionStore(client, "u1", time.Hour)
	now := time.Now()
	ctx := context.Background()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(10 * time.Minute)),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if err := store.Save(ctx, signed); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := mr.TTL("study:session:u1"); ttl <= 0 || ttl > 10*time.Minute {
		t.Fatalf("expected ttl bounded by exp claim, got %v", ttl)
	}

	store.clock = func() time.Time { return now.Add(11 * time.Minute) }
	if _, err := store.AccessToken(ctx); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected expired session, got %v", err)
	}
}
