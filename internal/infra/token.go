package infra

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"study-client/internal/domain"
)

// CheckExpiry rejects JWT access tokens whose exp claim is in the past.
// Signatures are not verified; that is the server's job. Tokens that are not
// JWTs are treated as opaque and accepted.
func CheckExpiry(token string, now time.Time) error {
	exp, ok := Expiry(token)
	if ok && !now.Before(exp) {
		return domain.ErrSessionExpired
	}
	return nil
}

// Expiry returns the exp claim of a JWT, if it has one.
func Expiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
