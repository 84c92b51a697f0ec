// Package session issues and verifies the signed session tokens handed to
// browsers as a cookie and to API clients as a bearer token.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todo-collab/pkg/cache"
	"todo-collab/pkg/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CookieName is the cookie carrying the session token.
const CookieName = "session_token"

var (
	ErrInvalid = errors.New("session: invalid token")
	ErrRevoked = errors.New("session: token revoked")
)

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs tokens with HS256 and remembers revoked token ids in the
// cache until they would have expired anyway.
type Manager struct {
	secret []byte
	ttl    time.Duration
	cache  cache.Cache
}

func NewManager(secret string, ttl time.Duration, c cache.Cache) *Manager {
	if c == nil {
		c = cache.Nop{}
	}
	return &Manager{secret: []byte(secret), ttl: ttl, cache: c}
}

// Issue signs a new token for the user and returns it with its expiry.
func (m *Manager) Issue(userID, email string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse verifies the signature, expiry and revocation state of token.
func (m *Manager) Parse(ctx context.Context, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalid
	}
	if claims.UserID == "" || claims.ID == "" {
		return nil, ErrInvalid
	}

	_, err = m.cache.Get(ctx, revokedKey(claims.ID))
	switch {
	case err == nil:
		return nil, ErrRevoked
	case !errors.Is(err, cache.ErrMiss):
		// cache outage: the signature and expiry still hold
		logger.SecurityLogger.Warn("Revocation check failed", zap.String("jti", claims.ID), zap.Error(err))
	}
	return claims, nil
}

// Revoke blocks claims until its expiry.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := m.cache.Set(ctx, revokedKey(claims.ID), []byte("1"), ttl); err != nil {
		return fmt.Errorf("revoking session %s: %w", claims.ID, err)
	}
	return nil
}

func revokedKey(jti string) string {
	return "session:revoked:" + jti
}
