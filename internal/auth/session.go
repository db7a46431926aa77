// Package auth keeps the backend's bearer token server-side. The browser
// only holds an opaque session id cookie; Guard resolves it on every request
// and puts the token into the context for internal/api.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNoSession    = errors.New("auth: no session")
	ErrTokenExpired = errors.New("auth: token already expired")
)

type Session struct {
	ID        string
	Token     string
	Name      string
	Email     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions. Get returns ErrNoSession for unknown or expired ids.
type Store interface {
	Create(ctx context.Context, token string) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}

// newSession builds a session for token. Its lifetime is ttl, cut short by
// the token's own expiry when that comes first.
func newSession(token string, ttl time.Duration, now time.Time) (Session, error) {
	s := Session{
		ID:        uuid.NewString(),
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	claims, err := ParseClaims(token)
	if err != nil {
		// Opaque tokens are accepted; the backend still rejects bad ones.
		return s, nil
	}
	s.Name = claims.Name
	s.Email = claims.Email
	if !claims.ExpiresAt.IsZero() {
		if !now.Before(claims.ExpiresAt) {
			return Session{}, ErrTokenExpired
		}
		if claims.ExpiresAt.Before(s.ExpiresAt) {
			s.ExpiresAt = claims.ExpiresAt
		}
	}
	return s, nil
}

// validID rejects cookie values that could not have been issued by us.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
