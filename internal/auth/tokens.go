package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Identity is what a session token proves about its bearer.
type Identity struct {
	UserID   uint
	Username string
}

// Token is an issued session credential.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// TTL returns the remaining lifetime of the token relative to now.
func (t Token) TTL(now time.Time) time.Duration {
	return t.ExpiresAt.Sub(now)
}

// TokenIssuer mints and verifies session tokens. Verify returns
// ErrTokenInvalid or ErrTokenExpired when the token cannot be trusted.
type TokenIssuer interface {
	Issue(ctx context.Context, identity Identity) (Token, error)
	Verify(ctx context.Context, token string) (Identity, error)
}

// Revoker is implemented by issuers whose tokens can be invalidated before
// they expire.
type Revoker interface {
	Revoke(ctx context.Context, token string) error
}
