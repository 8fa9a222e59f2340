package ports

import (
	"attendance-service/internal/domain"
	"context"
	"errors"
	"time"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// The single "is this caller authenticated" capability. Tokens are issued by
// an external identity provider; this side only checks them.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*domain.Session, error)
}

// Optional server-side logout: remembers revoked token IDs until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
