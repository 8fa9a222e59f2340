package session

import (
	"attendance-service/internal/platform/obs"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevoker keeps logged-out token IDs until the token would have
// expired anyway.
type RedisRevoker struct {
	Client *redis.Client
	Prefix string
	now    func() time.Time
}

func NewRedisRevoker(client *redis.Client) *RedisRevoker {
	return &RedisRevoker{Client: client, Prefix: "revoked:", now: time.Now}
}

func (r *RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) (err error) {
	defer obs.Time(ctx, "session.Revoke")(&err)

	if r.Client == nil {
		return errors.New("redis revoker: client is nil")
	}
	if tokenID == "" {
		return errors.New("revoke token: empty token id")
	}

	ttl := until.Sub(r.now())
	if until.IsZero() {
		// No expiry claim; keep it for a day.
		ttl = 24 * time.Hour
	}
	if ttl <= 0 {
		return nil
	}

	if err := r.Client.Set(ctx, r.Prefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if r.Client == nil {
		return false, errors.New("redis revoker: client is nil")
	}

	n, err := r.Client.Exists(ctx, r.Prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
