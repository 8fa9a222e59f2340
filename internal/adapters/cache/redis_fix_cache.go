package cache

import (
	"attendance-service/internal/domain"
	"attendance-service/internal/platform/obs"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisFixCache caches server-side position lookups keyed by the scanned
// access point set.
type RedisFixCache struct {
	Client *redis.Client
	Prefix string
}

func NewRedisFixCache(client *redis.Client) *RedisFixCache {
	return &RedisFixCache{Client: client, Prefix: "fix:"}
}

type cachedFix struct {
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	Accuracy   float64   `json:"accuracy"`
	CapturedAt time.Time `json:"captured_at"`
}

// Fetch the cached fix for key. ok is false on a miss.
func (c *RedisFixCache) Get(ctx context.Context, key string) (_ domain.Fix, ok bool, err error) {
	defer obs.Time(ctx, "fix.cache.Get")(&err)

	if c.Client == nil {
		return domain.Fix{}, false, errors.New("fix cache: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return domain.Fix{}, false, nil
	}

	b, err := c.Client.Get(ctx, c.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Fix{}, false, nil
	}
	if err != nil {
		return domain.Fix{}, false, fmt.Errorf("get fix cache: %w", err)
	}

	var cf cachedFix
	if err := json.Unmarshal(b, &cf); err != nil {
		return domain.Fix{}, false, fmt.Errorf("get fix cache: decode %q: %w", key, err)
	}

	return domain.Fix{
		Coordinates:    domain.Coordinates{Lat: cf.Lat, Lon: cf.Lon},
		AccuracyMeters: cf.Accuracy,
		CapturedAt:     cf.CapturedAt,
	}, true, nil
}

// Store fix under key for ttl.
func (c *RedisFixCache) Put(ctx context.Context, key string, fix domain.Fix, ttl time.Duration) (err error) {
	defer obs.Time(ctx, "fix.cache.Put")(&err)

	if c.Client == nil {
		return errors.New("fix cache: client is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("put fix cache: empty key")
	}

	b, err := json.Marshal(cachedFix{
		Lat:        fix.Coordinates.Lat,
		Lon:        fix.Coordinates.Lon,
		Accuracy:   fix.AccuracyMeters,
		CapturedAt: fix.CapturedAt,
	})
	if err != nil {
		return fmt.Errorf("put fix cache: encode: %w", err)
	}

	if err := c.Client.Set(ctx, c.Prefix+key, b, ttl).Err(); err != nil {
		return fmt.Errorf("put fix cache %q: %w", key, err)
	}
	return nil
}
