package cache

import (
	"attendance-service/internal/domain"
	"attendance-service/internal/platform/obs"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SQLFixCache is a PostgreSQL-backed fix cache for deployments without Redis.
// Rows live in the fix_cache table created by repositories.InitSchema.
type SQLFixCache struct {
	DB *sql.DB
}

func NewSQLFixCache(db *sql.DB) *SQLFixCache {
	return &SQLFixCache{DB: db}
}

// Fetch the unexpired fix for key. ok is false on a miss.
func (s *SQLFixCache) Get(ctx context.Context, key string) (_ domain.Fix, ok bool, err error) {
	defer obs.Time(ctx, "fix.sqlcache.Get")(&err)

	if s.DB == nil {
		return domain.Fix{}, false, errors.New("fix cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return domain.Fix{}, false, nil
	}

	q := `
	SELECT lat, lon, accuracy, captured_at
	FROM fix_cache
	WHERE cache_key = $1 AND expires_at > now();
	`

	var (
		fix      domain.Fix
		captured sql.NullTime
	)
	err = s.DB.QueryRowContext(ctx, q, key).Scan(
		&fix.Coordinates.Lat, &fix.Coordinates.Lon, &fix.AccuracyMeters, &captured,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Fix{}, false, nil
	}
	if err != nil {
		return domain.Fix{}, false, fmt.Errorf("get fix cache: query fix_cache table: %w", err)
	}
	if captured.Valid {
		fix.CapturedAt = captured.Time
	}

	return fix, true, nil
}

// Store fix under key for ttl, dropping rows that have already expired.
func (s *SQLFixCache) Put(ctx context.Context, key string, fix domain.Fix, ttl time.Duration) (err error) {
	defer obs.Time(ctx, "fix.sqlcache.Put")(&err)

	if s.DB == nil {
		return errors.New("fix cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("put fix cache: empty key")
	}
	if ttl <= 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("put fix cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM fix_cache WHERE expires_at <= now();`); err != nil {
		return fmt.Errorf("put fix cache: purge expired: %w", err)
	}

	captured := sql.NullTime{Time: fix.CapturedAt, Valid: !fix.CapturedAt.IsZero()}
	_, err = tx.ExecContext(ctx, `
	INSERT INTO fix_cache (cache_key, lat, lon, accuracy, captured_at, expires_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (cache_key) DO UPDATE
	SET lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		accuracy = EXCLUDED.accuracy,
		captured_at = EXCLUDED.captured_at,
		expires_at = EXCLUDED.expires_at;
	`, key, fix.Coordinates.Lat, fix.Coordinates.Lon, fix.AccuracyMeters, captured, time.Now().Add(ttl))
	if err != nil {
		return fmt.Errorf("put fix cache key=%q: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("put fix cache commit: %w", err)
	}

	return nil
}
