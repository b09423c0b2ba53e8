package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/platform/obs"
	"roadbook-service/internal/ports"
	"time"
)

// SQLRouteCache is a Postgres-backed cache of remote routing results.
type SQLRouteCache struct {
	DB     *sql.DB
	MaxAge time.Duration

	now func() time.Time
}

// NewSQLRouteCache returns a cache whose entries expire after maxAge.
// A zero maxAge keeps entries forever.
func NewSQLRouteCache(db *sql.DB, maxAge time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: db, MaxAge: maxAge, now: time.Now}
}

func (s *SQLRouteCache) GetRoute(ctx context.Context, key ports.RouteKey) (_ domain.TravelLeg, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return domain.TravelLeg{}, false, errors.New("route cache: db is nil")
	}

	q := `
	SELECT payload, updated_at
    FROM route_cache
    WHERE route_key = $1;
	`

	var payload []byte
	var updated time.Time
	err = s.DB.QueryRowContext(ctx, q, key.String()).Scan(&payload, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.TravelLeg{}, false, nil
	}
	if err != nil {
		return domain.TravelLeg{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	if s.MaxAge > 0 && s.now().Sub(updated) > s.MaxAge {
		return domain.TravelLeg{}, false, nil
	}

	leg, err := decodeLeg(payload)
	if err != nil {
		return domain.TravelLeg{}, false, fmt.Errorf("get route cache key=%q: %w", key.String(), err)
	}

	return leg, true, nil
}

func (s *SQLRouteCache) PutRoute(ctx context.Context, key ports.RouteKey, leg domain.TravelLeg) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	payload, err := encodeLeg(leg)
	if err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	q := `
	INSERT INTO route_cache (route_key, mode, profile, payload, updated_at)
    VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (route_key) DO UPDATE
	SET payload = EXCLUDED.payload,
		updated_at = EXCLUDED.updated_at;
	`

	if _, err := s.DB.ExecContext(ctx, q, key.String(), string(key.Mode), key.Profile, payload, s.now().UTC()); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key.String(), err)
	}

	return nil
}
