package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"roadbook-service/internal/platform/obs"
	"roadbook-service/internal/ports"
)

// SQLGeocodeCache is a Postgres-backed cache mapping search queries to
// candidate places.
type SQLGeocodeCache struct {
	DB *sql.DB
}

func NewSQLGeocodeCache(db *sql.DB) *SQLGeocodeCache {
	return &SQLGeocodeCache{DB: db}
}

func (s *SQLGeocodeCache) GetGeocode(ctx context.Context, query string) (_ []ports.GeocodeCandidate, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("geocode cache: db is nil")
	}

	query = NormalizeQuery(query)
	if query == "" {
		return nil, false, nil
	}

	var payload []byte
	err = s.DB.QueryRowContext(ctx, `SELECT candidates FROM geocode_cache WHERE query = $1;`, query).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	var out []ports.GeocodeCandidate
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, false, fmt.Errorf("get geocode cache query=%q: decode: %w", query, err)
	}

	return out, true, nil
}

func (s *SQLGeocodeCache) PutGeocode(ctx context.Context, query string, candidates []ports.GeocodeCandidate) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	query = NormalizeQuery(query)
	if query == "" {
		return errors.New("insert geocode cache: empty query key")
	}
	if candidates == nil {
		candidates = []ports.GeocodeCandidate{}
	}

	payload, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("insert geocode cache: encode: %w", err)
	}

	q := `
	INSERT INTO geocode_cache (query, candidates)
    VALUES ($1, $2)
	ON CONFLICT (query) DO UPDATE
	SET candidates = EXCLUDED.candidates;
	`

	if _, err := s.DB.ExecContext(ctx, q, query, payload); err != nil {
		return fmt.Errorf("insert geocode cache query=%q: %w", query, err)
	}

	return nil
}
