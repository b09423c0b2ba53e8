package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/platform/obs"
	"roadbook-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	routePrefix   = "roadbook:route:"
	geocodePrefix = "roadbook:geocode:"
)

// RedisCache stores routes and geocoding results as JSON values with a TTL.
// It implements both ports.RouteCache and ports.GeocodeCache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps an existing client. A zero ttl keeps entries forever.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// OpenRedis parses a redis:// URL and checks the connection.
func OpenRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return rdb, nil
}

func (r *RedisCache) GetRoute(ctx context.Context, key ports.RouteKey) (_ domain.TravelLeg, _ bool, err error) {
	defer obs.Time(ctx, "route.redis.Get")(&err)

	b, err := r.client.Get(ctx, routePrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.TravelLeg{}, false, nil
	}
	if err != nil {
		return domain.TravelLeg{}, false, fmt.Errorf("get route cache: %w", err)
	}

	leg, err := decodeLeg(b)
	if err != nil {
		return domain.TravelLeg{}, false, fmt.Errorf("get route cache key=%q: %w", key.String(), err)
	}
	return leg, true, nil
}

func (r *RedisCache) PutRoute(ctx context.Context, key ports.RouteKey, leg domain.TravelLeg) error {
	b, err := encodeLeg(leg)
	if err != nil {
		return fmt.Errorf("put route cache: %w", err)
	}
	if err := r.client.Set(ctx, routePrefix+key.String(), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("put route cache key=%q: %w", key.String(), err)
	}
	return nil
}

func (r *RedisCache) GetGeocode(ctx context.Context, query string) (_ []ports.GeocodeCandidate, _ bool, err error) {
	defer obs.Time(ctx, "geocode.redis.Get")(&err)

	query = NormalizeQuery(query)
	if query == "" {
		return nil, false, nil
	}

	b, err := r.client.Get(ctx, geocodePrefix+query).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get geocode cache: %w", err)
	}

	var out []ports.GeocodeCandidate
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false, fmt.Errorf("get geocode cache query=%q: decode: %w", query, err)
	}
	return out, true, nil
}

func (r *RedisCache) PutGeocode(ctx context.Context, query string, candidates []ports.GeocodeCandidate) error {
	query = NormalizeQuery(query)
	if query == "" {
		return errors.New("put geocode cache: empty query key")
	}
	if candidates == nil {
		candidates = []ports.GeocodeCandidate{}
	}

	b, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("put geocode cache: encode: %w", err)
	}
	if err := r.client.Set(ctx, geocodePrefix+query, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("put geocode cache query=%q: %w", query, err)
	}
	return nil
}

// Check pings the server; used by the health endpoint.
func (r *RedisCache) Check(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
