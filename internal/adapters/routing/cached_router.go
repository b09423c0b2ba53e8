package routing

import (
	"context"
	"log/slog"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/ports"
)

// CachedRouter checks a persistent route cache before delegating to the
// next router. Cache errors are logged and treated as misses; only
// successful remote results are stored.
type CachedRouter struct {
	next     ports.Router
	cache    ports.RouteCache
	logger   *slog.Logger
	recorder Recorder
}

func NewCachedRouter(next ports.Router, cache ports.RouteCache, logger *slog.Logger, recorder Recorder) *CachedRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRouter{next: next, cache: cache, logger: logger, recorder: recorder}
}

func (c *CachedRouter) Route(
	ctx context.Context,
	from domain.Point,
	to domain.Point,
	mode domain.RoutingMode,
	profile string,
) (domain.TravelLeg, error) {
	if profile == "" {
		profile = domain.DefaultProfile
	}
	key := ports.NewRouteKey(from, to, mode, profile)

	leg, ok, err := c.cache.GetRoute(ctx, key)
	switch {
	case err != nil:
		c.logger.WarnContext(ctx, "route cache read failed", "key", key.String(), "err", err)
	case ok:
		c.record(true)
		return leg, nil
	}
	c.record(false)

	leg, err = c.next.Route(ctx, from, to, mode, profile)
	if err != nil {
		return domain.TravelLeg{}, err
	}

	if err := c.cache.PutRoute(ctx, key, leg); err != nil {
		c.logger.WarnContext(ctx, "route cache write failed", "key", key.String(), "err", err)
	}

	return leg, nil
}

func (c *CachedRouter) record(hit bool) {
	if c.recorder != nil {
		c.recorder.CacheLookup(hit)
	}
}
