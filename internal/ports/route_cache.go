package ports

import (
	"context"
	"fmt"
	"roadbook-service/internal/domain"
)

// Identifies a cached route: both endpoints plus the routing options.
type RouteKey struct {
	From    domain.PointKey
	To      domain.PointKey
	Mode    domain.RoutingMode
	Profile string
}

func NewRouteKey(from, to domain.Point, mode domain.RoutingMode, profile string) RouteKey {
	return RouteKey{From: from.Key(), To: to.Key(), Mode: mode, Profile: profile}
}

// String is the storage key. Names are left out: the route only depends on
// coordinates.
func (k RouteKey) String() string {
	return fmt.Sprintf("%s|%s|%.5f,%.5f|%.5f,%.5f", k.Profile, k.Mode, k.From.Lat, k.From.Lon, k.To.Lat, k.To.Lon)
}

// Port: persistent cache of remote routing results.
type RouteCache interface {
	// Return the cached leg and whether it was found.
	GetRoute(ctx context.Context, key RouteKey) (domain.TravelLeg, bool, error)
	PutRoute(ctx context.Context, key RouteKey, leg domain.TravelLeg) error
}
