package ports

import (
	"context"
	"roadbook-service/internal/domain"
)

// Contract for a precise routing provider. Any failure is returned to the
// caller, which decides how to degrade.
type Router interface {
	// Return distance, duration and geometry of the route between two points.
	Route(ctx context.Context, from, to domain.Point, mode domain.RoutingMode, profile string) (domain.TravelLeg, error)
}

// Contract for estimating a leg. Implementations never fail: they always
// return a usable distance and duration.
type Estimator interface {
	Estimate(ctx context.Context, from, to domain.Point, mode domain.RoutingMode, profile string) domain.TravelLeg
}
