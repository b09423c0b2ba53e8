package routing

import (
	"context"
	"roadbook-service/internal/domain"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance on a 6371 km sphere.
func HaversineKm(a, b domain.Point) float64 {
	// orb computes on its own earth radius; the formula is linear in it.
	return geo.DistanceHaversine(a.Orb(), b.Orb()) / orb.EarthRadius * earthRadiusKm
}

// HaversineEstimator estimates legs from straight-line distance and a
// per-mode average speed. It never fails and returns no geometry.
type HaversineEstimator struct{}

func (HaversineEstimator) Estimate(
	_ context.Context,
	from domain.Point,
	to domain.Point,
	mode domain.RoutingMode,
	_ string,
) domain.TravelLeg {
	d := HaversineKm(from, to)
	return domain.TravelLeg{
		DistanceKm:  d,
		DurationMin: d / mode.FallbackSpeedKmh() * 60.0,
	}
}
