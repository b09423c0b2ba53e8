package services

import (
	"math"
	"roadbook-service/internal/domain"
)

// Segment returns the number of driving blocks a leg of totalMin minutes is
// split into so that no block exceeds maxBlockMin. Legs that fit in one
// block, and non-positive limits, yield 1.
func Segment(totalMin, maxBlockMin float64) int {
	if maxBlockMin <= 0 || totalMin <= maxBlockMin {
		return 1
	}
	return int(math.Ceil(totalMin / maxBlockMin))
}

// SplitLeg divides a leg into n equal sub-legs. Geometry stays with the
// parent leg.
func SplitLeg(leg domain.TravelLeg, n int) []domain.TravelLeg {
	if n < 1 {
		n = 1
	}
	part := domain.TravelLeg{
		DistanceKm:  leg.DistanceKm / float64(n),
		DurationMin: leg.DurationMin / float64(n),
	}
	out := make([]domain.TravelLeg, n)
	for i := range out {
		out[i] = part
	}
	return out
}
