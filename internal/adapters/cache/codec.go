package cache

import (
	"encoding/json"
	"fmt"
	"roadbook-service/internal/domain"
	"strings"

	"github.com/paulmach/orb"
)

// routeRecord is the stored form of a travel leg.
type routeRecord struct {
	DistanceKm  float64        `json:"distance_km"`
	DurationMin float64        `json:"duration_min"`
	Geometry    orb.LineString `json:"geometry,omitempty"`
}

func encodeLeg(leg domain.TravelLeg) ([]byte, error) {
	b, err := json.Marshal(routeRecord{
		DistanceKm:  leg.DistanceKm,
		DurationMin: leg.DurationMin,
		Geometry:    leg.Geometry,
	})
	if err != nil {
		return nil, fmt.Errorf("encode route: %w", err)
	}
	return b, nil
}

func decodeLeg(b []byte) (domain.TravelLeg, error) {
	var rec routeRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return domain.TravelLeg{}, fmt.Errorf("decode route: %w", err)
	}
	return domain.TravelLeg{
		DistanceKm:  rec.DistanceKm,
		DurationMin: rec.DurationMin,
		Geometry:    rec.Geometry,
	}, nil
}

// NormalizeQuery folds a geocoding query into its cache key.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.Join(strings.Fields(q), " "))
}
