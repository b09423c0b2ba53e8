package ports

import "context"

type GeocodeCandidate struct {
	Label string  `json:"label"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

// Contract for free-text place lookup.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]GeocodeCandidate, error)
}

// Port: cache of geocoding results keyed by normalized query.
type GeocodeCache interface {
	GetGeocode(ctx context.Context, query string) ([]GeocodeCandidate, bool, error)
	PutGeocode(ctx context.Context, query string, candidates []GeocodeCandidate) error
}
