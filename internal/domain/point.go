package domain

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// Immutable named geographic waypoint.
type Point struct {
	Name string
	Lat  float64
	Lon  float64
}

// PointKey identifies a point for de-duplication: coordinates rounded to
// five decimals plus the name.
type PointKey struct {
	Lat  float64
	Lon  float64
	Name string
}

func NewPoint(name string, lat, lon float64) Point {
	return Point{Name: strings.TrimSpace(name), Lat: lat, Lon: lon}
}

func (p Point) Key() PointKey {
	return PointKey{Lat: round5(p.Lat), Lon: round5(p.Lon), Name: p.Name}
}

// Return coordinates as [lon, lat] for external API compatibility.
func (p Point) CoordsToList() []float64 { return []float64{p.Lon, p.Lat} }

func (p Point) Orb() orb.Point { return orb.Point{p.Lon, p.Lat} }

// Validate checks that the coordinates are finite and within WGS84 bounds.
func (p Point) Validate(field string) error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < -90 || p.Lat > 90 {
		return Invalid(field+"_lat", "latitude must be between -90 and 90")
	}
	if math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) || p.Lon < -180 || p.Lon > 180 {
		return Invalid(field+"_lon", "longitude must be between -180 and 180")
	}
	return nil
}

// DedupePoints collapses points sharing a PointKey. Each key keeps the
// position of its first occurrence and the value of its last.
func DedupePoints(points []Point) []Point {
	index := make(map[PointKey]int, len(points))
	out := make([]Point, 0, len(points))
	for _, p := range points {
		k := p.Key()
		if i, ok := index[k]; ok {
			out[i] = p
			continue
		}
		index[k] = len(out)
		out = append(out, p)
	}
	return out
}

func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
