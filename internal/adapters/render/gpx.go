package render

import (
	"encoding/xml"
	"fmt"
	"io"
	"roadbook-service/internal/domain"
)

type gpxDoc struct {
	XMLName   xml.Name      `xml:"gpx"`
	Version   string        `xml:"version,attr"`
	Creator   string        `xml:"creator,attr"`
	Xmlns     string        `xml:"xmlns,attr"`
	Waypoints []gpxWaypoint `xml:"wpt"`
}

type gpxWaypoint struct {
	Lat  float64 `xml:"lat,attr"`
	Lon  float64 `xml:"lon,attr"`
	Name string  `xml:"name"`
}

// WriteGPX writes a waypoint-only GPX 1.1 document.
func WriteGPX(w io.Writer, points []domain.Point) error {
	doc := gpxDoc{
		Version:   "1.1",
		Creator:   "Roadbook",
		Xmlns:     "http://www.topografix.com/GPX/1/1",
		Waypoints: make([]gpxWaypoint, 0, len(points)),
	}
	for _, p := range points {
		doc.Waypoints = append(doc.Waypoints, gpxWaypoint{Lat: p.Lat, Lon: p.Lon, Name: p.Name})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write gpx: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write gpx: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write gpx: %w", err)
	}
	return nil
}
