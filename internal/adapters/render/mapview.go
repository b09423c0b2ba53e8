package render

import (
	"fmt"
	"html/template"
	"io"
	"roadbook-service/internal/domain"

	"github.com/paulmach/orb/geojson"
)

const defaultZoom = 6

var mapTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.Lat}}, {{.Lon}}], {{.Zoom}});
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  maxZoom: 19,
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var markers = L.geoJSON({{.Markers}}, {
  onEachFeature: function (f, layer) { layer.bindTooltip(f.properties.name); }
});
var routes = L.geoJSON({{.Routes}}, { style: { color: '#1f6feb', weight: 4 } });
markers.addTo(map);
routes.addTo(map);
L.control.layers(null, { 'Stops': markers, 'Routes': routes }).addTo(map);
</script>
</body>
</html>
`))

type mapView struct {
	Title   string
	Lat     float64
	Lon     float64
	Zoom    int
	Markers template.JS
	Routes  template.JS
}

// WriteMap writes a standalone Leaflet page centered on the itinerary base,
// with one marker per visited waypoint and the routed geometries.
func WriteMap(w io.Writer, it *domain.Itinerary) error {
	markers, err := markerCollection(it.Markers).MarshalJSON()
	if err != nil {
		return fmt.Errorf("write map: encode markers: %w", err)
	}
	routes, err := routeCollection(it).MarshalJSON()
	if err != nil {
		return fmt.Errorf("write map: encode routes: %w", err)
	}

	view := mapView{
		Title:   it.Title,
		Lat:     it.Base.Lat,
		Lon:     it.Base.Lon,
		Zoom:    defaultZoom,
		Markers: template.JS(markers),
		Routes:  template.JS(routes),
	}
	if err := mapTemplate.Execute(w, view); err != nil {
		return fmt.Errorf("write map: %w", err)
	}
	return nil
}

func markerCollection(points []domain.Point) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		f := geojson.NewFeature(p.Orb())
		f.Properties["name"] = p.Name
		fc.Append(f)
	}
	return fc
}

func routeCollection(it *domain.Itinerary) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i, day := range it.Days {
		for _, track := range day.Tracks {
			f := geojson.NewFeature(track)
			f.Properties["day"] = i + 1
			fc.Append(f)
		}
	}
	return fc
}
