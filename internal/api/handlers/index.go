package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
	"roadbook-service/internal/services"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Roadbook</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
<h1>Roadbook</h1>
<form method="post" action="/generate">
<fieldset>
<legend>Start</legend>
<input name="start_city" value="{{.StartCity}}" placeholder="City" required>
<input name="start_lat" value="{{.StartLat}}" placeholder="Latitude" required>
<input name="start_lon" value="{{.StartLon}}" placeholder="Longitude" required>
</fieldset>
<fieldset>
<legend>End</legend>
<input name="end_city" value="{{.EndCity}}" placeholder="City" required>
<input name="end_lat" value="{{.EndLat}}" placeholder="Latitude" required>
<input name="end_lon" value="{{.EndLon}}" placeholder="Longitude" required>
</fieldset>
<fieldset>
<legend>Stop</legend>
<input name="stop_name" placeholder="Name">
<input name="stop_lat" placeholder="Latitude">
<input name="stop_lon" placeholder="Longitude">
</fieldset>
<fieldset>
<legend>Trip</legend>
<input type="date" name="start_date" required>
<input type="date" name="end_date" required>
<select name="vehicle">
<option value="voiture">voiture</option>
<option value="moto">moto</option>
</select>
<select name="routing_mode">
<option value="rapide">rapide</option>
<option value="decouverte">decouverte</option>
<option value="sinueux">sinueux</option>
</select>
<input type="time" name="day_start" value="{{.DayStart}}">
<input type="time" name="day_end" value="{{.DayEnd}}">
<input type="number" name="max_drive" value="{{.MaxDrive}}" min="{{.MinDrive}}" max="{{.MaxDriveLimit}}">
</fieldset>
<button type="submit">Generate</button>
</form>
</body>
</html>
`))

type indexView struct {
	StartCity, StartLat, StartLon string
	EndCity, EndLat, EndLon       string
	DayStart, DayEnd              string
	MaxDrive                      int
	MinDrive, MaxDriveLimit       int
}

// Index renders the trip form, prefilled from the query string so that the
// invert redirect lands on a swapped trip.
func Index(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		view := indexView{
			StartCity:     q.Get("start_city"),
			StartLat:      q.Get("start_lat"),
			StartLon:      q.Get("start_lon"),
			EndCity:       q.Get("end_city"),
			EndLat:        q.Get("end_lat"),
			EndLon:        q.Get("end_lon"),
			DayStart:      services.DefaultDayStart,
			DayEnd:        services.DefaultDayEnd,
			MaxDrive:      services.DefaultMaxDriveMin,
			MinDrive:      services.MinMaxDriveMin,
			MaxDriveLimit: services.MaxMaxDriveMin,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTemplate.Execute(w, view); err != nil {
			logger.WarnContext(r.Context(), "render index failed", "err", err)
		}
	}
}
