package services

import (
	"fmt"
	"roadbook-service/internal/domain"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDayStart    = "08:30"
	DefaultDayEnd      = "19:00"
	DefaultMaxDriveMin = 120
	MinMaxDriveMin     = 15
	MaxMaxDriveMin     = 480
	dateLayout         = "2006-01-02"
	cityWalkMinutes    = 90
)

// StopInput is an optional intermediate stop as typed into the form.
// Coordinates stay strings so that bad entries can be dropped instead of
// failing the request.
type StopInput struct {
	Name string
	Lat  string
	Lon  string
}

// RoadbookRequest is a trip between two cities with optional stops.
type RoadbookRequest struct {
	StartCity   string
	StartLat    string
	StartLon    string
	EndCity     string
	EndLat      string
	EndLon      string
	StartDate   string
	EndDate     string
	Vehicle     string
	RoutingMode string
	DayStart    string
	DayEnd      string
	MaxDriveMin int
	Stops       []StopInput
}

// BuildRoadbook expands a request into the two-day plan: a driving day from
// start to end through the optional stops, then a walking day at the
// destination. It reports how many optional stops were dropped.
func BuildRoadbook(req RoadbookRequest) (RoadbookConfig, int, error) {
	start, err := parsePoint("start", req.StartCity, req.StartLat, req.StartLon)
	if err != nil {
		return RoadbookConfig{}, 0, err
	}
	end, err := parsePoint("end", req.EndCity, req.EndLat, req.EndLon)
	if err != nil {
		return RoadbookConfig{}, 0, err
	}

	d1, d2, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		return RoadbookConfig{}, 0, err
	}

	vehicle, err := domain.ParseVehicle(req.Vehicle)
	if err != nil {
		return RoadbookConfig{}, 0, err
	}
	mode, err := domain.ParseRoutingMode(req.RoutingMode)
	if err != nil {
		return RoadbookConfig{}, 0, err
	}

	maxDrive := req.MaxDriveMin
	if maxDrive == 0 {
		maxDrive = DefaultMaxDriveMin
	}
	if maxDrive < MinMaxDriveMin || maxDrive > MaxMaxDriveMin {
		return RoadbookConfig{}, 0, domain.Invalid("max_drive", "must be between %d and %d minutes, got %d", MinMaxDriveMin, MaxMaxDriveMin, maxDrive)
	}

	waypoints := []domain.Point{start}
	dropped := 0
	for _, s := range req.Stops {
		p, ok := parseStop(s)
		if !ok {
			dropped++
			continue
		}
		waypoints = append(waypoints, p)
	}
	waypoints = append(waypoints, end)

	label := start.Name + " → " + end.Name
	if len(waypoints) > 2 {
		label += " (with custom stops)"
	}

	cfg := RoadbookConfig{
		Title:           fmt.Sprintf("Roadbook %s → %s (%s → %s)", start.Name, end.Name, d1, d2),
		Subtitle:        fmt.Sprintf("Trip by %s – mode %s", vehicle, mode),
		DayStart:        orDefault(req.DayStart, DefaultDayStart),
		DayEnd:          orDefault(req.DayEnd, DefaultDayEnd),
		MaxDriveMinutes: maxDrive,
		Mode:            mode,
		Profile:         domain.DefaultProfile,
		Base:            end,
		Days: []domain.DaySpec{
			{
				Label:     label,
				Intro:     fmt.Sprintf("Route tuned to your vehicle and routing mode. Driving blocks of at most %d min, with breaks where needed.", maxDrive),
				Waypoints: waypoints,
				LunchHint: "Stop at a good service area or a nearby village.",
			},
			{
				Label:     end.Name + " – Historic centre",
				Intro:     "A cultural day on foot through the main heritage sites.",
				Waypoints: []domain.Point{end, end},
				Walks: []domain.Walk{
					{Near: end.Name, DurationMin: cityWalkMinutes, Route: "Loop of the major monuments, step by step."},
				},
				LunchHint: "Brasserie in the town centre.",
			},
		},
	}

	if _, err := cfg.Settings(); err != nil {
		return RoadbookConfig{}, 0, err
	}

	return cfg, dropped, nil
}

func parsePoint(field, name, lat, lon string) (domain.Point, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Point{}, domain.Invalid(field+"_city", "must not be empty")
	}

	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return domain.Point{}, domain.Invalid(field+"_lat", "%q is not a number", lat)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return domain.Point{}, domain.Invalid(field+"_lon", "%q is not a number", lon)
	}

	p := domain.NewPoint(name, la, lo)
	if err := p.Validate(field); err != nil {
		return domain.Point{}, err
	}
	return p, nil
}

// parseStop accepts a stop only when every field is present and valid.
func parseStop(s StopInput) (domain.Point, bool) {
	if strings.TrimSpace(s.Name) == "" || strings.TrimSpace(s.Lat) == "" || strings.TrimSpace(s.Lon) == "" {
		return domain.Point{}, false
	}
	p, err := parsePoint("stop", s.Name, s.Lat, s.Lon)
	if err != nil {
		return domain.Point{}, false
	}
	return p, true
}

func parseDates(start, end string) (string, string, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)

	d1, err := time.Parse(dateLayout, start)
	if err != nil {
		return "", "", domain.Invalid("start_date", "%q is not a YYYY-MM-DD date", start)
	}
	d2, err := time.Parse(dateLayout, end)
	if err != nil {
		return "", "", domain.Invalid("end_date", "%q is not a YYYY-MM-DD date", end)
	}
	if d2.Before(d1) {
		return "", "", domain.Invalid("end_date", "%s is before start_date %s", end, start)
	}

	return start, end, nil
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
