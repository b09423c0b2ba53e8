package services

import (
	"context"
	"errors"
	"roadbook-service/internal/adapters/routing"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/ports"
	"strings"
	"testing"
	"time"
)

// slowEstimator delays legs leaving from one point so that later days
// finish first.
type slowEstimator struct {
	slowFrom string
	delay    time.Duration
}

func (s slowEstimator) Estimate(ctx context.Context, from, to domain.Point, mode domain.RoutingMode, profile string) domain.TravelLeg {
	if from.Name == s.slowFrom {
		time.Sleep(s.delay)
	}
	return routing.HaversineEstimator{}.Estimate(ctx, from, to, mode, profile)
}

func twoDayConfig() RoadbookConfig {
	return RoadbookConfig{
		Title:           "Roadbook Montpellier → Lyon",
		Subtitle:        "Trip by voiture – mode rapide",
		DayStart:        "08:30",
		DayEnd:          "19:00",
		MaxDriveMinutes: 120,
		Mode:            domain.ModeRapide,
		Base:            lyon,
		Days: []domain.DaySpec{
			{Label: "Montpellier → Lyon", Intro: "Drive day.", Waypoints: []domain.Point{montpellier, nimes, lyon}},
			{
				Label:     "Lyon – Historic centre",
				Intro:     "Walk day.",
				Waypoints: []domain.Point{lyon, lyon},
				Walks:     []domain.Walk{{Near: "Lyon", DurationMin: 90}},
			},
		},
	}
}

func TestAssemblerAssemble(t *testing.T) {
	a := NewAssembler(slowEstimator{slowFrom: "Montpellier", delay: 50 * time.Millisecond}, 2, nil)

	it, err := a.Assemble(context.Background(), twoDayConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(it.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(it.Days))
	}
	if it.Days[0].Title != "Day 1 – Montpellier → Lyon" || it.Days[1].Title != "Day 2 – Lyon – Historic centre" {
		t.Fatalf("days out of order: %q, %q", it.Days[0].Title, it.Days[1].Title)
	}

	for i, d := range it.Days {
		if d.Blocks[0].Type != domain.BlockTitle || d.Blocks[0].Text != d.Title {
			t.Fatalf("day %d: first block should be the title, got %+v", i+1, d.Blocks[0])
		}
		if d.Blocks[1].Type != domain.BlockIntro {
			t.Fatalf("day %d: second block should be the intro, got %+v", i+1, d.Blocks[1])
		}
		if first := d.Stops()[0]; first.Start.HHMM() != "08:30" {
			t.Fatalf("day %d should start at 08:30, got %s", i+1, first.Start)
		}
	}

	// Nîmes, Lyon on day 1 then Lyon again on day 2.
	if len(it.Markers) != 3 {
		t.Fatalf("expected 3 markers, got %d", len(it.Markers))
	}
	if len(it.VisitedPoints) != 2 || it.VisitedPoints[0].Name != "Nîmes" || it.VisitedPoints[1].Name != "Lyon" {
		t.Fatalf("unexpected visited points %+v", it.VisitedPoints)
	}
	if it.Base != lyon || it.Title != "Roadbook Montpellier → Lyon" {
		t.Fatalf("unexpected header %+v", it)
	}
}

func TestAssemblerRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RoadbookConfig)
		field  string
	}{
		{name: "one waypoint", mutate: func(c *RoadbookConfig) { c.Days[0].Waypoints = c.Days[0].Waypoints[:1] }, field: "days[0].waypoints"},
		{name: "no days", mutate: func(c *RoadbookConfig) { c.Days = nil }, field: "days"},
		{name: "bad day start", mutate: func(c *RoadbookConfig) { c.DayStart = "8h30" }, field: "day_start"},
		{name: "bad day end", mutate: func(c *RoadbookConfig) { c.DayEnd = "25:00" }, field: "day_end"},
		{name: "end before start", mutate: func(c *RoadbookConfig) { c.DayEnd = "07:00" }, field: "day_end"},
		{name: "zero max drive", mutate: func(c *RoadbookConfig) { c.MaxDriveMinutes = 0 }, field: "max_drive"},
		{name: "unknown mode", mutate: func(c *RoadbookConfig) { c.Mode = "express" }, field: "routing_mode"},
		{name: "bad latitude", mutate: func(c *RoadbookConfig) { c.Days[1].Waypoints[0].Lat = 91 }, field: "days[1].waypoints[0]_lat"},
	}

	a := NewAssembler(routing.HaversineEstimator{}, 0, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := twoDayConfig()
			tt.mutate(&cfg)

			_, err := a.Assemble(context.Background(), cfg)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input error, got %v", err)
			}
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("expected field %q, got %v", tt.field, err)
			}
		})
	}
}

func TestAssemblerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAssembler(routing.HaversineEstimator{}, 1, nil).Assemble(ctx, twoDayConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuildRoadbook(t *testing.T) {
	req := RoadbookRequest{
		StartCity: "Montpellier", StartLat: "43.6117", StartLon: "3.8777",
		EndCity: "Lyon", EndLat: "45.7640", EndLon: "4.8357",
		StartDate: "2025-06-01", EndDate: "2025-06-02",
		Vehicle: "moto", RoutingMode: "decouverte",
		Stops: []StopInput{
			{Name: "Nîmes", Lat: "43.8367", Lon: "4.3601"},
			{Name: "Orange", Lat: "not-a-number", Lon: "4.8"},
			{Name: "", Lat: "44.0", Lon: "4.8"},
			{Name: "Valence", Lat: "44.9334", Lon: ""},
		},
	}

	cfg, dropped, err := BuildRoadbook(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dropped != 3 {
		t.Fatalf("expected 3 dropped stops, got %d", dropped)
	}

	if cfg.Title != "Roadbook Montpellier → Lyon (2025-06-01 → 2025-06-02)" {
		t.Fatalf("unexpected title %q", cfg.Title)
	}
	if cfg.Subtitle != "Trip by moto – mode decouverte" {
		t.Fatalf("unexpected subtitle %q", cfg.Subtitle)
	}
	if cfg.DayStart != "08:30" || cfg.DayEnd != "19:00" || cfg.MaxDriveMinutes != 120 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Profile != domain.DefaultProfile || cfg.Base.Name != "Lyon" {
		t.Fatalf("unexpected profile/base: %q %+v", cfg.Profile, cfg.Base)
	}

	if len(cfg.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(cfg.Days))
	}
	d1 := cfg.Days[0]
	if d1.Label != "Montpellier → Lyon (with custom stops)" {
		t.Fatalf("unexpected day 1 label %q", d1.Label)
	}
	if len(d1.Waypoints) != 3 || d1.Waypoints[1].Name != "Nîmes" {
		t.Fatalf("unexpected day 1 waypoints %+v", d1.Waypoints)
	}

	d2 := cfg.Days[1]
	if len(d2.Waypoints) != 2 || d2.Waypoints[0] != d2.Waypoints[1] || len(d2.Walks) != 1 || d2.Walks[0].DurationMin != 90 {
		t.Fatalf("unexpected day 2 %+v", d2)
	}
}

func TestBuildRoadbookWithoutStops(t *testing.T) {
	cfg, dropped, err := BuildRoadbook(RoadbookRequest{
		StartCity: "Montpellier", StartLat: "43.6117", StartLon: "3.8777",
		EndCity: "Lyon", EndLat: "45.7640", EndLon: "4.8357",
		StartDate: "2025-06-01", EndDate: "2025-06-01",
	})
	if err != nil || dropped != 0 {
		t.Fatalf("unexpected result: dropped=%d err=%v", dropped, err)
	}
	if cfg.Days[0].Label != "Montpellier → Lyon" || cfg.Subtitle != "Trip by voiture – mode rapide" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestBuildRoadbookValidation(t *testing.T) {
	base := RoadbookRequest{
		StartCity: "Montpellier", StartLat: "43.6117", StartLon: "3.8777",
		EndCity: "Lyon", EndLat: "45.7640", EndLon: "4.8357",
		StartDate: "2025-06-01", EndDate: "2025-06-02",
	}

	tests := []struct {
		name   string
		mutate func(*RoadbookRequest)
		field  string
	}{
		{name: "missing start", mutate: func(r *RoadbookRequest) { r.StartCity = " " }, field: "start_city"},
		{name: "non numeric lat", mutate: func(r *RoadbookRequest) { r.StartLat = "north" }, field: "start_lat"},
		{name: "lon out of range", mutate: func(r *RoadbookRequest) { r.EndLon = "181" }, field: "end_lon"},
		{name: "bad date", mutate: func(r *RoadbookRequest) { r.StartDate = "01/06/2025" }, field: "start_date"},
		{name: "end before start", mutate: func(r *RoadbookRequest) { r.EndDate = "2025-05-31" }, field: "end_date"},
		{name: "unknown vehicle", mutate: func(r *RoadbookRequest) { r.Vehicle = "bike" }, field: "vehicle"},
		{name: "unknown mode", mutate: func(r *RoadbookRequest) { r.RoutingMode = "express" }, field: "routing_mode"},
		{name: "max drive too small", mutate: func(r *RoadbookRequest) { r.MaxDriveMin = 5 }, field: "max_drive"},
		{name: "bad day start", mutate: func(r *RoadbookRequest) { r.DayStart = "9" }, field: "day_start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)

			_, _, err := BuildRoadbook(req)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("expected validation error on %q, got %v", tt.field, err)
			}
		})
	}
}

type fakeRenderer struct {
	err error
}

func (f fakeRenderer) Render(_ context.Context, it *domain.Itinerary) (ports.Artifacts, error) {
	if f.err != nil {
		return ports.Artifacts{}, f.err
	}
	name := strings.ReplaceAll(it.Days[0].Title, " ", "_")
	return ports.Artifacts{PDF: name + ".pdf", Zip: name + ".zip"}, nil
}

type recordingObserver struct {
	calls int
	last  error
}

func (r *recordingObserver) ObserveGeneration(_ time.Duration, err error) {
	r.calls++
	r.last = err
}

func TestGeneratorGenerate(t *testing.T) {
	obs := &recordingObserver{}
	g := NewGenerator(NewAssembler(routing.HaversineEstimator{}, 2, nil), fakeRenderer{}, obs)

	rb, err := g.Generate(context.Background(), twoDayConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rb.Artifacts.Zip == "" || len(rb.Itinerary.Days) != 2 {
		t.Fatalf("unexpected roadbook %+v", rb)
	}
	if obs.calls != 1 || obs.last != nil {
		t.Fatalf("observer got calls=%d err=%v", obs.calls, obs.last)
	}

	boom := errors.New("disk full")
	g = NewGenerator(NewAssembler(routing.HaversineEstimator{}, 2, nil), fakeRenderer{err: boom}, obs)
	if _, err := g.Generate(context.Background(), twoDayConfig()); !errors.Is(err, boom) {
		t.Fatalf("expected render error, got %v", err)
	}
	if obs.calls != 2 || !errors.Is(obs.last, boom) {
		t.Fatalf("observer got calls=%d err=%v", obs.calls, obs.last)
	}
}
