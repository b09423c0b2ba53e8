package services

import (
	"context"
	"fmt"
	"math"
	"roadbook-service/internal/adapters/routing"
	"roadbook-service/internal/domain"
	"strings"
	"testing"
)

var (
	montpellier = domain.NewPoint("Montpellier", 43.6117, 3.8777)
	nimes       = domain.NewPoint("Nîmes", 43.8367, 4.3601)
	lyon        = domain.NewPoint("Lyon", 45.7640, 4.8357)
)

func settings(maxDrive int) DaySettings {
	return DaySettings{
		DayStart:    8*60 + 30,
		DayEnd:      19 * 60,
		MaxDriveMin: maxDrive,
		Mode:        domain.ModeRapide,
	}
}

func TestSegment(t *testing.T) {
	tests := []struct {
		total, max float64
		want       int
	}{
		{90, 120, 1},
		{120, 120, 1},
		{121, 120, 2},
		{360, 120, 3},
		{361, 120, 4},
		{0, 120, 1},
		{50, 0, 1},
	}

	for _, tt := range tests {
		if got := Segment(tt.total, tt.max); got != tt.want {
			t.Fatalf("Segment(%v, %v) = %d, want %d", tt.total, tt.max, got, tt.want)
		}
	}
}

func TestSplitLegSums(t *testing.T) {
	leg := domain.TravelLeg{DistanceKm: 303.4, DurationMin: 361}
	n := Segment(leg.DurationMin, 120)
	parts := SplitLeg(leg, n)

	if len(parts) != 4 {
		t.Fatalf("expected 4 parts, got %d", len(parts))
	}

	var km, mins float64
	for _, p := range parts {
		if p.DurationMin > 120 {
			t.Fatalf("part duration %v exceeds limit", p.DurationMin)
		}
		km += p.DistanceKm
		mins += p.DurationMin
	}
	if math.Abs(km-leg.DistanceKm) > 1e-9 || math.Abs(mins-leg.DurationMin) > 1e-9 {
		t.Fatalf("parts sum to %v km / %v min, want %v / %v", km, mins, leg.DistanceKm, leg.DurationMin)
	}
}

func TestDayBuilderSingleLeg(t *testing.T) {
	est := routing.NewMockRouter([]routing.MockLeg{{From: "Montpellier", To: "Nîmes", Km: 52.4, Minutes: 90.7}})
	b := NewDayBuilder(est, settings(120))

	day := domain.DaySpec{Label: "test", Waypoints: []domain.Point{montpellier, nimes}}
	res, visited, end := b.Build(context.Background(), day, 8*60+30)

	stops := res.Stops()
	if len(stops) != 1 {
		t.Fatalf("expected 1 stop, got %d", len(stops))
	}
	s := stops[0]
	if s.Start.HHMM() != "08:30" || s.End.HHMM() != "10:00" {
		t.Fatalf("stop spans %s-%s, want 08:30-10:00", s.Start, s.End)
	}
	if s.Label != "Montpellier → Nîmes" {
		t.Fatalf("unexpected label %q", s.Label)
	}
	if !strings.HasPrefix(s.Text(), "08:30 – 10:00 – 52 km – Montpellier → Nîmes : ") {
		t.Fatalf("unexpected text %q", s.Text())
	}
	if end.HHMM() != "10:10" {
		t.Fatalf("clock after leg = %s, want 10:10", end)
	}
	if len(visited) != 1 || visited[0] != nimes {
		t.Fatalf("visited = %+v, want [Nîmes]", visited)
	}
}

func TestDayBuilderSegmentsLongLeg(t *testing.T) {
	est := routing.NewMockRouter([]routing.MockLeg{{From: "Montpellier", To: "Lyon", Km: 303, Minutes: 300}})
	b := NewDayBuilder(est, settings(120))

	day := domain.DaySpec{Waypoints: []domain.Point{montpellier, lyon}}
	res, _, end := b.Build(context.Background(), day, 8*60+30)

	stops := res.Stops()
	// three 100 min segments, then lunch at exactly 14:00
	if len(stops) != 4 {
		t.Fatalf("expected 4 stops, got %d", len(stops))
	}

	wantSpans := [][2]string{{"08:30", "10:10"}, {"10:20", "12:00"}, {"12:10", "13:50"}}
	var km float64
	for i, want := range wantSpans {
		s := stops[i]
		if s.Kind != domain.StopTravel {
			t.Fatalf("stop %d kind = %s, want travel", i, s.Kind)
		}
		if s.Start.HHMM() != want[0] || s.End.HHMM() != want[1] {
			t.Fatalf("segment %d spans %s-%s, want %s-%s", i+1, s.Start, s.End, want[0], want[1])
		}
		if wantLabel := fmt.Sprintf("Route (segment %d/3)", i+1); s.Label != wantLabel {
			t.Fatalf("segment label %q, want %q", s.Label, wantLabel)
		}
		km += s.DistanceKm
	}
	if math.Abs(km-303) > 1e-9 {
		t.Fatalf("segment distances sum to %v, want 303", km)
	}

	lunch := stops[3]
	if lunch.Kind != domain.StopLunch || lunch.Start.HHMM() != "14:00" || lunch.End.HHMM() != "15:15" {
		t.Fatalf("unexpected lunch stop %+v", lunch)
	}
	if end.HHMM() != "15:20" {
		t.Fatalf("clock = %s, want 15:20", end)
	}
}

func TestDayBuilderLunchWindow(t *testing.T) {
	tests := []struct {
		name      string
		minutes   float64
		wantLunch bool
		wantClock string
	}{
		// 08:30 + d + 10 buffer
		{name: "before window", minutes: 199, wantLunch: false, wantClock: "11:59"},
		{name: "window start", minutes: 200, wantLunch: true, wantClock: "13:20"},
		{name: "mid window", minutes: 230, wantLunch: true, wantClock: "13:50"},
		{name: "window end", minutes: 320, wantLunch: true, wantClock: "15:20"},
		{name: "after window", minutes: 321, wantLunch: false, wantClock: "14:01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := routing.NewMockRouter([]routing.MockLeg{{From: "Montpellier", To: "Lyon", Km: 200, Minutes: tt.minutes}})
			b := NewDayBuilder(est, settings(480))

			res, _, end := b.Build(context.Background(), domain.DaySpec{Waypoints: []domain.Point{montpellier, lyon}}, 8*60+30)

			var lunch *domain.Stop
			for _, s := range res.Stops() {
				if s.Kind == domain.StopLunch {
					lunch = &s
				}
			}
			if (lunch != nil) != tt.wantLunch {
				t.Fatalf("lunch inserted = %v, want %v", lunch != nil, tt.wantLunch)
			}
			if end.HHMM() != tt.wantClock {
				t.Fatalf("clock = %s, want %s", end, tt.wantClock)
			}
		})
	}
}

func TestScheduleLunchAt1230(t *testing.T) {
	stops, clock := scheduleLunch(750, "")
	if len(stops) != 1 {
		t.Fatalf("expected lunch stop, got %d stops", len(stops))
	}
	if stops[0].Start.HHMM() != "12:30" || stops[0].End.HHMM() != "13:45" {
		t.Fatalf("lunch spans %s-%s, want 12:30-13:45", stops[0].Start, stops[0].End)
	}
	if clock != 750+80 {
		t.Fatalf("clock = %s, want advance by 80 min", clock)
	}
	if stops[0].Lines[0] == "" {
		t.Fatal("default lunch hint missing")
	}
}

func TestDayBuilderOverrun(t *testing.T) {
	// 08:30 + 680 + 10 = 20:00
	est := routing.NewMockRouter([]routing.MockLeg{{From: "Montpellier", To: "Lyon", Km: 900, Minutes: 680}})
	b := NewDayBuilder(est, settings(700))

	res, _, end := b.Build(context.Background(), domain.DaySpec{Waypoints: []domain.Point{montpellier, lyon}}, 8*60+30)

	stops := res.Stops()
	last := stops[len(stops)-1]
	if last.Kind != domain.StopAdjustment {
		t.Fatalf("last stop kind = %s, want adjustment", last.Kind)
	}
	if !strings.HasPrefix(last.Text(), "20:00 – 19:00 – 0 km – Schedule adjustment : ") {
		t.Fatalf("unexpected adjustment text %q", last.Text())
	}
	if end.HHMM() != "20:00" {
		t.Fatalf("adjustment must not move the clock, got %s", end)
	}
}

func TestDayBuilderNoOverrunAtDayEnd(t *testing.T) {
	// 08:30 + 620 + 10 = 19:00
	est := routing.NewMockRouter([]routing.MockLeg{{From: "Montpellier", To: "Lyon", Km: 900, Minutes: 620}})
	b := NewDayBuilder(est, settings(700))

	res, _, _ := b.Build(context.Background(), domain.DaySpec{Waypoints: []domain.Point{montpellier, lyon}}, 8*60+30)
	for _, s := range res.Stops() {
		if s.Kind == domain.StopAdjustment {
			t.Fatal("unexpected adjustment stop at exactly day end")
		}
	}
}

func TestDayBuilderZeroDistanceLegAndWalk(t *testing.T) {
	b := NewDayBuilder(routing.HaversineEstimator{}, settings(120))

	day := domain.DaySpec{
		Waypoints: []domain.Point{lyon, lyon},
		Walks: []domain.Walk{
			{Near: "Lyon", DurationMin: 90, Route: "Loop of the major monuments."},
			{Near: "Lyon"},
			{Near: "Vienne", DurationMin: 30},
		},
	}
	res, _, end := b.Build(context.Background(), day, 8*60+30)

	stops := res.Stops()
	if len(stops) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(stops))
	}

	travel := stops[0]
	if travel.Start != travel.End || travel.DistanceKm != 0 {
		t.Fatalf("zero-distance leg should give a zero-length stop, got %+v", travel)
	}

	walk := stops[1]
	if walk.Kind != domain.StopWalk || walk.Start.HHMM() != "08:40" || walk.End.HHMM() != "10:10" {
		t.Fatalf("unexpected walk %+v", walk)
	}
	if walk.Label != "Walking tour – Lyon" || walk.DistanceKm != 2 || walk.Lines[0] != "Loop of the major monuments." {
		t.Fatalf("unexpected walk details %+v", walk)
	}

	def := stops[2]
	if def.Start.HHMM() != "10:20" || def.End.HHMM() != "11:05" {
		t.Fatalf("default walk spans %s-%s, want 10:20-11:05", def.Start, def.End)
	}
	if end.HHMM() != "11:15" {
		t.Fatalf("clock = %s, want 11:15", end)
	}
}

func TestDayBuilderClockIsMonotonic(t *testing.T) {
	b := NewDayBuilder(routing.HaversineEstimator{}, settings(60))

	paris := domain.NewPoint("Paris", 48.8566, 2.3522)
	day := domain.DaySpec{
		Waypoints: []domain.Point{paris, lyon, montpellier, nimes},
		Walks:     []domain.Walk{{Near: "Lyon"}, {Near: "Nîmes", DurationMin: 60}},
	}
	res, _, _ := b.Build(context.Background(), day, 8*60+30)

	prev := domain.Clock(8*60 + 30)
	for i, s := range res.Stops() {
		if s.Kind == domain.StopAdjustment {
			continue
		}
		if s.Start < prev || s.End < s.Start {
			t.Fatalf("stop %d goes back in time: %s-%s after %s", i, s.Start, s.End, prev)
		}
		if len(s.Start.HHMM()) != 5 || len(s.End.HHMM()) != 5 {
			t.Fatalf("stop %d has malformed times %q %q", i, s.Start.HHMM(), s.End.HHMM())
		}
		prev = s.End
	}
}
