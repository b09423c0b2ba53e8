package services

import (
	"context"
	"fmt"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/ports"
)

const (
	legBufferMin     = 10
	walkBufferMin    = 10
	defaultWalkMin   = 45
	walkDistanceKm   = 2
	lunchDurationMin = 75
	lunchAdvanceMin  = 80
	lunchDistanceKm  = 1
)

// DaySettings are the per-request scheduling parameters shared by every day.
type DaySettings struct {
	DayStart    domain.Clock
	DayEnd      domain.Clock
	MaxDriveMin int
	Mode        domain.RoutingMode
	Profile     string
}

// DayBuilder turns one DaySpec into timed stops.
//
// The running clock is threaded through each scheduling step as a value;
// the builder holds no per-day state and is safe for concurrent use.
type DayBuilder struct {
	estimator ports.Estimator
	settings  DaySettings
}

func NewDayBuilder(estimator ports.Estimator, settings DaySettings) *DayBuilder {
	if settings.Profile == "" {
		settings.Profile = domain.DefaultProfile
	}
	return &DayBuilder{estimator: estimator, settings: settings}
}

// Build schedules the day starting at start. Legs are estimated strictly in
// order since each one starts where the previous one left the clock.
func (b *DayBuilder) Build(ctx context.Context, day domain.DaySpec, start domain.Clock) (domain.DayResult, []domain.Point, domain.Clock) {
	var (
		result  domain.DayResult
		visited = make([]domain.Point, 0, len(day.Waypoints))
		clock   = start
		stops   []domain.Stop
	)

	for i := 0; i+1 < len(day.Waypoints); i++ {
		from, to := day.Waypoints[i], day.Waypoints[i+1]

		leg := b.estimator.Estimate(ctx, from, to, b.settings.Mode, b.settings.Profile)
		if len(leg.Geometry) > 0 {
			result.Tracks = append(result.Tracks, leg.Geometry)
		}

		stops, clock = b.scheduleLeg(clock, from, to, leg)
		result.Blocks = appendStops(result.Blocks, stops)

		stops, clock = scheduleWalks(clock, to, day.Walks)
		result.Blocks = appendStops(result.Blocks, stops)

		visited = append(visited, to)
	}

	stops, clock = scheduleLunch(clock, day.LunchHint)
	result.Blocks = appendStops(result.Blocks, stops)

	result.Blocks = appendStops(result.Blocks, overrun(clock, b.settings.DayEnd))

	return result, visited, clock
}

// scheduleLeg emits one travel stop, or one per segment when the leg is
// longer than the drive limit.
func (b *DayBuilder) scheduleLeg(clock domain.Clock, from, to domain.Point, leg domain.TravelLeg) ([]domain.Stop, domain.Clock) {
	n := Segment(leg.DurationMin, float64(b.settings.MaxDriveMin))
	if n == 1 {
		d := int(leg.DurationMin)
		stop := domain.Stop{
			Kind:        domain.StopTravel,
			Start:       clock,
			End:         clock.Add(d),
			DurationMin: leg.DurationMin,
			DistanceKm:  leg.DistanceKm,
			Label:       from.Name + " → " + to.Name,
			Lines: []string{
				"Direct route, no detours.",
				"Pleasant roads preferred.",
				"Short break if needed.",
				"Allow a 5–10 min margin.",
				"Drive smoothly.",
			},
		}
		return []domain.Stop{stop}, clock.Add(d + legBufferMin)
	}

	stops := make([]domain.Stop, 0, n)
	for k, part := range SplitLeg(leg, n) {
		d := int(part.DurationMin)
		stops = append(stops, domain.Stop{
			Kind:        domain.StopTravel,
			Start:       clock,
			End:         clock.Add(d),
			DurationMin: part.DurationMin,
			DistanceKm:  part.DistanceKm,
			Label:       fmt.Sprintf("Route (segment %d/%d)", k+1, n),
			Lines: []string{
				"Route follows your chosen mode.",
				"Break at the end of the segment.",
				fmt.Sprintf("At most %d min per section.", b.settings.MaxDriveMin),
				"Allow a 5–10 min margin.",
				"GPS tracking recommended.",
			},
		})
		clock = clock.Add(d + legBufferMin)
	}
	return stops, clock
}

// scheduleWalks emits every walk attached to the point just reached.
func scheduleWalks(clock domain.Clock, at domain.Point, walks []domain.Walk) ([]domain.Stop, domain.Clock) {
	var stops []domain.Stop
	for _, w := range walks {
		if w.Near != at.Name {
			continue
		}

		d := w.DurationMin
		if d == 0 {
			d = defaultWalkMin
		}
		route := w.Route
		if route == "" {
			route = "Heritage loop recommended by the tourist office."
		}

		stops = append(stops, domain.Stop{
			Kind:        domain.StopWalk,
			Start:       clock,
			End:         clock.Add(d),
			DurationMin: float64(d),
			DistanceKm:  walkDistanceKm,
			Label:       "Walking tour – " + at.Name,
			Lines: []string{
				route,
				"Focus on heritage and architecture.",
				"Comfortable pace.",
				"Landmark outdoor sites.",
				"Drinks and restroom break.",
			},
		})
		clock = clock.Add(d + walkBufferMin)
	}
	return stops, clock
}

// scheduleLunch inserts a lunch stop when the clock sits in the midday window.
func scheduleLunch(clock domain.Clock, hint string) ([]domain.Stop, domain.Clock) {
	if !clock.InLunchWindow() {
		return nil, clock
	}
	if hint == "" {
		hint = "Local cuisine; booking advised in summer."
	}

	stop := domain.Stop{
		Kind:        domain.StopLunch,
		Start:       clock,
		End:         clock.Add(lunchDurationMin),
		DurationMin: lunchDurationMin,
		DistanceKm:  lunchDistanceKm,
		Label:       "Lunch (suggestion)",
		Lines: []string{
			hint,
			"Seasonal produce and local specialities.",
			"Quick alternative if timing is tight.",
			"Stay hydrated.",
		},
	}
	return []domain.Stop{stop}, clock.Add(lunchAdvanceMin)
}

// overrun reports a day that ends after dayEnd. The stop runs from the
// clock back to dayEnd and does not move the clock.
func overrun(clock, dayEnd domain.Clock) []domain.Stop {
	if clock <= dayEnd {
		return nil
	}
	return []domain.Stop{{
		Kind:       domain.StopAdjustment,
		Start:      clock,
		End:        dayEnd,
		DistanceKm: 0,
		Label:      "Schedule adjustment",
		Lines: []string{
			"Drives and visits exceed the daily window.",
			"Drop an afternoon stop or leave earlier.",
			"Be back before the set time.",
			"A shortcut may be suggested.",
			"Check the next day.",
		},
	}}
}

func appendStops(blocks []domain.Block, stops []domain.Stop) []domain.Block {
	for _, s := range stops {
		blocks = append(blocks, domain.StopBlock(s))
	}
	return blocks
}
