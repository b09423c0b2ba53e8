package routing

import (
	"context"
	"errors"
	"fmt"
	"roadbook-service/internal/domain"
	"sync"
)

var ErrMockUnavailable = errors.New("mock router: unavailable")

// MockLeg is a canned route between two named points.
type MockLeg struct {
	From, To string
	Km       float64
	Minutes  float64
}

// MockRouter serves canned legs keyed by point names and counts calls.
// Unknown pairs fail, which lets tests exercise the fallback path.
type MockRouter struct {
	mu    sync.Mutex
	m     map[string]domain.TravelLeg
	calls int
}

func NewMockRouter(legs []MockLeg) *MockRouter {
	m := make(map[string]domain.TravelLeg, len(legs))
	for _, l := range legs {
		m[l.From+"|"+l.To] = domain.TravelLeg{DistanceKm: l.Km, DurationMin: l.Minutes}
	}
	return &MockRouter{m: m}
}

func (p *MockRouter) Route(ctx context.Context, from, to domain.Point, _ domain.RoutingMode, _ string) (domain.TravelLeg, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++

	if err := ctx.Err(); err != nil {
		return domain.TravelLeg{}, err
	}

	r, ok := p.m[from.Name+"|"+to.Name]
	if !ok {
		return domain.TravelLeg{}, fmt.Errorf("missing pair %q -> %q: %w", from.Name, to.Name, ErrMockUnavailable)
	}

	return r, nil
}

func (p *MockRouter) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Estimate lets the mock stand in for a ports.Estimator; unknown pairs
// return a zero leg.
func (p *MockRouter) Estimate(ctx context.Context, from, to domain.Point, mode domain.RoutingMode, profile string) domain.TravelLeg {
	leg, _ := p.Route(ctx, from, to, mode, profile)
	return leg
}
