package routing

import (
	"context"
	"log/slog"
	"math"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/platform/obs"
	"roadbook-service/internal/ports"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultRemoteTimeout = 30 * time.Second

// Recorder receives routing events for metrics. Implemented by
// metrics.Collector.
type Recorder interface {
	EstimateServed(source string)
	CacheLookup(hit bool)
}

// FallbackEstimator implements ports.Estimator by chaining a remote router
// with a local haversine estimate. Remote failures are logged and never
// reach the caller.
type FallbackEstimator struct {
	remote   ports.Router
	local    HaversineEstimator
	timeout  time.Duration
	logger   *slog.Logger
	recorder Recorder

	noRemoteOnce sync.Once
}

// NewFallbackEstimator builds the estimator chain. remote may be nil, in
// which case every leg is estimated locally.
func NewFallbackEstimator(remote ports.Router, timeout time.Duration, logger *slog.Logger, recorder Recorder) *FallbackEstimator {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackEstimator{
		remote:   remote,
		timeout:  timeout,
		logger:   logger,
		recorder: recorder,
	}
}

func (f *FallbackEstimator) Estimate(
	ctx context.Context,
	from domain.Point,
	to domain.Point,
	mode domain.RoutingMode,
	profile string,
) domain.TravelLeg {
	ctx, span := obs.StartSpan(ctx, "routing.Estimate",
		attribute.String("from", from.Name),
		attribute.String("to", to.Name),
		attribute.String("mode", string(mode)),
	)
	defer span.End()

	if f.remote == nil {
		f.noRemoteOnce.Do(func() {
			f.logger.Warn("no routing provider configured; using haversine estimates")
		})
		return f.fallback(ctx, span, from, to, mode, profile)
	}

	rctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	leg, err := f.remote.Route(rctx, from, to, mode, profile)
	if err == nil && usable(leg) {
		span.SetAttributes(attribute.String("source", "remote"))
		if f.recorder != nil {
			f.recorder.EstimateServed("remote")
		}
		return leg
	}

	if err != nil {
		span.RecordError(err)
	}
	f.logger.WarnContext(ctx, "routing provider failed; falling back to haversine estimate",
		"req_id", obs.RequestID(ctx),
		"from", from.Name,
		"to", to.Name,
		"mode", mode,
		"err", err,
	)
	return f.fallback(ctx, span, from, to, mode, profile)
}

func (f *FallbackEstimator) fallback(
	ctx context.Context,
	span trace.Span,
	from domain.Point,
	to domain.Point,
	mode domain.RoutingMode,
	profile string,
) domain.TravelLeg {
	span.SetAttributes(attribute.String("source", "fallback"))
	if f.recorder != nil {
		f.recorder.EstimateServed("fallback")
	}
	return f.local.Estimate(ctx, from, to, mode, profile)
}

func usable(leg domain.TravelLeg) bool {
	for _, v := range []float64{leg.DistanceKm, leg.DurationMin} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return true
}
