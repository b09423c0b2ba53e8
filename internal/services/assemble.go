package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/platform/obs"
	"roadbook-service/internal/ports"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const DefaultDayConcurrency = 4

// RoadbookConfig is everything needed to schedule one itinerary.
type RoadbookConfig struct {
	Title           string
	Subtitle        string
	DayStart        string
	DayEnd          string
	MaxDriveMinutes int
	Mode            domain.RoutingMode
	Profile         string
	Base            domain.Point
	Days            []domain.DaySpec
}

// Settings validates the configuration and returns the parsed day settings.
func (c RoadbookConfig) Settings() (DaySettings, error) {
	start, err := domain.ParseClock(c.DayStart)
	if err != nil {
		return DaySettings{}, fieldError("day_start", err)
	}
	end, err := domain.ParseClock(c.DayEnd)
	if err != nil {
		return DaySettings{}, fieldError("day_end", err)
	}
	if end <= start {
		return DaySettings{}, domain.Invalid("day_end", "%s must be after day_start %s", end, start)
	}

	if c.MaxDriveMinutes <= 0 {
		return DaySettings{}, domain.Invalid("max_drive", "must be positive, got %d", c.MaxDriveMinutes)
	}

	mode := c.Mode
	if mode == "" {
		mode = domain.ModeRapide
	}
	if !mode.Valid() {
		return DaySettings{}, domain.Invalid("routing_mode", "unknown mode %q", mode)
	}

	if len(c.Days) == 0 {
		return DaySettings{}, domain.Invalid("days", "at least one day is required")
	}
	for i, d := range c.Days {
		if err := d.Validate(i); err != nil {
			return DaySettings{}, err
		}
		for j, p := range d.Waypoints {
			if err := p.Validate(fmt.Sprintf("days[%d].waypoints[%d]", i, j)); err != nil {
				return DaySettings{}, err
			}
		}
	}

	profile := c.Profile
	if profile == "" {
		profile = domain.DefaultProfile
	}

	return DaySettings{
		DayStart:    start,
		DayEnd:      end,
		MaxDriveMin: c.MaxDriveMinutes,
		Mode:        mode,
		Profile:     profile,
	}, nil
}

// Assembler schedules every day of a roadbook and merges the results.
type Assembler struct {
	estimator   ports.Estimator
	concurrency int
	logger      *slog.Logger
}

func NewAssembler(estimator ports.Estimator, concurrency int, logger *slog.Logger) *Assembler {
	if concurrency <= 0 {
		concurrency = DefaultDayConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{estimator: estimator, concurrency: concurrency, logger: logger}
}

type dayOutput struct {
	result  domain.DayResult
	visited []domain.Point
}

// Assemble builds the itinerary. Days run concurrently, each from its own
// day start, and are merged back in configuration order. The only errors
// are invalid configuration and context cancellation.
func (a *Assembler) Assemble(ctx context.Context, cfg RoadbookConfig) (_ *domain.Itinerary, err error) {
	defer obs.Time(ctx, "roadbook.Assemble")(&err)

	settings, err := cfg.Settings()
	if err != nil {
		return nil, err
	}

	ctx, span := obs.StartSpan(ctx, "roadbook.Assemble",
		attribute.Int("days", len(cfg.Days)),
		attribute.String("mode", string(settings.Mode)),
	)
	defer span.End()

	builder := NewDayBuilder(a.estimator, settings)
	outputs := make([]dayOutput, len(cfg.Days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, day := range cfg.Days {
		i, day := i, day
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, visited, end := builder.Build(gctx, day, settings.DayStart)
			res.Title = fmt.Sprintf("Day %d – %s", i+1, day.Label)
			res.Blocks = append([]domain.Block{
				domain.TitleBlock(res.Title),
				domain.IntroBlock(day.Intro),
			}, res.Blocks...)

			a.logger.DebugContext(gctx, "day scheduled",
				"req_id", obs.RequestID(gctx),
				"day", i+1,
				"stops", len(res.Stops()),
				"end", end.HHMM(),
			)

			outputs[i] = dayOutput{result: res, visited: visited}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble roadbook: %w", err)
	}
	// Estimators swallow cancellation, so check once more before merging.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("assemble roadbook: %w", err)
	}

	it := &domain.Itinerary{
		Title:    cfg.Title,
		Subtitle: cfg.Subtitle,
		Base:     cfg.Base,
		Days:     make([]domain.DayResult, 0, len(outputs)),
	}
	for _, out := range outputs {
		it.Days = append(it.Days, out.result)
		it.Markers = append(it.Markers, out.visited...)
	}
	it.VisitedPoints = domain.DedupePoints(it.Markers)

	return it, nil
}

// fieldError renames the field of a clock parse error.
func fieldError(field string, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return &domain.ValidationError{Field: field, Reason: ve.Reason}
	}
	return domain.Invalid(field, "%v", err)
}
