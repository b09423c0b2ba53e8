package services

import (
	"context"
	"fmt"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/platform/obs"
	"roadbook-service/internal/ports"
	"time"
)

// GenerationObserver records generation outcomes; implemented by
// metrics.Collector.
type GenerationObserver interface {
	ObserveGeneration(d time.Duration, err error)
}

// Roadbook is a scheduled itinerary together with its rendered files.
type Roadbook struct {
	Itinerary *domain.Itinerary
	Artifacts ports.Artifacts
}

// Generator schedules an itinerary and renders it.
type Generator struct {
	assembler *Assembler
	renderer  ports.ArtifactRenderer
	observer  GenerationObserver
}

func NewGenerator(assembler *Assembler, renderer ports.ArtifactRenderer, observer GenerationObserver) *Generator {
	return &Generator{assembler: assembler, renderer: renderer, observer: observer}
}

func (g *Generator) Generate(ctx context.Context, cfg RoadbookConfig) (_ *Roadbook, err error) {
	defer obs.Time(ctx, "roadbook.Generate")(&err)

	ctx, span := obs.StartSpan(ctx, "roadbook.Generate")
	defer span.End()

	start := time.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
		}
		if g.observer != nil {
			g.observer.ObserveGeneration(time.Since(start), err)
		}
	}()

	it, err := g.assembler.Assemble(ctx, cfg)
	if err != nil {
		return nil, err
	}

	artifacts, err := g.renderer.Render(ctx, it)
	if err != nil {
		return nil, fmt.Errorf("generate roadbook: render: %w", err)
	}

	return &Roadbook{Itinerary: it, Artifacts: artifacts}, nil
}
