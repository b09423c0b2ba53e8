package ports

import (
	"context"
	"roadbook-service/internal/domain"
)

// Paths of the files produced for one itinerary.
type Artifacts struct {
	PDF string
	GPX string
	Map string
	Zip string
}

// Contract for turning an itinerary into downloadable files.
type ArtifactRenderer interface {
	Render(ctx context.Context, it *domain.Itinerary) (Artifacts, error)
}
