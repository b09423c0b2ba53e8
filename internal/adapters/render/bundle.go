package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/platform/obs"
	"roadbook-service/internal/ports"
	"time"

	"github.com/google/uuid"
)

const stampLayout = "20060102_1504"

// Bundle implements ports.ArtifactRenderer by writing the PDF, GPX and map
// files plus a zip of all three into Dir.
//
// Names carry the generation minute and a short random suffix so that
// requests in the same minute do not overwrite each other.
type Bundle struct {
	Dir   string
	Now   func() time.Time
	NewID func() string
}

func NewBundle(dir string) *Bundle {
	return &Bundle{
		Dir:   dir,
		Now:   time.Now,
		NewID: func() string { return uuid.NewString()[:8] },
	}
}

func (b *Bundle) Render(ctx context.Context, it *domain.Itinerary) (_ ports.Artifacts, err error) {
	defer obs.Time(ctx, "render.Bundle")(&err)

	if err := os.MkdirAll(b.Dir, 0o755); err != nil {
		return ports.Artifacts{}, fmt.Errorf("render bundle: create output dir: %w", err)
	}

	stamp := b.Now().Format(stampLayout) + "_" + b.NewID()
	out := ports.Artifacts{
		PDF: filepath.Join(b.Dir, "roadbook_"+stamp+".pdf"),
		GPX: filepath.Join(b.Dir, "points_"+stamp+".gpx"),
		Map: filepath.Join(b.Dir, "map_"+stamp+".html"),
		Zip: filepath.Join(b.Dir, "pack_"+stamp+".zip"),
	}

	steps := []struct {
		path  string
		write func(io.Writer) error
	}{
		{out.PDF, func(w io.Writer) error { return WritePDF(w, it) }},
		{out.GPX, func(w io.Writer) error { return WriteGPX(w, it.VisitedPoints) }},
		{out.Map, func(w io.Writer) error { return WriteMap(w, it) }},
		{out.Zip, func(w io.Writer) error { return WriteArchive(w, out.PDF, out.GPX, out.Map) }},
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return ports.Artifacts{}, err
		}
		if err := writeFile(s.path, s.write); err != nil {
			return ports.Artifacts{}, fmt.Errorf("render bundle: %w", err)
		}
	}

	return out, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", path, err)
	}
	return nil
}
