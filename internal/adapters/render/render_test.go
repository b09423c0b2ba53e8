package render

import (
	"bytes"
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"roadbook-service/internal/domain"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItinerary() *domain.Itinerary {
	nimes := domain.NewPoint("Nîmes", 43.8367, 4.3601)
	lyon := domain.NewPoint("Lyon", 45.764, 4.8357)

	stop := domain.Stop{
		Kind:       domain.StopTravel,
		Start:      8*60 + 30,
		End:        10 * 60,
		DistanceKm: 52.4,
		Label:      "Montpellier → Nîmes",
		Lines:      []string{"Direct route, no detours.", "Segments ≤ 2h."},
	}

	return &domain.Itinerary{
		Title:    "Roadbook Montpellier → Lyon (2025-06-01 → 2025-06-02)",
		Subtitle: "Trip by voiture – mode rapide",
		Base:     lyon,
		Days: []domain.DayResult{
			{
				Title: "Day 1 – Montpellier → Lyon",
				Blocks: []domain.Block{
					domain.TitleBlock("Day 1 – Montpellier → Lyon"),
					domain.IntroBlock("Drive day."),
					domain.StopBlock(stop),
				},
				Tracks: []orb.LineString{{{3.8777, 43.6117}, {4.3601, 43.8367}}},
			},
			{
				Title: "Day 2 – Lyon – Historic centre",
				Blocks: []domain.Block{
					domain.TitleBlock("Day 2 – Lyon – Historic centre"),
					domain.IntroBlock("Walk day."),
				},
			},
		},
		VisitedPoints: []domain.Point{nimes, lyon},
		Markers:       []domain.Point{nimes, lyon, lyon},
	}
}

func TestWriteGPX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGPX(&buf, []domain.Point{
		domain.NewPoint("Nîmes", 43.8367, 4.3601),
		domain.NewPoint("A & B", 45.764, 4.8357),
	}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `xmlns="http://www.topografix.com/GPX/1/1"`)
	assert.Contains(t, out, `<wpt lat="43.8367" lon="4.3601">`)
	assert.Contains(t, out, `<name>A &amp; B</name>`)

	var doc gpxDoc
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Waypoints, 2)
	assert.Equal(t, "Nîmes", doc.Waypoints[0].Name)
}

func TestWriteMap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMap(&buf, sampleItinerary()))

	out := buf.String()
	assert.Contains(t, out, "L.map('map').setView(")
	assert.Contains(t, out, "45.764")
	assert.Contains(t, out, "<title>Roadbook Montpellier → Lyon (2025-06-01 → 2025-06-02)</title>")
	assert.Contains(t, out, `"name":"Nîmes"`)
	assert.Contains(t, out, `"type":"LineString"`)
	assert.Equal(t, 3, strings.Count(out, `"type":"Point"`), "markers are not de-duplicated")
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleItinerary()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestBundleRender(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output")
	b := NewBundle(dir)
	b.Now = func() time.Time { return time.Date(2025, 6, 1, 8, 5, 0, 0, time.UTC) }
	b.NewID = func() string { return "abcd1234" }

	arts, err := b.Render(context.Background(), sampleItinerary())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "roadbook_20250601_0805_abcd1234.pdf"), arts.PDF)
	assert.Equal(t, filepath.Join(dir, "points_20250601_0805_abcd1234.gpx"), arts.GPX)
	assert.Equal(t, filepath.Join(dir, "map_20250601_0805_abcd1234.html"), arts.Map)
	assert.Equal(t, filepath.Join(dir, "pack_20250601_0805_abcd1234.zip"), arts.Zip)

	for _, p := range []string{arts.PDF, arts.GPX, arts.Map, arts.Zip} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), p)
	}

	zr, err := zip.OpenReader(arts.Zip)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
		assert.Equal(t, zip.Deflate, f.Method)
	}
	assert.Equal(t, []string{
		"roadbook_20250601_0805_abcd1234.pdf",
		"points_20250601_0805_abcd1234.gpx",
		"map_20250601_0805_abcd1234.html",
	}, names)
}

func TestBundleRenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBundle(t.TempDir()).Render(ctx, sampleItinerary())
	assert.ErrorIs(t, err, context.Canceled)
}
