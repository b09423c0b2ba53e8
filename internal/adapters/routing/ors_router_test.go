package routing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"roadbook-service/internal/domain"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const directionsBody = `{
  "type": "FeatureCollection",
  "bbox": [3.8777, 43.6117, 4.8357, 45.764],
  "features": [{
    "type": "Feature",
    "bbox": [3.8777, 43.6117, 4.8357, 45.764],
    "properties": {"summary": {"distance": 303450.2, "duration": 10530.0}, "way_points": [0, 2]},
    "geometry": {"type": "LineString", "coordinates": [[3.8777, 43.6117], [4.36, 44.5], [4.8357, 45.764]]}
  }],
  "metadata": {"service": "routing"}
}`

func newTestRouter(t *testing.T, h http.HandlerFunc) *ORSRouter {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	r, err := NewORSRouter("test-key-123456", srv.URL, 2*time.Second)
	require.NoError(t, err)
	r.backoff = time.Millisecond
	return r
}

func TestNewORSRouterRequiresKey(t *testing.T) {
	_, err := NewORSRouter("  ", "", 0)
	require.Error(t, err)
}

func TestORSRouterRouteModes(t *testing.T) {
	tests := []struct {
		mode       domain.RoutingMode
		preference string
		avoid      []string
	}{
		{domain.ModeRapide, "fastest", nil},
		{domain.ModeDecouverte, "fastest", []string{"highways"}},
		{domain.ModeSinueux, "shortest", []string{"highways"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			bodies := make(chan directionsRequest, 1)
			r := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
				assert.Equal(t, http.MethodPost, req.Method)
				assert.Equal(t, "/v2/directions/driving-car/geojson", req.URL.Path)
				assert.Equal(t, "test-key-123456", req.Header.Get("Authorization"))
				assert.Equal(t, userAgent, req.Header.Get("User-Agent"))

				var body directionsRequest
				assert.NoError(t, json.NewDecoder(req.Body).Decode(&body))
				bodies <- body

				w.Header().Set("Content-Type", "application/geo+json")
				io.WriteString(w, directionsBody)
			})

			leg, err := r.Route(context.Background(), montpellier, lyon, tt.mode, "")
			require.NoError(t, err)

			assert.InDelta(t, 303.4502, leg.DistanceKm, 1e-9)
			assert.InDelta(t, 175.5, leg.DurationMin, 1e-9)
			require.Len(t, leg.Geometry, 3)
			assert.Equal(t, 4.8357, leg.Geometry[2].Lon())

			got := <-bodies
			assert.Equal(t, tt.preference, got.Preference)
			assert.Equal(t, [][]float64{{3.8777, 43.6117}, {4.8357, 45.764}}, got.Coordinates)
			if tt.avoid == nil {
				assert.Nil(t, got.Options)
			} else {
				require.NotNil(t, got.Options)
				assert.Equal(t, tt.avoid, got.Options.AvoidFeatures)
			}
		})
	}
}

func TestORSRouterFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":"Access to this API has been disallowed"}`},
		{name: "malformed", status: http.StatusOK, body: `{"features": [`},
		{name: "no features", status: http.StatusOK, body: `{"type":"FeatureCollection","features":[]}`, wantErr: ErrNoRoute},
		{name: "no summary", status: http.StatusOK, body: `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":null}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := r.Route(context.Background(), montpellier, lyon, domain.ModeRapide, "")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v", err)
			}
		})
	}
}

func TestORSRouterRetriesTransientErrors(t *testing.T) {
	var attempts atomic.Int32
	r := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, directionsBody)
	})

	leg, err := r.Route(context.Background(), montpellier, lyon, domain.ModeRapide, "")
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
	assert.InDelta(t, 303.4502, leg.DistanceKm, 1e-9)
}

func TestORSRouterZeroLengthSummary(t *testing.T) {
	r := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"summary":{}},"geometry":{"type":"LineString","coordinates":[[4.8357,45.764],[4.8357,45.764]]}}]}`)
	})

	leg, err := r.Route(context.Background(), lyon, lyon, domain.ModeRapide, "")
	require.NoError(t, err)
	assert.Zero(t, leg.DistanceKm)
	assert.Zero(t, leg.DurationMin)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "", MaskKey(""))
	assert.Equal(t, "…", MaskKey("short"))
	assert.Equal(t, "5b3ce3…abcd", MaskKey("5b3ce3597851110001cf6248abcd"))
}
