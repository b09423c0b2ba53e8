package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/platform/obs"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

const (
	DefaultORSBaseURL = "https://api.openrouteservice.org"
	userAgent         = "roadbook-app/1.0"
	maxResponseBytes  = 8 << 20
)

var ErrNoRoute = errors.New("routing response has no route features")

type directionsRequest struct {
	Coordinates [][]float64        `json:"coordinates"`
	Preference  string             `json:"preference"`
	Options     *directionsOptions `json:"options,omitempty"`
}

type directionsOptions struct {
	AvoidFeatures []string `json:"avoid_features"`
}

// ORSRouter implements ports.Router using the OpenRouteService directions
// endpoint in GeoJSON form.
//
// It only reports failures; degrading to a local estimate is the job of
// FallbackEstimator. The router is safe for concurrent use.
type ORSRouter struct {
	session     *http.Client
	apiKey      string
	baseURL     string
	profile     string
	maxAttempts int
	backoff     time.Duration
}

func NewORSRouter(apiKey, baseURL string, timeout time.Duration) (*ORSRouter, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	if baseURL == "" {
		baseURL = DefaultORSBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &ORSRouter{
		session:     &http.Client{Timeout: timeout},
		apiKey:      apiKey,
		baseURL:     strings.TrimRight(baseURL, "/"),
		profile:     domain.DefaultProfile,
		maxAttempts: 3,
		backoff:     200 * time.Millisecond,
	}, nil
}

// directionsFor translates a routing mode into ORS preference options.
func directionsFor(mode domain.RoutingMode) (string, *directionsOptions) {
	switch mode {
	case domain.ModeDecouverte:
		return "fastest", &directionsOptions{AvoidFeatures: []string{"highways"}}
	case domain.ModeSinueux:
		return "shortest", &directionsOptions{AvoidFeatures: []string{"highways"}}
	default:
		return "fastest", nil
	}
}

// Route fetches the first route between two points.
func (o *ORSRouter) Route(
	ctx context.Context,
	from domain.Point,
	to domain.Point,
	mode domain.RoutingMode,
	profile string,
) (_ domain.TravelLeg, err error) {
	defer obs.Time(ctx, "ors.Route")(&err)

	if profile == "" {
		profile = o.profile
	}

	preference, options := directionsFor(mode)
	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{from.CoordsToList(), to.CoordsToList()},
		Preference:  preference,
		Options:     options,
	})
	if err != nil {
		return domain.TravelLeg{}, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, profile)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return domain.TravelLeg{}, fmt.Errorf("directions request %q -> %q: %w", from.Name, to.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.TravelLeg{}, fmt.Errorf("directions request: unexpected status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return domain.TravelLeg{}, fmt.Errorf("read directions response: %w", err)
	}

	return decodeDirections(raw)
}

func decodeDirections(raw []byte) (domain.TravelLeg, error) {
	fc, err := geojson.UnmarshalFeatureCollection(raw)
	if err != nil {
		return domain.TravelLeg{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(fc.Features) == 0 || fc.Features[0] == nil {
		return domain.TravelLeg{}, ErrNoRoute
	}
	feat := fc.Features[0]

	summary, ok := feat.Properties["summary"].(map[string]interface{})
	if !ok {
		return domain.TravelLeg{}, errors.New("decode directions response: route has no summary")
	}

	// ORS omits zero metrics from the summary.
	meters, err := summaryValue(summary, "distance")
	if err != nil {
		return domain.TravelLeg{}, err
	}
	seconds, err := summaryValue(summary, "duration")
	if err != nil {
		return domain.TravelLeg{}, err
	}

	var line orb.LineString
	if ls, ok := feat.Geometry.(orb.LineString); ok {
		line = ls
	}

	return domain.TravelLeg{
		DistanceKm:  meters / 1000.0,
		DurationMin: seconds / 60.0,
		Geometry:    line,
	}, nil
}

func summaryValue(summary map[string]interface{}, name string) (float64, error) {
	v, ok := summary[name]
	if !ok {
		return 0, nil
	}
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("decode directions response: invalid summary %s: %v", name, v)
	}
	return f, nil
}

// KeyHint masks the API key for diagnostics.
func (o *ORSRouter) KeyHint() string {
	return MaskKey(o.apiKey)
}

func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 10 {
		return "…"
	}
	return key[:6] + "…" + key[len(key)-4:]
}
