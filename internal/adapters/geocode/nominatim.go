package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"roadbook-service/internal/domain"
	"roadbook-service/internal/platform/obs"
	"roadbook-service/internal/ports"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org/search"
	userAgent           = "roadbook-app/1.0"
	resultLimit         = 5
	MinQueryLength      = 2
)

type nominatimPlace struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Nominatim implements ports.Geocoder against the OpenStreetMap search API.
// Results are cached through the optional GeocodeCache.
type Nominatim struct {
	session *http.Client
	baseURL string
	cache   ports.GeocodeCache
	logger  *slog.Logger
}

func NewNominatim(baseURL string, timeout time.Duration, cache ports.GeocodeCache, logger *slog.Logger) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Nominatim{
		session: &http.Client{Timeout: timeout},
		baseURL: baseURL,
		cache:   cache,
		logger:  logger,
	}
}

func (n *Nominatim) Search(ctx context.Context, query string) (_ []ports.GeocodeCandidate, err error) {
	defer obs.Time(ctx, "nominatim.Search")(&err)

	query = strings.TrimSpace(query)
	if len([]rune(query)) < MinQueryLength {
		return nil, domain.Invalid("q", "must be at least %d characters", MinQueryLength)
	}

	if n.cache != nil {
		cands, ok, err := n.cache.GetGeocode(ctx, query)
		if err != nil {
			n.logger.WarnContext(ctx, "geocode cache read failed", "query", query, "err", err)
		} else if ok {
			return cands, nil
		}
	}

	cands, err := n.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	if n.cache != nil {
		if err := n.cache.PutGeocode(ctx, query, cands); err != nil {
			n.logger.WarnContext(ctx, "geocode cache write failed", "query", query, "err", err)
		}
	}

	return cands, nil
}

func (n *Nominatim) fetch(ctx context.Context, query string) ([]ports.GeocodeCandidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(resultLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: create request: %w", query, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("geocode %q: unexpected status %d: %s", query, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("geocode %q: decode response: %w", query, err)
	}

	out := make([]ports.GeocodeCandidate, 0, len(places))
	for _, p := range places {
		lat, err := strconv.ParseFloat(p.Lat, 64)
		if err != nil {
			return nil, fmt.Errorf("geocode %q: parse lat %q: %w", query, p.Lat, err)
		}
		lon, err := strconv.ParseFloat(p.Lon, 64)
		if err != nil {
			return nil, fmt.Errorf("geocode %q: parse lon %q: %w", query, p.Lon, err)
		}
		out = append(out, ports.GeocodeCandidate{Label: p.DisplayName, Lat: lat, Lon: lon})
	}

	return out, nil
}
