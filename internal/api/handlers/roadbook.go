package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"roadbook-service/internal/api/dto"
	"roadbook-service/internal/platform/obs"
	"roadbook-service/internal/services"
	"strconv"
	"strings"
)

const maxBodyBytes = 1 << 20

type RoadbookHandler struct {
	Generator *services.Generator
	Logger    *slog.Logger
}

// Generate accepts either a JSON body or the HTML form, schedules the
// roadbook and returns the itinerary with links to its files.
func (h *RoadbookHandler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	var (
		req services.RoadbookRequest
		ok  bool
	)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		req, ok = h.decodeForm(w, r)
	default:
		req, ok = h.decodeJSON(w, r)
	}
	if !ok {
		return
	}

	cfg, dropped, err := services.BuildRoadbook(req)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}
	if dropped > 0 {
		h.Logger.DebugContext(r.Context(), "dropped invalid optional stops",
			"req_id", obs.RequestID(r.Context()),
			"dropped", dropped,
		)
	}

	rb, err := h.Generator.Generate(r.Context(), cfg)
	if err != nil {
		writeServiceError(w, r, h.Logger, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toGenerateResponse(rb, req, dropped))
}

func (h *RoadbookHandler) decodeJSON(w http.ResponseWriter, r *http.Request) (services.RoadbookRequest, bool) {
	var body dto.GenerateRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return services.RoadbookRequest{}, false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return services.RoadbookRequest{}, false
	}

	req := services.RoadbookRequest{
		StartCity:   body.StartCity,
		StartLat:    string(body.StartLat),
		StartLon:    string(body.StartLon),
		EndCity:     body.EndCity,
		EndLat:      string(body.EndLat),
		EndLon:      string(body.EndLon),
		StartDate:   body.StartDate,
		EndDate:     body.EndDate,
		Vehicle:     body.Vehicle,
		RoutingMode: body.RoutingMode,
		DayStart:    body.DayStart,
		DayEnd:      body.DayEnd,
		MaxDriveMin: body.MaxDrive,
	}
	for _, s := range body.Stops {
		req.Stops = append(req.Stops, services.StopInput{Name: s.Name, Lat: string(s.Lat), Lon: string(s.Lon)})
	}
	return req, true
}

func (h *RoadbookHandler) decodeForm(w http.ResponseWriter, r *http.Request) (services.RoadbookRequest, bool) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && err != http.ErrNotMultipart {
		writeError(w, r, http.StatusBadRequest, "invalid form body")
		return services.RoadbookRequest{}, false
	}

	f := r.PostForm
	req := services.RoadbookRequest{
		StartCity:   f.Get("start_city"),
		StartLat:    f.Get("start_lat"),
		StartLon:    f.Get("start_lon"),
		EndCity:     f.Get("end_city"),
		EndLat:      f.Get("end_lat"),
		EndLon:      f.Get("end_lon"),
		StartDate:   f.Get("start_date"),
		EndDate:     f.Get("end_date"),
		Vehicle:     f.Get("vehicle"),
		RoutingMode: f.Get("routing_mode"),
		DayStart:    f.Get("day_start"),
		DayEnd:      f.Get("day_end"),
	}

	if v := strings.TrimSpace(f.Get("max_drive")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": "max_drive must be an integer", "field": "max_drive"})
			return services.RoadbookRequest{}, false
		}
		req.MaxDriveMin = n
	}

	names, lats, lons := f["stop_name"], f["stop_lat"], f["stop_lon"]
	n := min(len(names), len(lats), len(lons))
	for i := 0; i < n; i++ {
		req.Stops = append(req.Stops, services.StopInput{Name: names[i], Lat: lats[i], Lon: lons[i]})
	}

	return req, true
}

func toGenerateResponse(rb *services.Roadbook, req services.RoadbookRequest, dropped int) dto.GenerateResponse {
	it := rb.Itinerary
	res := dto.GenerateResponse{
		Title:         it.Title,
		Subtitle:      it.Subtitle,
		Days:          make([]dto.DayResponse, 0, len(it.Days)),
		VisitedPoints: make([]dto.PointResponse, 0, len(it.VisitedPoints)),
		DroppedStops:  dropped,
		PDFURL:        outputURL(rb.Artifacts.PDF),
		GPXURL:        outputURL(rb.Artifacts.GPX),
		MapURL:        outputURL(rb.Artifacts.Map),
		ZipURL:        "/download?" + url.Values{"path": {filepath.Base(rb.Artifacts.Zip)}}.Encode(),
		InvertURL:     "/invert?" + tripQuery(req.StartCity, req.StartLat, req.StartLon, req.EndCity, req.EndLat, req.EndLon).Encode(),
	}

	for _, d := range it.Days {
		day := dto.DayResponse{Title: d.Title, Blocks: make([]dto.BlockResponse, 0, len(d.Blocks))}
		for _, b := range d.Blocks {
			block := dto.BlockResponse{Type: string(b.Type), Text: b.Text}
			if b.Stop != nil {
				block.Stop = &dto.StopResponse{
					Kind:       string(b.Stop.Kind),
					Start:      b.Stop.Start.HHMM(),
					End:        b.Stop.End.HHMM(),
					DistanceKm: b.Stop.DistanceKm,
					Label:      b.Stop.Label,
				}
			}
			day.Blocks = append(day.Blocks, block)
		}
		res.Days = append(res.Days, day)
	}

	for _, p := range it.VisitedPoints {
		res.VisitedPoints = append(res.VisitedPoints, dto.PointResponse{Name: p.Name, Lat: p.Lat, Lon: p.Lon})
	}

	return res
}

func outputURL(path string) string {
	return "/output/" + url.PathEscape(filepath.Base(path))
}

func tripQuery(startCity, startLat, startLon, endCity, endLat, endLon string) url.Values {
	return url.Values{
		"start_city": {strings.TrimSpace(startCity)},
		"start_lat":  {strings.TrimSpace(startLat)},
		"start_lon":  {strings.TrimSpace(startLon)},
		"end_city":   {strings.TrimSpace(endCity)},
		"end_lat":    {strings.TrimSpace(endLat)},
		"end_lon":    {strings.TrimSpace(endLon)},
	}
}
