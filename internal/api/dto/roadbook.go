package dto

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Coordinate accepts a JSON number or a numeric string and keeps the raw
// text so that optional stops can be dropped rather than rejected.
type Coordinate string

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*c = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Coordinate(s)
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("coordinate must be a number or a string: %w", err)
	}
	*c = Coordinate(raw)
	return nil
}

type StopRequest struct {
	Name string     `json:"name"`
	Lat  Coordinate `json:"lat"`
	Lon  Coordinate `json:"lon"`
}

type GenerateRequest struct {
	StartCity   string        `json:"start_city"`
	StartLat    Coordinate    `json:"start_lat"`
	StartLon    Coordinate    `json:"start_lon"`
	EndCity     string        `json:"end_city"`
	EndLat      Coordinate    `json:"end_lat"`
	EndLon      Coordinate    `json:"end_lon"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	Vehicle     string        `json:"vehicle"`
	RoutingMode string        `json:"routing_mode"`
	DayStart    string        `json:"day_start"`
	DayEnd      string        `json:"day_end"`
	MaxDrive    int           `json:"max_drive"`
	Stops       []StopRequest `json:"stops"`
}

type StopResponse struct {
	Kind       string  `json:"kind"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	DistanceKm float64 `json:"distance_km"`
	Label      string  `json:"label"`
}

type BlockResponse struct {
	Type string        `json:"type"`
	Text string        `json:"text"`
	Stop *StopResponse `json:"stop,omitempty"`
}

type DayResponse struct {
	Title  string          `json:"title"`
	Blocks []BlockResponse `json:"blocks"`
}

type PointResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type GenerateResponse struct {
	Title         string          `json:"title"`
	Subtitle      string          `json:"subtitle"`
	Days          []DayResponse   `json:"days"`
	VisitedPoints []PointResponse `json:"visited_points"`
	DroppedStops  int             `json:"dropped_stops"`
	PDFURL        string          `json:"pdf_url"`
	GPXURL        string          `json:"gpx_url"`
	MapURL        string          `json:"map_url"`
	ZipURL        string          `json:"zip_url"`
	InvertURL     string          `json:"invert_url"`
}

type RoutingProbeResponse struct {
	HasKey      bool    `json:"has_key"`
	KeyMasked   string  `json:"key_masked"`
	OK          bool    `json:"ok"`
	DistanceKm  float64 `json:"distance_km,omitempty"`
	DurationMin float64 `json:"duration_min,omitempty"`
	Error       string  `json:"error,omitempty"`
}
