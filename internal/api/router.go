package api

import (
	"log/slog"
	"net/http"
	"roadbook-service/internal/api/handlers"
	"roadbook-service/internal/ports"
	"roadbook-service/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps carries everything the HTTP layer needs. Router is the remote
// routing provider used by the debug probe and may be nil. Metrics, when
// set, is served on /metrics.
type Deps struct {
	Generator *services.Generator
	Geocoder  ports.Geocoder
	Router    ports.Router
	KeyHint   string
	OutputDir string
	Metrics   http.Handler
	Requests  RequestRecorder
	Checks    map[string]handlers.Checker
	Logger    *slog.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	health := &handlers.HealthHandler{Checks: d.Checks, Logger: logger}
	roadbook := &handlers.RoadbookHandler{Generator: d.Generator, Logger: logger}
	geocode := &handlers.GeocodeHandler{Geocoder: d.Geocoder, Logger: logger}
	download := &handlers.DownloadHandler{OutputDir: d.OutputDir}
	debug := &handlers.DebugHandler{Router: d.Router, KeyHint: d.KeyHint}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(logger, d.Requests))
	r.Use(middleware.Recoverer)

	r.Get("/", handlers.Index(logger))
	r.Get("/health", health.Health)
	r.Get("/geocode", geocode.Search)
	r.Post("/generate", roadbook.Generate)
	r.Get("/invert", handlers.Invert)
	r.Get("/download", download.Download)
	r.Get("/debug/routing", debug.Routing)
	r.Handle("/output/*", http.StripPrefix("/output/", http.FileServer(http.Dir(d.OutputDir))))
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	return r
}
