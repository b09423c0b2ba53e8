package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"roadbook-service/internal/adapters/cache"
	"roadbook-service/internal/adapters/geocode"
	"roadbook-service/internal/adapters/render"
	"roadbook-service/internal/adapters/routing"
	"roadbook-service/internal/api"
	"roadbook-service/internal/api/handlers"
	"roadbook-service/internal/config"
	"roadbook-service/internal/platform/db"
	"roadbook-service/internal/platform/metrics"
	"roadbook-service/internal/platform/obs"
	"roadbook-service/internal/ports"
	"roadbook-service/internal/services"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires concrete adapters (ORS, Nominatim, caches, renderers) behind ports and starts the HTTP server.
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("no .env file found (using environment variables)")
	}

	shutdownTracing, err := obs.InitTracing(ctx, obs.TracingConfig{Enabled: cfg.TracingEnabled}, logger)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer obs.ShutdownWithTimeout(context.Background(), shutdownTracing, logger)

	collector, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	caches, closeCaches, err := openCaches(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCaches()

	// --- Routing chain: ORS -> cache -> haversine fallback ---
	var remote ports.Router
	keyHint := ""
	if cfg.ORSAPIKey != "" {
		ors, err := routing.NewORSRouter(cfg.ORSAPIKey, cfg.ORSBaseURL, cfg.RoutingTimeout)
		if err != nil {
			return fmt.Errorf("creating routing provider: %w", err)
		}
		keyHint = ors.KeyHint()
		remote = ors
		logger.Info("routing provider configured", "provider", "openrouteservice", "key", keyHint)
	}

	probe := remote
	if remote != nil && caches.routes != nil {
		remote = routing.NewCachedRouter(remote, caches.routes, logger, collector)
	}
	estimator := routing.NewFallbackEstimator(remote, cfg.RoutingTimeout, logger, collector)

	geocoder := geocode.NewNominatim(cfg.NominatimURL, 10*time.Second, caches.geocode, logger)

	assembler := services.NewAssembler(estimator, cfg.DayConcurrency, logger)
	generator := services.NewGenerator(assembler, render.NewBundle(cfg.OutputDir), collector)

	router := api.NewRouter(api.Deps{
		Generator: generator,
		Geocoder:  geocoder,
		Router:    probe,
		KeyHint:   keyHint,
		OutputDir: cfg.OutputDir,
		Metrics:   collector.Handler(),
		Requests:  collector,
		Checks:    caches.checks,
		Logger:    logger,
	})

	// Timeouts are tuned for cold-cache generation (external API latency).
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", srv.Addr, "output_dir", cfg.OutputDir, "cache", cfg.CacheBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type cacheSet struct {
	routes  ports.RouteCache
	geocode ports.GeocodeCache
	checks  map[string]handlers.Checker
}

// openCaches connects the configured cache backend. With CACHE_BACKEND=none
// every field stays nil and lookups always go upstream.
func openCaches(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cacheSet, func(), error) {
	switch cfg.CacheBackend {
	case config.CachePostgres:
		sqlDB, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return cacheSet{}, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := cache.InitSchema(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return cacheSet{}, nil, fmt.Errorf("initializing cache schema: %w", err)
		}
		logger.Info("connected to postgres cache")
		return cacheSet{
			routes:  cache.NewSQLRouteCache(sqlDB, cfg.CacheTTL),
			geocode: cache.NewSQLGeocodeCache(sqlDB),
			checks:  map[string]handlers.Checker{"postgres": dbChecker{sqlDB}},
		}, func() { sqlDB.Close() }, nil

	case config.CacheRedis:
		rdb, err := cache.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return cacheSet{}, nil, fmt.Errorf("connecting to redis: %w", err)
		}
		rc := cache.NewRedisCache(rdb, cfg.CacheTTL)
		logger.Info("connected to redis cache")
		return cacheSet{
			routes:  rc,
			geocode: rc,
			checks:  map[string]handlers.Checker{"redis": rc},
		}, func() { rdb.Close() }, nil
	}

	return cacheSet{}, func() {}, nil
}

// dbChecker adapts *sql.DB to handlers.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }
