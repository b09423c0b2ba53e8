package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	CacheNone     = "none"
	CachePostgres = "postgres"
	CacheRedis    = "redis"
)

type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	OutputDir      string        `env:"OUTPUT_DIR" envDefault:"output"`
	ORSAPIKey      string        `env:"ORS_API_KEY"`
	ORSBaseURL     string        `env:"ORS_BASE_URL" envDefault:"https://api.openrouteservice.org"`
	RoutingTimeout time.Duration `env:"ROUTING_TIMEOUT" envDefault:"30s"`
	NominatimURL   string        `env:"NOMINATIM_URL" envDefault:"https://nominatim.openstreetmap.org/search"`
	CacheBackend   string        `env:"CACHE_BACKEND" envDefault:"none"`
	DatabaseURL    string        `env:"DATABASE_URL"`
	RedisURL       string        `env:"REDIS_URL"`
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"720h"`
	DayConcurrency int           `env:"DAY_CONCURRENCY" envDefault:"4"`
	LogLevel       slog.Level    `env:"LOG_LEVEL" envDefault:"INFO"`
	TracingEnabled bool          `env:"TRACING_ENABLED" envDefault:"false"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFrom parses an explicit environment map instead of the process
// environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.CacheBackend = strings.ToLower(strings.TrimSpace(c.CacheBackend))

	switch c.CacheBackend {
	case CacheNone:
	case CachePostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("config: DATABASE_URL is required when CACHE_BACKEND=postgres")
		}
	case CacheRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return errors.New("config: REDIS_URL is required when CACHE_BACKEND=redis")
		}
	default:
		return fmt.Errorf("config: unknown CACHE_BACKEND %q (want none, postgres or redis)", c.CacheBackend)
	}

	if c.RoutingTimeout <= 0 {
		return fmt.Errorf("config: ROUTING_TIMEOUT must be positive, got %s", c.RoutingTimeout)
	}
	if c.DayConcurrency < 1 {
		return fmt.Errorf("config: DAY_CONCURRENCY must be at least 1, got %d", c.DayConcurrency)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
