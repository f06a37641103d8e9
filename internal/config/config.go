package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"quick-route/internal/domain"
)

// Config is the resolved service configuration.
// Values come from the process environment, optionally primed from .env by godotenv.
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	CORSOrigins []string

	DirectionsProvider string
	Geocoder           string
	ORSAPIKey          string
	ORSBaseURL         string
	OSRMBaseURL        string
	NominatimBaseURL   string
	ProviderRatePerSec float64

	GeocodeCache    string
	GeocodeCacheTTL time.Duration
	DBPath          string
	DatabaseURL     string
	RedisAddress    string
	RedisPassword   string
	SeedPath        string

	MatrixConcurrency int
	LegConcurrency    int
	EdgePrecision     float64
	DefaultMode       domain.TransportMode
}

// Get returns the environment value for key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config %s: parse int %q: %w", key, v, err)
	}
	return n, nil
}

func GetFloat(key string, fallback float64) (float64, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config %s: parse float %q: %w", key, v, err)
	}
	return f, nil
}

func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config %s: parse duration %q: %w", key, v, err)
	}
	return d, nil
}

// Load reads and validates the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:               Get("PORT", "8080"),
		Environment:        Get("ENVIRONMENT", "production"),
		LogLevel:           Get("LOG_LEVEL", "info"),
		CORSOrigins:        splitList(Get("CORS_ALLOWED_ORIGINS", "*")),
		DirectionsProvider: strings.ToLower(Get("DIRECTIONS_PROVIDER", "ors")),
		Geocoder:           strings.ToLower(Get("GEOCODER", "ors")),
		ORSAPIKey:          os.Getenv("ORS_API_KEY"),
		ORSBaseURL:         Get("ORS_BASE_URL", "https://api.openrouteservice.org"),
		OSRMBaseURL:        Get("OSRM_BASE_URL", "https://router.project-osrm.org"),
		NominatimBaseURL:   Get("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		GeocodeCache:       strings.ToLower(Get("GEOCODE_CACHE", "sqlite")),
		DBPath:             Get("DB_PATH", "data/app.db"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisAddress:       Get("REDIS_ADDRESS", ""),
		RedisPassword:      trimOptionalQuotes(os.Getenv("REDIS_PASSWORD")),
		SeedPath:           Get("SEED_PATH", "data/seeds/geocodes.json"),
	}

	var err error
	if cfg.ProviderRatePerSec, err = GetFloat("PROVIDER_RATE_PER_SEC", 5); err != nil {
		return Config{}, err
	}
	if cfg.GeocodeCacheTTL, err = GetDuration("GEOCODE_CACHE_TTL", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.MatrixConcurrency, err = GetInt("MATRIX_CONCURRENCY", 8); err != nil {
		return Config{}, err
	}
	if cfg.LegConcurrency, err = GetInt("LEG_CONCURRENCY", 1); err != nil {
		return Config{}, err
	}
	if cfg.EdgePrecision, err = GetFloat("EDGE_PRECISION", domain.DefaultEdgePrecision); err != nil {
		return Config{}, err
	}
	if cfg.DefaultMode, err = domain.ParseTransportMode(Get("DEFAULT_TRANSPORT_MODE", "automobile")); err != nil {
		return Config{}, fmt.Errorf("config DEFAULT_TRANSPORT_MODE: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error

	switch c.DirectionsProvider {
	case "ors", "osrm":
	default:
		errs = append(errs, fmt.Errorf("DIRECTIONS_PROVIDER must be ors or osrm, got %q", c.DirectionsProvider))
	}
	switch c.Geocoder {
	case "ors", "nominatim":
	default:
		errs = append(errs, fmt.Errorf("GEOCODER must be ors or nominatim, got %q", c.Geocoder))
	}
	if (c.DirectionsProvider == "ors" || c.Geocoder == "ors") && strings.TrimSpace(c.ORSAPIKey) == "" {
		errs = append(errs, errors.New("ORS_API_KEY is required when ORS is used"))
	}

	switch c.GeocodeCache {
	case "memory", "sqlite":
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for GEOCODE_CACHE=postgres"))
		}
	case "redis":
		if c.RedisAddress == "" {
			errs = append(errs, errors.New("REDIS_ADDRESS is required for GEOCODE_CACHE=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("GEOCODE_CACHE must be memory, sqlite, postgres or redis, got %q", c.GeocodeCache))
	}

	if c.ProviderRatePerSec <= 0 {
		errs = append(errs, errors.New("PROVIDER_RATE_PER_SEC must be positive"))
	}
	if c.MatrixConcurrency < 1 || c.LegConcurrency < 1 {
		errs = append(errs, errors.New("MATRIX_CONCURRENCY and LEG_CONCURRENCY must be at least 1"))
	}
	if c.EdgePrecision <= 0 {
		errs = append(errs, errors.New("EDGE_PRECISION must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// trimOptionalQuotes strips one pair of surrounding quotes left by .env files.
func trimOptionalQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// splitList parses a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
