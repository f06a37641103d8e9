package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog/log"

	"quick-route/internal/adapters/cache"
	"quick-route/internal/adapters/distance"
	"quick-route/internal/adapters/repositories"
	"quick-route/internal/config"
	"quick-route/internal/platform/db"
	"quick-route/internal/ports"
)

// newProviders builds the geocoder and directions adapters. When both are ORS
// they share one client so the request rate limit covers both.
func newProviders(cfg config.Config) (ports.Geocoder, ports.DirectionsProvider, error) {
	var ors *distance.ORSProvider
	getORS := func() (*distance.ORSProvider, error) {
		if ors != nil {
			return ors, nil
		}
		var err error
		ors, err = distance.NewORSProvider(cfg.ORSAPIKey, distance.ORSOptions{
			BaseURL:    cfg.ORSBaseURL,
			RatePerSec: cfg.ProviderRatePerSec,
		})
		return ors, err
	}

	var geocoder ports.Geocoder
	switch cfg.Geocoder {
	case "nominatim":
		// The public Nominatim policy allows one request per second.
		rate := cfg.ProviderRatePerSec
		if rate > 1 {
			rate = 1
		}
		geocoder = distance.NewNominatimGeocoder(cfg.NominatimBaseURL, rate, "")
	default:
		p, err := getORS()
		if err != nil {
			return nil, nil, err
		}
		geocoder = p
	}

	var directions ports.DirectionsProvider
	switch cfg.DirectionsProvider {
	case "osrm":
		directions = distance.NewOSRMProvider(cfg.OSRMBaseURL, cfg.ProviderRatePerSec)
	default:
		p, err := getORS()
		if err != nil {
			return nil, nil, err
		}
		directions = p
	}

	return geocoder, directions, nil
}

// openGeocodeStore returns the persistent geocode store for cfg.GeocodeCache,
// or nil for "memory". SQL stores get their schema and seed data on startup.
func openGeocodeStore(ctx context.Context, cfg config.Config) (ports.GeocodeCache, func(), error) {
	noop := func() {}

	switch cfg.GeocodeCache {
	case "memory":
		return nil, noop, nil

	case "redis":
		client, err := cache.DialRedis(ctx, cfg.RedisAddress, cfg.RedisPassword)
		if err != nil {
			return nil, noop, err
		}
		store := cache.NewRedisGeocodeCache(client, cfg.GeocodeCacheTTL)
		seed(ctx, store, cfg.SeedPath)
		return store, func() { _ = client.Close() }, nil

	case "postgres":
		conn, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := repositories.InitSchema(ctx, conn, repositories.Postgres); err != nil {
			conn.Close()
			return nil, noop, err
		}
		store := cache.NewPostgresGeocodeCache(conn)
		seed(ctx, store, cfg.SeedPath)
		return store, func() { _ = conn.Close() }, nil

	case "sqlite":
		conn, err := db.OpenSQLite(ctx, cfg.DBPath)
		if err != nil {
			return nil, noop, err
		}
		if err := repositories.InitSchema(ctx, conn, repositories.SQLite); err != nil {
			conn.Close()
			return nil, noop, err
		}
		store := cache.NewSqliteGeocodeCache(conn)
		seed(ctx, store, cfg.SeedPath)
		return store, func() { _ = conn.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown geocode cache %q", cfg.GeocodeCache)
	}
}

// seed preloads known addresses; a missing seed file is not an error.
func seed(ctx context.Context, store ports.GeocodeCache, path string) {
	n, err := repositories.SeedFromJSON(ctx, store, path, cache.NormalizeKey)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().Str("path", path).Msg("no geocode seed file")
	case err != nil:
		log.Warn().Err(err).Str("path", path).Msg("geocode seed failed")
	default:
		log.Info().Int("addresses", n).Str("path", path).Msg("geocode cache seeded")
	}
}
