package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"quick-route/internal/adapters/cache"
	"quick-route/internal/adapters/repositories"
	"quick-route/internal/config"
	"quick-route/internal/platform/db"
	"quick-route/internal/platform/obs"
	"quick-route/internal/ports"
)

// dbtool initializes the geocode cache schema and seeds it with known addresses.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found (using environment variables)")
	}
	obs.SetupLogger(config.Get("ENVIRONMENT", "development"), config.Get("LOG_LEVEL", "info"))

	backend := flag.String("backend", config.Get("GEOCODE_CACHE", "sqlite"), "geocode cache backend: sqlite or postgres")
	seedPath := flag.String("seed", config.Get("SEED_PATH", "data/seeds/geocodes.json"), "path to the geocode seed JSON")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, dialect, err := open(ctx, *backend)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open database")
	}
	defer conn.Close()

	var store ports.GeocodeCache
	if dialect == repositories.Postgres {
		store = cache.NewPostgresGeocodeCache(conn)
	} else {
		store = cache.NewSqliteGeocodeCache(conn)
	}

	if err := initAndSeed(ctx, conn, dialect, store, *seedPath); err != nil {
		log.Fatal().Err(err).Msg("init and seed failed")
	}
}

func open(ctx context.Context, backend string) (*sql.DB, repositories.Dialect, error) {
	switch backend {
	case "postgres":
		url := config.Get("DATABASE_URL", "")
		if url == "" {
			return nil, "", fmt.Errorf("DATABASE_URL is required")
		}
		conn, err := db.OpenPostgres(ctx, url)
		return conn, repositories.Postgres, err
	case "sqlite":
		conn, err := db.OpenSQLite(ctx, config.Get("DB_PATH", "data/app.db"))
		return conn, repositories.SQLite, err
	default:
		return nil, "", fmt.Errorf("backend must be sqlite or postgres, got %q", backend)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect repositories.Dialect, store ports.GeocodeCache, seedPath string) error {
	log.Info().Str("dialect", string(dialect)).Msg("initializing database schema")
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	log.Info().Msg("schema ready")

	n, err := repositories.SeedFromJSON(ctx, store, seedPath, cache.NormalizeKey)
	if err != nil {
		return fmt.Errorf("init and seed: %w", err)
	}
	log.Info().Int("addresses", n).Str("path", seedPath).Msg("seeding complete")

	return nil
}
