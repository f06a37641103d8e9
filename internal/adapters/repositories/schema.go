package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"quick-route/internal/domain"
	"quick-route/internal/ports"
)

// Dialect selects the SQL flavor of the schema.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

var schemas = map[Dialect][]string{
	SQLite: {
		`
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon REAL NOT NULL,
        lat REAL NOT NULL,
        cached_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    );
	`,
	},
	Postgres: {
		`
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon DOUBLE PRECISION NOT NULL,
        lat DOUBLE PRECISION NOT NULL,
        cached_at TIMESTAMPTZ NOT NULL DEFAULT now()
    );
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_geocode_cache_cached_at
    ON geocode_cache(cached_at);
	`,
	},
}

// InitSchema creates the geocode cache tables for dialect.
func InitSchema(ctx context.Context, db *sql.DB, dialect Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	statements, ok := schemas[dialect]
	if !ok {
		return fmt.Errorf("init schema: unknown dialect %q", dialect)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type GeocodeSeed struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// SeedFromJSON loads known address coordinates from a JSON file into store.
// keyFn maps each address to the store key; nil keeps addresses as written.
func SeedFromJSON(ctx context.Context, store ports.GeocodeCache, jsonPath string, keyFn func(string) string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed geocodes: read %q: %w", jsonPath, err)
	}

	var data []GeocodeSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed geocodes: parse json: %w", err)
	}

	rows := make(map[string]domain.Coordinates, len(data))
	for i, item := range data {
		addr := strings.TrimSpace(item.Address)
		if addr == "" {
			return 0, fmt.Errorf("seed geocodes: item at index %d: address cannot be empty", i+1)
		}

		c := domain.Coordinates{Lat: item.Lat, Lon: item.Lon}
		if !c.Valid() {
			return 0, fmt.Errorf("seed geocodes: item at index %d: coordinates %s out of range", i+1, c)
		}

		if keyFn != nil {
			addr = keyFn(addr)
		}
		rows[addr] = c
	}

	if err := store.PutMany(ctx, rows); err != nil {
		return 0, fmt.Errorf("seed geocodes: %w", err)
	}

	return len(rows), nil
}
