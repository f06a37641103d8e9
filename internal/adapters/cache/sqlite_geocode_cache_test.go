package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quick-route/internal/domain"
	"quick-route/internal/platform/db"
)

const testSchema = `
CREATE TABLE geocode_cache (
    address TEXT PRIMARY KEY,
    lon REAL NOT NULL,
    lat REAL NOT NULL,
    cached_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

func newSqliteCache(t *testing.T) *SqliteGeocodeCache {
	t.Helper()
	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Exec(testSchema)
	require.NoError(t, err)
	return NewSqliteGeocodeCache(conn)
}

func TestSqliteGeocodeCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newSqliteCache(t)

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{
		"a": {Lat: 1.5, Lon: 2.5},
		"b": {Lat: -3, Lon: 4},
	}))
	// Overwrite wins.
	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{"a": {Lat: 9, Lon: 9}}))

	got, err := c.GetMany(ctx, []string{"a", " a ", "b", "c", ""})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{
		"a": {Lat: 9, Lon: 9},
		"b": {Lat: -3, Lon: 4},
	}, got)
}

func TestSqliteGeocodeCacheEmptyInputs(t *testing.T) {
	ctx := context.Background()
	c := newSqliteCache(t)

	got, err := c.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, c.PutMany(ctx, nil))
	assert.Error(t, c.PutMany(ctx, map[string]domain.Coordinates{"  ": {}}))
}

func TestSqliteGeocodeCacheNilDB(t *testing.T) {
	_, err := NewSqliteGeocodeCache(nil).GetMany(context.Background(), []string{"a"})
	assert.Error(t, err)
}
