package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quick-route/internal/adapters/cache"
	"quick-route/internal/adapters/distance"
	"quick-route/internal/config"
)

func TestNewProvidersSharesORS(t *testing.T) {
	cfg := config.Config{Geocoder: "ors", DirectionsProvider: "ors", ORSAPIKey: "k", ProviderRatePerSec: 5}

	g, d, err := newProviders(cfg)
	require.NoError(t, err)
	assert.Same(t, g.(*distance.ORSProvider), d.(*distance.ORSProvider))
}

func TestNewProvidersOSM(t *testing.T) {
	cfg := config.Config{Geocoder: "nominatim", DirectionsProvider: "osrm", ProviderRatePerSec: 5}

	g, d, err := newProviders(cfg)
	require.NoError(t, err)
	assert.IsType(t, &distance.NominatimGeocoder{}, g)
	assert.IsType(t, &distance.OSRMProvider{}, d)
}

func TestOpenGeocodeStore(t *testing.T) {
	ctx := context.Background()

	store, closeFn, err := openGeocodeStore(ctx, config.Config{GeocodeCache: "memory"})
	require.NoError(t, err)
	assert.Nil(t, store)
	closeFn()

	store, closeFn, err = openGeocodeStore(ctx, config.Config{GeocodeCache: "sqlite", DBPath: ":memory:", SeedPath: "does-not-exist.json"})
	require.NoError(t, err)
	assert.IsType(t, &cache.SqliteGeocodeCache{}, store)
	closeFn()

	mr := miniredis.RunT(t)
	store, closeFn, err = openGeocodeStore(ctx, config.Config{GeocodeCache: "redis", RedisAddress: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &cache.RedisGeocodeCache{}, store)
	closeFn()

	_, _, err = openGeocodeStore(ctx, config.Config{GeocodeCache: "etcd"})
	assert.Error(t, err)
}
