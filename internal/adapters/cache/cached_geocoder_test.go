package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quick-route/internal/adapters/distance"
	"quick-route/internal/domain"
)

func TestCachedGeocoderLayers(t *testing.T) {
	ctx := context.Background()
	provider := distance.NewMockProvider([]distance.MockPlace{
		{Address: "Ferry Building", Coords: domain.Coordinates{Lat: 37.7955, Lon: -122.3937}},
	}, nil)
	store := newSqliteCache(t)
	g := NewCachedGeocoder(provider, store, time.Hour)

	c, err := g.Geocode(ctx, "Ferry Building")
	require.NoError(t, err)
	assert.Equal(t, 37.7955, c.Lat)

	// Different spacing and case hit the in-process layer.
	_, err = g.Geocode(ctx, "  ferry   building ")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.TotalGeocodeCalls())

	// Persistent store survives a flush of the in-process layer.
	g.Flush()
	assert.Equal(t, 0, g.Len())
	_, err = g.Geocode(ctx, "Ferry Building")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.TotalGeocodeCalls())
	assert.Equal(t, 1, g.Len())

	stored, err := store.GetMany(ctx, []string{"ferry building"})
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCachedGeocoderDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	provider := distance.NewMockProvider(nil, nil)
	g := NewCachedGeocoder(provider, nil, 0)

	_, err := g.Geocode(ctx, "Atlantis")
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
	_, err = g.Geocode(ctx, "Atlantis")
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
	assert.Equal(t, 2, provider.GeocodeCalls("Atlantis"))

	provider.GeocodeErr = errors.New("timeout")
	_, err = g.Geocode(ctx, "Atlantis")
	assert.Error(t, err)
	assert.Equal(t, 0, g.Len())
}
