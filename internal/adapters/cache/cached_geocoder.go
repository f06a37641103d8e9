package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"quick-route/internal/domain"
	"quick-route/internal/platform/obs"
	"quick-route/internal/ports"
)

// CachedGeocoder layers an in-process TTL cache and an optional persistent
// store in front of a Geocoder.
//
// Lookups go memory -> store -> provider. Only successful resolutions are
// written back; "not found" and provider failures are never cached. Store
// errors are logged and treated as misses.
type CachedGeocoder struct {
	next  ports.Geocoder
	store ports.GeocodeCache
	mem   *gocache.Cache
}

func NewCachedGeocoder(next ports.Geocoder, store ports.GeocodeCache, ttl time.Duration) *CachedGeocoder {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	cleanup := 10 * time.Minute
	if ttl > 0 && ttl < cleanup {
		cleanup = ttl
	}
	return &CachedGeocoder{
		next:  next,
		store: store,
		mem:   gocache.New(ttl, cleanup),
	}
}

// NormalizeKey collapses whitespace and case so trivially different spellings share an entry.
func NormalizeKey(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	key := NormalizeKey(address)
	logger := obs.Logger(ctx)

	if v, ok := g.mem.Get(key); ok {
		return v.(domain.Coordinates), nil
	}

	if g.store != nil {
		hits, err := g.store.GetMany(ctx, []string{key})
		if err != nil {
			logger.Warn().Err(err).Str("address", key).Msg("geocode store read failed")
		} else if c, ok := hits[key]; ok {
			g.mem.SetDefault(key, c)
			return c, nil
		}
	}

	c, err := g.next.Geocode(ctx, address)
	if err != nil {
		if !errors.Is(err, domain.ErrAddressNotFound) {
			logger.Debug().Err(err).Str("address", key).Msg("geocode provider failed")
		}
		return domain.Coordinates{}, err
	}

	g.mem.SetDefault(key, c)
	if g.store != nil {
		if err := g.store.PutMany(ctx, map[string]domain.Coordinates{key: c}); err != nil {
			logger.Warn().Err(err).Str("address", key).Msg("geocode store write failed")
		}
	}
	return c, nil
}

// Flush drops the in-process layer; the persistent store is untouched.
func (g *CachedGeocoder) Flush() {
	g.mem.Flush()
}

// Len reports the number of in-process entries.
func (g *CachedGeocoder) Len() int {
	return g.mem.ItemCount()
}
