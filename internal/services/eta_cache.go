package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quick-route/internal/domain"
	"quick-route/internal/platform/obs"
	"quick-route/internal/ports"
)

// ETASource is the time-only lookup the matrix builder depends on.
type ETASource interface {
	GetETA(ctx context.Context, from, to domain.Coordinates, mode domain.TransportMode) (time.Duration, error)
}

// defaultLookupTimeout bounds a shared provider call once it no longer
// follows any caller's cancellation.
const defaultLookupTimeout = 30 * time.Second

type etaKey struct {
	edge domain.EdgeKey
	mode domain.TransportMode
}

// ETACacheStats describes cache activity since the last Clear.
type ETACacheStats struct {
	Hits    uint64
	Misses  uint64
	Shared  uint64
	Entries int
}

// ETACache memoizes DirectionsProvider.EstimateTravelTime by quantized edge and mode.
//
// All reads and writes of the mapping happen under one mutex. Concurrent
// misses for the same key are coalesced into a single provider call.
// Failed lookups are never stored.
type ETACache struct {
	provider      ports.DirectionsProvider
	precision     float64
	lookupTimeout time.Duration

	mu      sync.Mutex
	entries map[etaKey]time.Duration
	gen     uint64
	stats   ETACacheStats

	flights singleflight.Group
}

func NewETACache(provider ports.DirectionsProvider, precision float64) *ETACache {
	if precision <= 0 {
		precision = domain.DefaultEdgePrecision
	}
	return &ETACache{
		provider:      provider,
		precision:     precision,
		lookupTimeout: defaultLookupTimeout,
		entries:       make(map[etaKey]time.Duration),
	}
}

// GetETA returns the cached travel time for from->to, querying the provider on a miss.
func (c *ETACache) GetETA(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
	mode domain.TransportMode,
) (time.Duration, error) {
	key := etaKey{edge: domain.NewEdgeKey(from, to, c.precision), mode: mode}

	c.mu.Lock()
	if d, ok := c.entries[key]; ok {
		c.stats.Hits++
		c.mu.Unlock()
		obs.ETALookups.WithLabelValues("hit").Inc()
		return d, nil
	}
	gen := c.gen
	c.mu.Unlock()

	// The shared call outlives any single caller, so it must not inherit
	// one caller's cancellation. Each caller waits on its own ctx below.
	flightCtx := context.WithoutCancel(ctx)
	ch := c.flights.DoChan(flightKey(key, gen), func() (any, error) {
		// An earlier flight for this key may have landed after our miss.
		c.mu.Lock()
		if d, ok := c.entries[key]; ok && c.gen == gen {
			c.mu.Unlock()
			return d, nil
		}
		c.mu.Unlock()

		lookupCtx, cancel := context.WithTimeout(flightCtx, c.lookupTimeout)
		defer cancel()

		d, err := c.provider.EstimateTravelTime(lookupCtx, from, to, mode)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.stats.Misses++
		// A Clear since the lookup started means this value belongs to a
		// superseded run; hand it back to the caller without storing it.
		if c.gen == gen {
			c.entries[key] = d
		}
		c.mu.Unlock()
		return d, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		obs.ETALookups.WithLabelValues("abandoned").Inc()
		return 0, ctx.Err()
	case res = <-ch:
	}

	if res.Shared {
		c.mu.Lock()
		c.stats.Shared++
		c.mu.Unlock()
		obs.ETALookups.WithLabelValues("shared").Inc()
	} else {
		obs.ETALookups.WithLabelValues("miss").Inc()
	}
	if res.Err != nil {
		return 0, res.Err
	}

	return res.Val.(time.Duration), nil
}

// Clear drops every entry and resets the counters.
func (c *ETACache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[etaKey]time.Duration)
	c.gen++
	c.stats = ETACacheStats{}
}

func (c *ETACache) Stats() ETACacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.stats
	s.Entries = len(c.entries)
	return s
}

func flightKey(k etaKey, gen uint64) string {
	return fmt.Sprintf("%d|%d|%d,%d>%d,%d", gen, k.mode, k.edge.FromX, k.edge.FromY, k.edge.ToX, k.edge.ToY)
}
