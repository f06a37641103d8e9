package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quick-route/internal/adapters/distance"
	"quick-route/internal/domain"
)

func newETAFixture() (*distance.MockProvider, []domain.Coordinates) {
	places := line("A", "B")
	provider := distance.NewMockProvider(places, allPairs([]string{"A", "B"}, 120, nil))
	return provider, coordsOf(places)
}

func TestETACacheIdenticalLookupsCallProviderOnce(t *testing.T) {
	provider, c := newETAFixture()
	cache := NewETACache(provider, 0)
	ctx := context.Background()

	d1, err := cache.GetETA(ctx, c[0], c[1], domain.Automobile)
	require.NoError(t, err)
	d2, err := cache.GetETA(ctx, c[0], c[1], domain.Automobile)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, d1)
	assert.Equal(t, d1, d2)
	assert.Equal(t, 1, provider.ETACalls())

	stats := cache.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestETACacheSameCellSharesEntry(t *testing.T) {
	provider, c := newETAFixture()
	cache := NewETACache(provider, 0)
	ctx := context.Background()

	_, err := cache.GetETA(ctx, c[0], c[1], domain.Automobile)
	require.NoError(t, err)

	// Rounds to the same 1e-4 cell as c[0].
	nudged := domain.Coordinates{Lat: c[0].Lat + 0.00002, Lon: c[0].Lon - 0.00002}
	d, err := cache.GetETA(ctx, nudged, c[1], domain.Automobile)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, d)
	assert.Equal(t, 1, provider.ETACalls())
}

func TestETACacheKeysAreDirectionalAndPerMode(t *testing.T) {
	provider, c := newETAFixture()
	cache := NewETACache(provider, 0)
	ctx := context.Background()

	_, err := cache.GetETA(ctx, c[0], c[1], domain.Automobile)
	require.NoError(t, err)
	_, err = cache.GetETA(ctx, c[1], c[0], domain.Automobile)
	require.NoError(t, err)
	_, err = cache.GetETA(ctx, c[0], c[1], domain.Walking)
	require.NoError(t, err)

	assert.Equal(t, 3, provider.ETACalls())
	assert.Equal(t, 3, cache.Stats().Entries)
}

func TestETACacheClear(t *testing.T) {
	provider, c := newETAFixture()
	cache := NewETACache(provider, 0)
	ctx := context.Background()

	_, err := cache.GetETA(ctx, c[0], c[1], domain.Automobile)
	require.NoError(t, err)

	cache.Clear()
	assert.Equal(t, ETACacheStats{}, cache.Stats())

	_, err = cache.GetETA(ctx, c[0], c[1], domain.Automobile)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.ETACalls())
}

func TestETACacheDoesNotStoreFailures(t *testing.T) {
	provider, c := newETAFixture()
	provider.ETAErr = errors.New("upstream unavailable")
	cache := NewETACache(provider, 0)
	ctx := context.Background()

	_, err := cache.GetETA(ctx, c[0], c[1], domain.Automobile)
	require.Error(t, err)
	_, err = cache.GetETA(ctx, c[0], c[1], domain.Automobile)
	require.Error(t, err)

	assert.Equal(t, 2, provider.ETACalls())
	assert.Equal(t, 0, cache.Stats().Entries)
}

func TestETACacheCoalescesConcurrentMisses(t *testing.T) {
	provider, c := newETAFixture()
	provider.ETADelay = 50 * time.Millisecond
	cache := NewETACache(provider, 0)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	results := make([]time.Duration, workers)
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = cache.GetETA(ctx, c[0], c[1], domain.Automobile)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, 2*time.Minute, results[i])
	}
	assert.Equal(t, 1, provider.ETACalls())
}

func TestETACacheCancelledCallerLeavesSharedLookupRunning(t *testing.T) {
	provider, c := newETAFixture()
	provider.ETADelay = 100 * time.Millisecond
	cache := NewETACache(provider, 0)

	first, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()
	firstErr := make(chan error, 1)
	go func() {
		_, err := cache.GetETA(first, c[0], c[1], domain.Automobile)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return provider.ETACalls() == 1 }, time.Second, time.Millisecond)

	type result struct {
		d   time.Duration
		err error
	}
	second := make(chan result, 1)
	go func() {
		d, err := cache.GetETA(context.Background(), c[0], c[1], domain.Automobile)
		second <- result{d, err}
	}()
	// Give the second caller time to join the pending lookup.
	time.Sleep(10 * time.Millisecond)
	cancelFirst()

	assert.ErrorIs(t, <-firstErr, context.Canceled)

	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, 2*time.Minute, got.d)
	assert.Equal(t, 1, provider.ETACalls())
	assert.Equal(t, 1, cache.Stats().Entries)
}

func TestETACacheClearDuringLookupDropsLateValue(t *testing.T) {
	provider, c := newETAFixture()
	provider.ETADelay = 50 * time.Millisecond
	cache := NewETACache(provider, 0)
	ctx := context.Background()

	type result struct {
		d   time.Duration
		err error
	}
	pending := make(chan result, 1)
	go func() {
		d, err := cache.GetETA(ctx, c[0], c[1], domain.Automobile)
		pending <- result{d, err}
	}()
	require.Eventually(t, func() bool { return provider.ETACalls() == 1 }, time.Second, time.Millisecond)

	cache.Clear()

	got := <-pending
	require.NoError(t, got.err)
	assert.Equal(t, 2*time.Minute, got.d)
	assert.Equal(t, 0, cache.Stats().Entries)

	// The next lookup starts from an empty cache.
	_, err := cache.GetETA(ctx, c[0], c[1], domain.Automobile)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.ETACalls())
	assert.Equal(t, 1, cache.Stats().Entries)
}
