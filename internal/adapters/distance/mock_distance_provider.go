package distance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/paulmach/orb"

	"quick-route/internal/domain"
)

// MockPlace pins an address to fixed coordinates.
type MockPlace struct {
	Address string
	Coords  domain.Coordinates
}

// MockPair describes the directed travel between two known addresses.
// A zero Seconds with NoRoute set reports the pair as unreachable.
type MockPair struct {
	From, To string
	Meters   float64
	Seconds  float64
	NoRoute  bool
}

// MockProvider is an in-memory Geocoder and DirectionsProvider that counts calls.
type MockProvider struct {
	places map[string]domain.Coordinates
	byPos  map[string]string
	pairs  map[string]MockPair

	mu           sync.Mutex
	geocodeCalls map[string]int
	etaCalls     int
	routeCalls   int

	// Optional failure injection.
	GeocodeErr error
	ETAErr     error
	RouteErr   error
	// ETADelay slows every EstimateTravelTime call; used to exercise coalescing.
	ETADelay time.Duration
}

func NewMockProvider(places []MockPlace, pairs []MockPair) *MockProvider {
	p := &MockProvider{
		places:       make(map[string]domain.Coordinates, len(places)),
		byPos:        make(map[string]string, len(places)),
		pairs:        make(map[string]MockPair, len(pairs)),
		geocodeCalls: make(map[string]int),
	}
	for _, pl := range places {
		p.places[pl.Address] = pl.Coords
		p.byPos[pl.Coords.String()] = pl.Address
	}
	for _, pr := range pairs {
		p.pairs[pr.From+"|"+pr.To] = pr
	}
	return p
}

func (p *MockProvider) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	p.mu.Lock()
	p.geocodeCalls[address]++
	p.mu.Unlock()

	if p.GeocodeErr != nil {
		return domain.Coordinates{}, p.GeocodeErr
	}
	c, ok := p.places[address]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("mock geocode %q: %w", address, domain.ErrAddressNotFound)
	}
	return c, nil
}

func (p *MockProvider) EstimateTravelTime(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
	mode domain.TransportMode,
) (time.Duration, error) {
	p.mu.Lock()
	p.etaCalls++
	p.mu.Unlock()

	if p.ETADelay > 0 {
		select {
		case <-time.After(p.ETADelay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	if p.ETAErr != nil {
		return 0, p.ETAErr
	}

	pair, err := p.lookup(from, to)
	if err != nil {
		return 0, err
	}
	if pair.NoRoute {
		return domain.Unreachable, nil
	}
	return seconds(pair.Seconds), nil
}

func (p *MockProvider) ComputeRoute(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
	mode domain.TransportMode,
) (domain.RoutePath, error) {
	p.mu.Lock()
	p.routeCalls++
	p.mu.Unlock()

	if p.RouteErr != nil {
		return domain.RoutePath{}, p.RouteErr
	}

	pair, err := p.lookup(from, to)
	if err != nil {
		return domain.RoutePath{}, err
	}
	if pair.NoRoute {
		return domain.RoutePath{}, fmt.Errorf("mock route %q -> %q: %w", pair.From, pair.To, domain.ErrNoRouteFound)
	}

	return domain.RoutePath{
		Geometry:       orb.LineString{from.Point(), to.Point()},
		DistanceMeters: pair.Meters,
		Duration:       seconds(pair.Seconds),
	}, nil
}

func (p *MockProvider) lookup(from, to domain.Coordinates) (MockPair, error) {
	a, okA := p.byPos[from.String()]
	b, okB := p.byPos[to.String()]
	if !okA || !okB {
		return MockPair{}, fmt.Errorf("mock: unknown position %s -> %s", from, to)
	}
	pair, ok := p.pairs[a+"|"+b]
	if !ok {
		return MockPair{}, fmt.Errorf("mock: missing pair %q -> %q", a, b)
	}
	return pair, nil
}

// GeocodeCalls returns how often address was geocoded.
func (p *MockProvider) GeocodeCalls(address string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.geocodeCalls[address]
}

// TotalGeocodeCalls returns the number of Geocode calls for all addresses.
func (p *MockProvider) TotalGeocodeCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.geocodeCalls {
		n += c
	}
	return n
}

func (p *MockProvider) ETACalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.etaCalls
}

func (p *MockProvider) RouteCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.routeCalls
}

// TotalCalls sums every adapter call made so far.
func (p *MockProvider) TotalCalls() int {
	return p.TotalGeocodeCalls() + p.ETACalls() + p.RouteCalls()
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
