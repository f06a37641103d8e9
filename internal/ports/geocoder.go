package ports

import (
	"context"

	"quick-route/internal/domain"
)

// Contract for resolving a free-text address to coordinates.
type Geocoder interface {
	// Return the best match, or domain.ErrAddressNotFound when nothing matches.
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Port: a persistent address -> coordinates store shared across runs.
// Only successful lookups are stored.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
