package ports

import (
	"context"
	"time"

	"quick-route/internal/domain"
)

// Contract for travel-time estimates and full paths between coordinates.
type DirectionsProvider interface {
	// Return a best-effort travel time; domain.Unreachable when the provider
	// knows of no path.
	EstimateTravelTime(ctx context.Context, from, to domain.Coordinates, mode domain.TransportMode) (time.Duration, error)
	// Return the full path between two points, or domain.ErrNoRouteFound.
	ComputeRoute(ctx context.Context, from, to domain.Coordinates, mode domain.TransportMode) (domain.RoutePath, error)
}
