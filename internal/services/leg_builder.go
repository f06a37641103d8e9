package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"quick-route/internal/domain"
	"quick-route/internal/platform/obs"
	"quick-route/internal/ports"
)

// BuildLegs resolves each consecutive pair of order into a full RouteLeg.
//
// Legs are returned in tour order regardless of completion order. The first
// missing route or provider failure cancels the remaining lookups and no
// legs are returned. concurrency <= 1 queries the provider one leg at a time.
func BuildLegs(
	ctx context.Context,
	stops []domain.Stop,
	order []int,
	mode domain.TransportMode,
	directions ports.DirectionsProvider,
	concurrency int,
) (_ []domain.RouteLeg, err error) {
	defer obs.Time(ctx, "legs.Build")(&err)

	if err := validateOrder(order, len(stops)); err != nil {
		return nil, fmt.Errorf("build legs: %w", err)
	}
	if len(order) < 2 {
		return []domain.RouteLeg{}, nil
	}

	legs := make([]domain.RouteLeg, len(order)-1)

	g, gctx := errgroup.WithContext(ctx)
	if concurrency < 1 {
		concurrency = 1
	}
	g.SetLimit(concurrency)

	for i := 0; i+1 < len(order); i++ {
		from := stops[order[i]]
		to := stops[order[i+1]]

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if !from.Resolved || !to.Resolved {
				return fmt.Errorf("leg %d: unresolved stop %q -> %q", i, from.Address, to.Address)
			}

			path, err := directions.ComputeRoute(gctx, from.Coordinates, to.Coordinates, mode)
			if err != nil {
				if errors.Is(err, domain.ErrNoRouteFound) {
					return fmt.Errorf("leg %d %q -> %q: %w", i, from.Address, to.Address, domain.ErrNoRouteFound)
				}
				var se *domain.ServiceError
				if errors.As(err, &se) {
					return err
				}
				subject := strconv.Quote(from.Address) + " -> " + strconv.Quote(to.Address)
				return domain.NewServiceError("compute route", subject, err)
			}

			legs[i] = domain.RouteLeg{
				From:            from.Address,
				To:              to.Address,
				FromCoordinates: from.Coordinates,
				ToCoordinates:   to.Coordinates,
				Geometry:        path.Geometry,
				DistanceMeters:  path.DistanceMeters,
				Duration:        path.Duration,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build legs: %w", err)
	}

	return legs, nil
}

// SumLegs aggregates total distance and duration across legs.
func SumLegs(legs []domain.RouteLeg) (float64, time.Duration) {
	var meters float64
	var dur time.Duration
	for _, l := range legs {
		meters += l.DistanceMeters
		dur += l.Duration
	}
	return meters, dur
}

// validateOrder checks order is a permutation of 0..n-1 from 0 to n-1.
func validateOrder(order []int, n int) error {
	if len(order) != n {
		return fmt.Errorf("order has %d entries for %d stops", len(order), n)
	}
	if n == 0 {
		return nil
	}
	if order[0] != 0 || order[n-1] != n-1 {
		return fmt.Errorf("order must start at 0 and end at %d, got %v", n-1, order)
	}
	seen := make([]bool, n)
	for _, idx := range order {
		if idx < 0 || idx >= n || seen[idx] {
			return fmt.Errorf("order %v is not a permutation of 0..%d", order, n-1)
		}
		seen[idx] = true
	}
	return nil
}
