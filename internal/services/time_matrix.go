package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"quick-route/internal/domain"
	"quick-route/internal/platform/obs"
)

// TimeMatrix is a dense n×n table of travel times in seconds.
// The diagonal is +Inf, as is any pair the provider reported unreachable.
type TimeMatrix struct {
	n     int
	cells []float64
	set   []bool
}

func NewTimeMatrix(n int) *TimeMatrix {
	m := &TimeMatrix{
		n:     n,
		cells: make([]float64, n*n),
		set:   make([]bool, n*n),
	}
	for i := range m.cells {
		m.cells[i] = math.Inf(1)
	}
	return m
}

// NewTimeMatrixFromRows builds a fully populated matrix; diagonal values are ignored.
func NewTimeMatrixFromRows(rows [][]float64) (*TimeMatrix, error) {
	n := len(rows)
	m := NewTimeMatrix(n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("time matrix: row %d length %d, want %d", i, len(row), n)
		}
		for j, v := range row {
			if i == j {
				continue
			}
			m.Set(i, j, v)
		}
	}
	return m, nil
}

func (m *TimeMatrix) Size() int { return m.n }

// At returns the travel time in seconds from i to j.
func (m *TimeMatrix) At(i, j int) float64 { return m.cells[i*m.n+j] }

// Set records the travel time from i to j. Distinct cells may be set concurrently.
func (m *TimeMatrix) Set(i, j int, seconds float64) {
	if i == j {
		return
	}
	m.cells[i*m.n+j] = seconds
	m.set[i*m.n+j] = true
}

func (m *TimeMatrix) SetDuration(i, j int, d time.Duration) {
	if d == domain.Unreachable {
		m.Set(i, j, math.Inf(1))
		return
	}
	m.Set(i, j, d.Seconds())
}

// Complete returns ErrMatrixIncomplete naming the first off-diagonal cell never set.
func (m *TimeMatrix) Complete() error {
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if i != j && !m.set[i*m.n+j] {
				return fmt.Errorf("cell %d->%d: %w", i, j, domain.ErrMatrixIncomplete)
			}
		}
	}
	return nil
}

// BuildTimeMatrix looks up every ordered pair i != j concurrently through eta.
//
// One failed lookup fails the whole build; no partial matrix is returned.
// concurrency bounds the number of lookups in flight (0 means unbounded).
func BuildTimeMatrix(
	ctx context.Context,
	coords []domain.Coordinates,
	mode domain.TransportMode,
	eta ETASource,
	concurrency int,
) (_ *TimeMatrix, err error) {
	defer obs.Time(ctx, "matrix.Build")(&err)

	n := len(coords)
	m := NewTimeMatrix(n)
	if n < 2 {
		return m, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}

				d, err := eta.GetETA(gctx, coords[i], coords[j], mode)
				if err != nil {
					var se *domain.ServiceError
					if errors.As(err, &se) {
						return err
					}
					subject := fmt.Sprintf("%d->%d (%s -> %s)", i, j, coords[i], coords[j])
					return domain.NewServiceError("estimate travel time", subject, err)
				}
				m.SetDuration(i, j, d)
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("build time matrix: %w", err)
	}

	if err := m.Complete(); err != nil {
		return nil, fmt.Errorf("build time matrix: %w", domain.NewServiceError("verify matrix", "", err))
	}

	return m, nil
}
