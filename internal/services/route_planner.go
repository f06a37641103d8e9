package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quick-route/internal/domain"
	"quick-route/internal/platform/obs"
	"quick-route/internal/ports"
)

// PlanRequest is the input of one "plan route" run.
// Blank entries are skipped; the first usable stop is the origin and the
// last one the final stop.
type PlanRequest struct {
	Origin        string
	Intermediates []string
	Final         string
	// Mode also becomes the planner's selected mode.
	Mode domain.TransportMode
}

type PlannerConfig struct {
	// MatrixConcurrency bounds concurrent ETA lookups (0 = one goroutine per pair).
	MatrixConcurrency int
	// LegConcurrency bounds concurrent full-route lookups (1 = sequential).
	LegConcurrency int
	EdgePrecision  float64
	DefaultMode    domain.TransportMode
}

// Snapshot is the published state of the planner.
// Plan is nil unless the latest run succeeded.
type Snapshot struct {
	RunID       string
	Stage       Stage
	FailedStage Stage
	InProgress  bool
	Mode        domain.TransportMode
	Plan        *domain.RoutePlan
	LastError   error
	UpdatedAt   time.Time
}

func (s Snapshot) Legs() []domain.RouteLeg {
	if s.Plan == nil {
		return nil
	}
	return s.Plan.Legs
}

func (s Snapshot) TotalDistanceMeters() float64 {
	if s.Plan == nil {
		return 0
	}
	return s.Plan.TotalDistanceMeters
}

func (s Snapshot) TotalDuration() time.Duration {
	if s.Plan == nil {
		return 0
	}
	return s.Plan.TotalDuration
}

// Planner sequences geocoding, matrix building, optimization and leg building,
// and publishes the outcome of the most recent run.
//
// Planner owns the ETA cache: it is cleared at the start of every run and
// whenever the transport mode changes. A newer run supersedes an older one;
// only the newest run may publish.
type Planner struct {
	geocoder   ports.Geocoder
	directions ports.DirectionsProvider
	eta        *ETACache
	cfg        PlannerConfig

	mu    sync.Mutex
	gen   uint64
	mode  domain.TransportMode
	state Snapshot
}

func NewPlanner(geocoder ports.Geocoder, directions ports.DirectionsProvider, cfg PlannerConfig) *Planner {
	if cfg.LegConcurrency < 1 {
		cfg.LegConcurrency = 1
	}
	return &Planner{
		geocoder:   geocoder,
		directions: directions,
		eta:        NewETACache(directions, cfg.EdgePrecision),
		cfg:        cfg,
		mode:       cfg.DefaultMode,
		state:      Snapshot{Stage: StageIdle, Mode: cfg.DefaultMode},
	}
}

// Mode returns the currently selected transport mode.
func (p *Planner) Mode() domain.TransportMode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// SetTransportMode selects mode for later runs. Cached travel times are
// mode-specific, so a change clears the ETA cache.
func (p *Planner) SetTransportMode(mode domain.TransportMode) error {
	if !mode.Valid() {
		return fmt.Errorf("set transport mode %d: %w", int(mode), domain.ErrValidation)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.mode != mode {
		p.mode = mode
		p.state.Mode = mode
		p.eta.Clear()
	}
	return nil
}

func (p *Planner) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ETAStats exposes the ETA cache counters of the current run.
func (p *Planner) ETAStats() ETACacheStats {
	return p.eta.Stats()
}

// Plan runs the full pipeline for req and publishes its outcome.
//
// Every failure clears any previously published plan. The returned error
// matches one of domain.ErrValidation, ErrAddressNotFound, ErrService,
// ErrNoRouteFound (ErrMatrixIncomplete is also an ErrService).
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (_ *domain.RoutePlan, err error) {
	runID := uuid.NewString()
	ctx = obs.WithRunID(ctx, runID)
	defer obs.Time(ctx, "planner.Plan")(&err)

	if err := p.SetTransportMode(req.Mode); err != nil {
		p.publishFailure(p.begin(runID, p.Mode()), StageIdle, err)
		return nil, fmt.Errorf("plan route: %w", err)
	}
	gen := p.begin(runID, req.Mode)
	logger := obs.Logger(ctx)

	stops, err := collectStops(req)
	if err != nil {
		p.publishFailure(gen, StageIdle, err)
		return nil, fmt.Errorf("plan route: %w", err)
	}
	logger.Info().Int("stops", len(stops)).Str("mode", req.Mode.String()).Msg("planning route")

	p.advance(gen, StageGeocoding)
	if err := p.geocodeStops(ctx, stops); err != nil {
		p.publishFailure(gen, StageGeocoding, err)
		return nil, fmt.Errorf("plan route: %w", err)
	}

	// Fresh travel times per run; never reuse values from an earlier mode or run.
	p.eta.Clear()

	p.advance(gen, StageMatrixBuilding)
	coords := make([]domain.Coordinates, len(stops))
	for i, s := range stops {
		coords[i] = s.Coordinates
	}
	matrix, err := BuildTimeMatrix(ctx, coords, req.Mode, p.eta, p.cfg.MatrixConcurrency)
	if err != nil {
		p.publishFailure(gen, StageMatrixBuilding, err)
		return nil, fmt.Errorf("plan route: %w", err)
	}
	stats := p.eta.Stats()
	logger.Debug().
		Uint64("eta_hits", stats.Hits).
		Uint64("eta_misses", stats.Misses).
		Uint64("eta_shared", stats.Shared).
		Msg("time matrix built")

	p.advance(gen, StageOptimizing)
	order, cost := SolveOrder(matrix)
	if math.IsInf(cost, 1) {
		err := fmt.Errorf("no finite tour through %d stops: %w", len(stops), domain.ErrNoRouteFound)
		p.publishFailure(gen, StageOptimizing, err)
		return nil, fmt.Errorf("plan route: %w", err)
	}

	p.advance(gen, StageLegBuilding)
	legs, err := BuildLegs(ctx, stops, order, req.Mode, p.directions, p.cfg.LegConcurrency)
	if err != nil {
		p.publishFailure(gen, StageLegBuilding, err)
		return nil, fmt.Errorf("plan route: %w", err)
	}

	meters, dur := SumLegs(legs)
	plan := &domain.RoutePlan{
		RunID:               runID,
		Mode:                req.Mode,
		Stops:               stops,
		Order:               order,
		Legs:                legs,
		TotalDistanceMeters: meters,
		TotalDuration:       dur,
		OptimizedCost:       time.Duration(cost * float64(time.Second)),
	}

	if p.publishSuccess(gen, plan) {
		logger.Info().
			Ints("order", order).
			Float64("distance_m", meters).
			Dur("duration", dur).
			Msg("route planned")
	}
	return plan, nil
}

// collectStops trims the inputs, drops blanks and checks stop-count limits.
func collectStops(req PlanRequest) ([]domain.Stop, error) {
	raw := make([]string, 0, len(req.Intermediates)+2)
	raw = append(raw, req.Origin)
	raw = append(raw, req.Intermediates...)
	raw = append(raw, req.Final)

	stops := make([]domain.Stop, 0, len(raw))
	for _, a := range raw {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		stops = append(stops, domain.Stop{Address: a})
	}

	if len(stops) < 2 {
		return nil, fmt.Errorf("need an origin and a final stop, got %d usable stop(s): %w", len(stops), domain.ErrValidation)
	}
	if free := len(stops) - 2; free > MaxIntermediateStops {
		return nil, fmt.Errorf("%d intermediate stops exceeds the limit of %d: %w", free, MaxIntermediateStops, domain.ErrValidation)
	}
	return stops, nil
}

// geocodeStops resolves each distinct address once, stopping at the first failure.
func (p *Planner) geocodeStops(ctx context.Context, stops []domain.Stop) (err error) {
	defer obs.Time(ctx, "planner.geocodeStops")(&err)

	resolved := make(map[string]domain.Coordinates, len(stops))
	for i := range stops {
		addr := stops[i].Address

		c, ok := resolved[addr]
		if !ok {
			c, err = p.geocoder.Geocode(ctx, addr)
			if err != nil {
				if errors.Is(err, domain.ErrAddressNotFound) {
					return fmt.Errorf("geocode %q: %w", addr, domain.ErrAddressNotFound)
				}
				var se *domain.ServiceError
				if errors.As(err, &se) {
					return err
				}
				return domain.NewServiceError("geocode", strconv.Quote(addr), err)
			}
			resolved[addr] = c
		}

		stops[i].Coordinates = c
		stops[i].Resolved = true
	}
	return nil
}

// begin starts a new generation, superseding any run in flight, and resets
// the published result.
func (p *Planner) begin(runID string, mode domain.TransportMode) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.gen++
	p.state = Snapshot{
		RunID:      runID,
		Stage:      StageIdle,
		InProgress: true,
		Mode:       mode,
		UpdatedAt:  time.Now(),
	}
	return p.gen
}

func (p *Planner) advance(gen uint64, stage Stage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		return
	}
	p.state.Stage = stage
	p.state.UpdatedAt = time.Now()
}

func (p *Planner) publishFailure(gen uint64, stage Stage, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		obs.PlanRuns.WithLabelValues("superseded").Inc()
		return
	}
	obs.PlanRuns.WithLabelValues("failed").Inc()
	obs.PlanFailures.WithLabelValues(stage.String()).Inc()

	p.state.Stage = StageFailed
	p.state.FailedStage = stage
	p.state.InProgress = false
	p.state.Plan = nil
	p.state.LastError = err
	p.state.UpdatedAt = time.Now()
}

func (p *Planner) publishSuccess(gen uint64, plan *domain.RoutePlan) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen {
		obs.PlanRuns.WithLabelValues("superseded").Inc()
		return false
	}
	obs.PlanRuns.WithLabelValues("succeeded").Inc()

	p.state.Stage = StageSucceeded
	p.state.InProgress = false
	p.state.Plan = plan
	p.state.LastError = nil
	p.state.UpdatedAt = time.Now()
	return true
}
