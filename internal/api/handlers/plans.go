package handlers

import (
	"context"
	"net/http"
	"strings"

	"quick-route/internal/api/dto"
	"quick-route/internal/domain"
	"quick-route/internal/services"
)

// RoutePlanner is the slice of services.Planner the HTTP layer needs.
type RoutePlanner interface {
	Plan(ctx context.Context, req services.PlanRequest) (*domain.RoutePlan, error)
	Snapshot() services.Snapshot
	SetTransportMode(mode domain.TransportMode) error
	Mode() domain.TransportMode
}

type PlanHandler struct {
	Planner RoutePlanner
}

// Plan runs one "plan route" request and returns the optimized itinerary.
// transport_mode, when given, also becomes the planner's selected mode.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req dto.PlanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	mode := h.Planner.Mode()
	if req.TransportMode != nil && strings.TrimSpace(*req.TransportMode) != "" {
		m, err := domain.ParseTransportMode(*req.TransportMode)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		mode = m
	}

	plan, err := h.Planner.Plan(r.Context(), services.PlanRequest{
		Origin:        req.Origin,
		Intermediates: req.Stops,
		Final:         req.Destination,
		Mode:          mode,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(plan))
}

// Current returns the planner's published state.
func (h *PlanHandler) Current(w http.ResponseWriter, r *http.Request) {
	snap := h.Planner.Snapshot()

	res := dto.SnapshotResponse{
		RunID:         snap.RunID,
		Stage:         snap.Stage.String(),
		InProgress:    snap.InProgress,
		TransportMode: snap.Mode.String(),
	}
	if snap.Stage == services.StageFailed {
		res.FailedStage = snap.FailedStage.String()
	}
	if snap.LastError != nil {
		res.LastError = snap.LastError.Error()
	}
	if !snap.UpdatedAt.IsZero() {
		t := snap.UpdatedAt
		res.UpdatedAt = &t
	}
	if snap.Plan != nil {
		p := toPlanResponse(snap.Plan)
		res.Plan = &p
	}

	writeJSON(w, r, http.StatusOK, res)
}

// SetTransportMode changes the mode used by later plans.
func (h *PlanHandler) SetTransportMode(w http.ResponseWriter, r *http.Request) {
	var req dto.TransportModeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	mode, err := domain.ParseTransportMode(req.TransportMode)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Planner.SetTransportMode(mode); err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.TransportModeResponse{TransportMode: mode.String()})
}

func toPlanResponse(p *domain.RoutePlan) dto.PlanResponse {
	res := dto.PlanResponse{
		RunID:                    p.RunID,
		TransportMode:            p.Mode.String(),
		Order:                    p.Order,
		Stops:                    make([]dto.StopResponse, 0, len(p.Order)),
		Legs:                     make([]dto.LegResponse, 0, len(p.Legs)),
		TotalDistanceMeters:      p.TotalDistanceMeters,
		TotalDurationSeconds:     p.TotalDuration.Seconds(),
		OptimizedDurationSeconds: p.OptimizedCost.Seconds(),
	}

	for _, idx := range p.Order {
		s := p.Stops[idx]
		res.Stops = append(res.Stops, dto.StopResponse{
			Address: s.Address,
			Lat:     s.Coordinates.Lat,
			Lon:     s.Coordinates.Lon,
		})
	}

	for _, l := range p.Legs {
		geom := make([][]float64, 0, len(l.Geometry))
		for _, pt := range l.Geometry {
			geom = append(geom, []float64{pt.Lon(), pt.Lat()})
		}
		res.Legs = append(res.Legs, dto.LegResponse{
			From:            l.From,
			To:              l.To,
			DistanceMeters:  l.DistanceMeters,
			DurationSeconds: l.Duration.Seconds(),
			Geometry:        geom,
		})
	}

	return res
}
