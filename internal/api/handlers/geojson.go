package handlers

import (
	"net/http"

	"github.com/paulmach/orb/geojson"

	"quick-route/internal/domain"
)

// CurrentGeoJSON exports the published plan as a GeoJSON FeatureCollection:
// one Point per stop in visiting order, then one LineString per leg.
func (h *PlanHandler) CurrentGeoJSON(w http.ResponseWriter, r *http.Request) {
	snap := h.Planner.Snapshot()
	if snap.Plan == nil {
		writeError(w, r, http.StatusNotFound, "no route has been planned")
		return
	}

	fc := planFeatures(snap.Plan)

	b, err := fc.MarshalJSON()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func planFeatures(p *domain.RoutePlan) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for seq, idx := range p.Order {
		s := p.Stops[idx]
		f := geojson.NewFeature(s.Coordinates.Point())
		f.Properties["kind"] = "stop"
		f.Properties["sequence"] = seq
		f.Properties["address"] = s.Address
		fc.Append(f)
	}

	for i, l := range p.Legs {
		f := geojson.NewFeature(l.Geometry)
		f.Properties["kind"] = "leg"
		f.Properties["sequence"] = i
		f.Properties["from"] = l.From
		f.Properties["to"] = l.To
		f.Properties["distance_meters"] = l.DistanceMeters
		f.Properties["duration_seconds"] = l.Duration.Seconds()
		fc.Append(f)
	}

	fc.ExtraMembers = geojson.Properties{
		"run_id":                 p.RunID,
		"transport_mode":         p.Mode.String(),
		"total_distance_meters":  p.TotalDistanceMeters,
		"total_duration_seconds": p.TotalDuration.Seconds(),
	}
	return fc
}
