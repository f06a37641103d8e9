package dto

import "time"

type PlanRequest struct {
	Origin        string   `json:"origin"`
	Stops         []string `json:"stops"`
	Destination   string   `json:"destination"`
	TransportMode *string  `json:"transport_mode"`
}

type StopResponse struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type LegResponse struct {
	From            string      `json:"from"`
	To              string      `json:"to"`
	DistanceMeters  float64     `json:"distance_meters"`
	DurationSeconds float64     `json:"duration_seconds"`
	Geometry        [][]float64 `json:"geometry"`
}

type PlanResponse struct {
	RunID                    string         `json:"run_id"`
	TransportMode            string         `json:"transport_mode"`
	Order                    []int          `json:"order"`
	Stops                    []StopResponse `json:"stops"`
	Legs                     []LegResponse  `json:"legs"`
	TotalDistanceMeters      float64        `json:"total_distance_meters"`
	TotalDurationSeconds     float64        `json:"total_duration_seconds"`
	OptimizedDurationSeconds float64        `json:"optimized_duration_seconds"`
}

type SnapshotResponse struct {
	RunID         string        `json:"run_id,omitempty"`
	Stage         string        `json:"stage"`
	FailedStage   string        `json:"failed_stage,omitempty"`
	InProgress    bool          `json:"in_progress"`
	TransportMode string        `json:"transport_mode"`
	LastError     string        `json:"last_error,omitempty"`
	UpdatedAt     *time.Time    `json:"updated_at,omitempty"`
	Plan          *PlanResponse `json:"plan"`
}

type TransportModeRequest struct {
	TransportMode string `json:"transport_mode"`
}

type TransportModeResponse struct {
	TransportMode string `json:"transport_mode"`
}
