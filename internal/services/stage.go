package services

import "fmt"

// Stage is the position of a planning run in its state machine.
type Stage int

const (
	StageIdle Stage = iota
	StageGeocoding
	StageMatrixBuilding
	StageOptimizing
	StageLegBuilding
	StageSucceeded
	StageFailed
)

var stageNames = [...]string{
	StageIdle:           "idle",
	StageGeocoding:      "geocoding",
	StageMatrixBuilding: "matrix_building",
	StageOptimizing:     "optimizing",
	StageLegBuilding:    "leg_building",
	StageSucceeded:      "succeeded",
	StageFailed:         "failed",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Terminal reports whether the run has finished.
func (s Stage) Terminal() bool { return s == StageSucceeded || s == StageFailed }
