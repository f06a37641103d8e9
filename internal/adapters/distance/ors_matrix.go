package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"quick-route/internal/domain"
	"quick-route/internal/platform/obs"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

type matrixResponse struct {
	Durations [][]*float64 `json:"durations"`
}

// EstimateTravelTime asks the ORS matrix endpoint for the single from->to duration.
// A null cell means ORS found no route and is reported as domain.Unreachable.
func (o *ORSProvider) EstimateTravelTime(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
	mode domain.TransportMode,
) (_ time.Duration, err error) {
	defer obs.Time(ctx, "ors.EstimateTravelTime")(&err)

	profile, err := orsProfile(mode)
	if err != nil {
		return 0, err
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, profile)

	payload, err := json.Marshal(matrixRequest{
		Locations:    [][]float64{from.CoordsToList(), to.CoordsToList()},
		Sources:      []int{0},
		Destinations: []int{1},
		Metrics:      []string{"duration"},
	})
	if err != nil {
		return 0, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.client.doWithRetry(ctx, "matrix", func() (*http.Request, error) {
		return o.client.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return 0, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return 0, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Durations) != 1 || len(mr.Durations[0]) != 1 {
		return 0, fmt.Errorf("expected a 1x1 duration matrix; got %d rows", len(mr.Durations))
	}

	secondsPtr := mr.Durations[0][0]
	if secondsPtr == nil {
		return domain.Unreachable, nil
	}

	seconds := *secondsPtr
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("matrix returned invalid duration %v", seconds)
	}

	return time.Duration(seconds * float64(time.Second)), nil
}
