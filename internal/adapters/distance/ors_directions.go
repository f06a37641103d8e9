package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"

	"quick-route/internal/domain"
	"quick-route/internal/platform/obs"
)

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

// ORS error codes for "no routable point" and "route not found".
var orsNoRouteCodes = map[int]struct{}{2009: {}, 2010: {}}

type orsErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ComputeRoute fetches the full path for one leg from /v2/directions/{profile}/geojson.
func (o *ORSProvider) ComputeRoute(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
	mode domain.TransportMode,
) (_ domain.RoutePath, err error) {
	defer obs.Time(ctx, "ors.ComputeRoute")(&err)

	profile, err := orsProfile(mode)
	if err != nil {
		return domain.RoutePath{}, err
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, profile)

	payload, err := json.Marshal(directionsRequest{
		Coordinates: [][]float64{from.CoordsToList(), to.CoordsToList()},
	})
	if err != nil {
		return domain.RoutePath{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.client.doWithRetry(ctx, "directions", func() (*http.Request, error) {
		return o.client.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		if isORSNoRoute(err) {
			return domain.RoutePath{}, fmt.Errorf("ors directions %s -> %s: %w", from, to, domain.ErrNoRouteFound)
		}
		return domain.RoutePath{}, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	fc := geojson.NewFeatureCollection()
	if err := json.NewDecoder(resp.Body).Decode(fc); err != nil {
		return domain.RoutePath{}, fmt.Errorf("decode directions response: %w", err)
	}

	if len(fc.Features) == 0 {
		return domain.RoutePath{}, fmt.Errorf("ors directions %s -> %s: %w", from, to, domain.ErrNoRouteFound)
	}
	f := fc.Features[0]

	line, ok := asLineString(f.Geometry)
	if !ok {
		return domain.RoutePath{}, fmt.Errorf("directions geometry is %T, want LineString", f.Geometry)
	}

	var summary struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	}
	if raw, ok := f.Properties["summary"]; ok {
		b, err := json.Marshal(raw)
		if err != nil {
			return domain.RoutePath{}, fmt.Errorf("re-encode route summary: %w", err)
		}
		if err := json.Unmarshal(b, &summary); err != nil {
			return domain.RoutePath{}, fmt.Errorf("decode route summary: %w", err)
		}
	}

	return domain.RoutePath{
		Geometry:       line,
		DistanceMeters: summary.Distance,
		Duration:       time.Duration(summary.Duration * float64(time.Second)),
	}, nil
}

// isORSNoRoute reports whether err is an ORS 404 carrying a "no route" error code.
func isORSNoRoute(err error) bool {
	var he *httpStatusError
	if !errors.As(err, &he) {
		return false
	}
	if he.Code != http.StatusNotFound && he.Code != http.StatusBadRequest {
		return false
	}

	var body orsErrorBody
	if json.Unmarshal([]byte(he.Body), &body) != nil {
		return false
	}
	_, ok := orsNoRouteCodes[body.Error.Code]
	return ok
}
