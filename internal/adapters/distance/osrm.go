package distance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"

	"quick-route/internal/domain"
	"quick-route/internal/platform/obs"
)

const defaultOSRMBaseURL = "https://router.project-osrm.org"

// OSRMProvider implements DirectionsProvider on the OSRM /route service.
// Travel-time estimates use the same endpoint without geometry.
type OSRMProvider struct {
	client  *apiClient
	baseURL string
}

type osrmRoute struct {
	Distance float64           `json:"distance"`
	Duration float64           `json:"duration"`
	Geometry *geojson.Geometry `json:"geometry"`
}

type osrmRouteResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

func NewOSRMProvider(baseURL string, ratePerSec float64) *OSRMProvider {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultOSRMBaseURL
	}
	return &OSRMProvider{
		client:  newAPIClient("osrm", ratePerSec, nil),
		baseURL: baseURL,
	}
}

func osrmProfile(mode domain.TransportMode) (string, error) {
	switch mode {
	case domain.Automobile:
		return "driving", nil
	case domain.Walking:
		return "foot", nil
	default:
		return "", fmt.Errorf("osrm profile for %s: %w", mode, domain.ErrValidation)
	}
}

func (o *OSRMProvider) EstimateTravelTime(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
	mode domain.TransportMode,
) (_ time.Duration, err error) {
	defer obs.Time(ctx, "osrm.EstimateTravelTime")(&err)

	route, err := o.route(ctx, from, to, mode, false)
	if errors.Is(err, domain.ErrNoRouteFound) {
		return domain.Unreachable, nil
	}
	if err != nil {
		return 0, err
	}

	return time.Duration(route.Duration * float64(time.Second)), nil
}

func (o *OSRMProvider) ComputeRoute(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
	mode domain.TransportMode,
) (_ domain.RoutePath, err error) {
	defer obs.Time(ctx, "osrm.ComputeRoute")(&err)

	route, err := o.route(ctx, from, to, mode, true)
	if err != nil {
		return domain.RoutePath{}, err
	}
	if route.Geometry == nil {
		return domain.RoutePath{}, errors.New("osrm route response has no geometry")
	}

	line, ok := asLineString(route.Geometry.Geometry())
	if !ok {
		return domain.RoutePath{}, fmt.Errorf("osrm geometry is %s, want LineString", route.Geometry.Type)
	}

	return domain.RoutePath{
		Geometry:       line,
		DistanceMeters: route.Distance,
		Duration:       time.Duration(route.Duration * float64(time.Second)),
	}, nil
}

func (o *OSRMProvider) route(
	ctx context.Context,
	from domain.Coordinates,
	to domain.Coordinates,
	mode domain.TransportMode,
	withGeometry bool,
) (osrmRoute, error) {
	profile, err := osrmProfile(mode)
	if err != nil {
		return osrmRoute{}, err
	}

	// OSRM takes lon,lat pairs separated by ';'.
	endpoint := fmt.Sprintf("%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f",
		o.baseURL, profile, from.Lon, from.Lat, to.Lon, to.Lat)

	op := "eta"
	if withGeometry {
		op = "route"
	}

	resp, err := o.client.doWithRetry(ctx, op, func() (*http.Request, error) {
		req, err := o.client.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		if withGeometry {
			q.Set("overview", "full")
			q.Set("geometries", "geojson")
		} else {
			q.Set("overview", "false")
		}
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		if isOSRMNoRoute(err) {
			return osrmRoute{}, fmt.Errorf("osrm route %s -> %s: %w", from, to, domain.ErrNoRouteFound)
		}
		return osrmRoute{}, fmt.Errorf("osrm request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return osrmRoute{}, fmt.Errorf("decode osrm response: %w", err)
	}

	if decoded.Code == "NoRoute" || (decoded.Code == "Ok" && len(decoded.Routes) == 0) {
		return osrmRoute{}, fmt.Errorf("osrm route %s -> %s: %w", from, to, domain.ErrNoRouteFound)
	}
	if decoded.Code != "Ok" {
		return osrmRoute{}, fmt.Errorf("osrm returned code %q: %s", decoded.Code, decoded.Message)
	}

	return decoded.Routes[0], nil
}

// isOSRMNoRoute reports whether err is an OSRM 400 with a NoRoute/NoSegment code.
func isOSRMNoRoute(err error) bool {
	if statusCode(err) != http.StatusBadRequest {
		return false
	}
	var he *httpStatusError
	errors.As(err, &he)

	var body osrmRouteResponse
	if json.Unmarshal([]byte(he.Body), &body) != nil {
		return false
	}
	return body.Code == "NoRoute" || body.Code == "NoSegment"
}
