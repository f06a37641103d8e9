package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"quick-route/internal/domain"
	"quick-route/internal/platform/obs"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves one address using OpenRouteService (/geocode/search).
// An empty result set is reported as domain.ErrAddressNotFound.
func (o *ORSProvider) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, fmt.Errorf("ors geocode: empty address: %w", domain.ErrValidation)
	}

	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.client.doWithRetry(ctx, "geocode", func() (*http.Request, error) {
		req, err := o.client.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("boundary.country", o.country)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("ors geocode %q: %w", norm, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}

	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q: %w", norm, domain.ErrAddressNotFound)
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) != 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", norm)
	}

	c := domain.Coordinates{Lon: coords[0], Lat: coords[1]}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("geocode %q returned out-of-range coordinates %s", norm, c)
	}
	return c, nil
}
