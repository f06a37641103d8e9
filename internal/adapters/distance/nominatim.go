package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"quick-route/internal/domain"
	"quick-route/internal/platform/obs"
)

const defaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

// NominatimGeocoder implements Geocoder against an OSM Nominatim instance.
// The public instance allows about one request per second.
type NominatimGeocoder struct {
	client  *apiClient
	baseURL string
}

type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func NewNominatimGeocoder(baseURL string, ratePerSec float64, userAgent string) *NominatimGeocoder {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = defaultNominatimBaseURL
	}
	if userAgent == "" {
		userAgent = "quick-route/1.0"
	}
	return &NominatimGeocoder{
		client:  newAPIClient("nominatim", ratePerSec, map[string]string{"User-Agent": userAgent}),
		baseURL: baseURL,
	}
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, fmt.Errorf("nominatim geocode: empty address: %w", domain.ErrValidation)
	}

	endpoint := g.baseURL + "/search"

	resp, err := g.client.doWithRetry(ctx, "geocode", func() (*http.Request, error) {
		req, err := g.client.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("q", norm)
		q.Set("format", "json")
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("nominatim geocode %q: %w", norm, err)
	}
	defer resp.Body.Close()

	var results []nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode nominatim response: %w", err)
	}

	if len(results) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q: %w", norm, domain.ErrAddressNotFound)
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid latitude %q for %q: %w", results[0].Lat, norm, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("invalid longitude %q for %q: %w", results[0].Lon, norm, err)
	}

	obs.Logger(ctx).Debug().Str("address", norm).Str("display_name", results[0].DisplayName).Msg("nominatim geocoded")

	return domain.Coordinates{Lat: lat, Lon: lon}, nil
}
