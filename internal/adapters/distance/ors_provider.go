package distance

import (
	"errors"
	"fmt"
	"strings"

	"quick-route/internal/domain"
)

const defaultORSBaseURL = "https://api.openrouteservice.org"

// ORSProvider implements Geocoder and DirectionsProvider using OpenRouteService.
//
// It covers:
//   - Address geocoding (/geocode/search)
//   - Pairwise travel-time estimates (/v2/matrix)
//   - Full route geometry (/v2/directions)
//
// The provider is safe for concurrent use.
type ORSProvider struct {
	client  *apiClient
	baseURL string
	country string
}

type ORSOptions struct {
	BaseURL    string
	RatePerSec float64
	// Country restricts geocoding (boundary.country); empty means "US".
	Country string
}

func NewORSProvider(apiKey string, opts ORSOptions) (*ORSProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultORSBaseURL
	}
	country := opts.Country
	if country == "" {
		country = "US"
	}

	return &ORSProvider{
		client:  newAPIClient("ors", opts.RatePerSec, map[string]string{"Authorization": apiKey}),
		baseURL: baseURL,
		country: country,
	}, nil
}

// orsProfile maps a transport mode to the ORS routing profile.
func orsProfile(mode domain.TransportMode) (string, error) {
	switch mode {
	case domain.Automobile:
		return "driving-car", nil
	case domain.Walking:
		return "foot-walking", nil
	default:
		return "", fmt.Errorf("ors profile for %s: %w", mode, domain.ErrValidation)
	}
}

// normalize ensures consistent request text by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
