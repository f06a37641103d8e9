package services

import (
	"quick-route/internal/adapters/distance"
	"quick-route/internal/domain"
)

// line places the given addresses 0.01° of latitude apart.
func line(addrs ...string) []distance.MockPlace {
	out := make([]distance.MockPlace, len(addrs))
	for i, a := range addrs {
		out[i] = distance.MockPlace{
			Address: a,
			Coords:  domain.Coordinates{Lat: 40 + float64(i)*0.01, Lon: -74},
		}
	}
	return out
}

// allPairs returns every directed pair between addrs with a default cost,
// replaced by any override keyed "from|to".
func allPairs(addrs []string, def float64, overrides map[string]float64) []distance.MockPair {
	var out []distance.MockPair
	for _, a := range addrs {
		for _, b := range addrs {
			if a == b {
				continue
			}
			s := def
			if v, ok := overrides[a+"|"+b]; ok {
				s = v
			}
			out = append(out, distance.MockPair{From: a, To: b, Meters: s * 10, Seconds: s})
		}
	}
	return out
}

func coordsOf(places []distance.MockPlace) []domain.Coordinates {
	out := make([]domain.Coordinates, len(places))
	for i, p := range places {
		out[i] = p.Coords
	}
	return out
}
