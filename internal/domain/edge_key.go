package domain

import "math"

// DefaultEdgePrecision quantizes degrees to a grid of roughly 11 meters.
const DefaultEdgePrecision = 1e4

// EdgeKey is the quantized identity of a directed coordinate pair.
// Pairs that round into the same grid cells share a key; A->B and B->A do not.
type EdgeKey struct {
	FromX, FromY int64
	ToX, ToY     int64
}

// NewEdgeKey quantizes both endpoints with the given precision factor.
// A non-positive precision falls back to DefaultEdgePrecision.
func NewEdgeKey(from, to Coordinates, precision float64) EdgeKey {
	if precision <= 0 {
		precision = DefaultEdgePrecision
	}
	return EdgeKey{
		FromX: quantize(from.Lon, precision),
		FromY: quantize(from.Lat, precision),
		ToX:   quantize(to.Lon, precision),
		ToY:   quantize(to.Lat, precision),
	}
}

// Reverse returns the key of the opposite direction.
func (k EdgeKey) Reverse() EdgeKey {
	return EdgeKey{FromX: k.ToX, FromY: k.ToY, ToX: k.FromX, ToY: k.FromY}
}

func quantize(deg, precision float64) int64 {
	return int64(math.Round(deg * precision))
}
