package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEdgeKeySameCellCollapses(t *testing.T) {
	a := Coordinates{Lat: 33.44840, Lon: -112.07400}
	b := Coordinates{Lat: 33.45120, Lon: -112.06610}

	// Both endpoints move by less than half a grid cell (0.5e-4 degrees).
	aNear := Coordinates{Lat: 33.448420, Lon: -112.073980}
	bNear := Coordinates{Lat: 33.451180, Lon: -112.066120}

	require.Equal(t, NewEdgeKey(a, b, DefaultEdgePrecision), NewEdgeKey(aNear, bNear, DefaultEdgePrecision))
}

func TestNewEdgeKeyDifferentCells(t *testing.T) {
	a := Coordinates{Lat: 33.4484, Lon: -112.0740}
	b := Coordinates{Lat: 33.4512, Lon: -112.0661}
	bFar := Coordinates{Lat: 33.4514, Lon: -112.0661}

	require.NotEqual(t, NewEdgeKey(a, b, DefaultEdgePrecision), NewEdgeKey(a, bFar, DefaultEdgePrecision))
}

func TestNewEdgeKeyDirectional(t *testing.T) {
	a := Coordinates{Lat: 33.4484, Lon: -112.0740}
	b := Coordinates{Lat: 33.4512, Lon: -112.0661}

	ab := NewEdgeKey(a, b, DefaultEdgePrecision)
	ba := NewEdgeKey(b, a, DefaultEdgePrecision)

	require.NotEqual(t, ab, ba)
	require.Equal(t, ba, ab.Reverse())
}

func TestNewEdgeKeyQuantization(t *testing.T) {
	k := NewEdgeKey(
		Coordinates{Lat: 1.23456, Lon: -7.65432},
		Coordinates{Lat: -0.00004, Lon: 0.00006},
		DefaultEdgePrecision,
	)

	require.Equal(t, EdgeKey{FromX: -76543, FromY: 12346, ToX: 1, ToY: 0}, k)
}

func TestNewEdgeKeyPrecisionFallback(t *testing.T) {
	a := Coordinates{Lat: 10.12344, Lon: 20.56789}
	b := Coordinates{Lat: 10.5, Lon: 20.5}

	require.Equal(t, NewEdgeKey(a, b, DefaultEdgePrecision), NewEdgeKey(a, b, 0))
	require.NotEqual(t, NewEdgeKey(a, b, DefaultEdgePrecision), NewEdgeKey(a, b, 100))
}
