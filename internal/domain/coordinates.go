package domain

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Immutable geographic coordinates in degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Point converts the coordinates to an orb point (x = lon, y = lat).
func (c Coordinates) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }

func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// Valid reports whether the coordinates fall within WGS84 bounds.
func (c Coordinates) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func CoordinatesFromPoint(p orb.Point) Coordinates {
	return Coordinates{Lat: p.Lat(), Lon: p.Lon()}
}
