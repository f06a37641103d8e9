package domain

import (
	"math"
	"time"

	"github.com/paulmach/orb"
)

// Unreachable is the travel-time sentinel for pairs with no known path.
const Unreachable = time.Duration(math.MaxInt64)

// Represents a single named point of an itinerary.
// The address is trimmed and non-empty; Coordinates are valid once Resolved is set.
type Stop struct {
	Address     string
	Coordinates Coordinates
	Resolved    bool
}

// RoutePath is the full path a directions provider returns for one pair.
type RoutePath struct {
	Geometry       orb.LineString
	DistanceMeters float64
	Duration       time.Duration
}

// Represents one resolved travel segment between consecutive stops of a tour.
// Legs are immutable once built and always appear in tour order.
type RouteLeg struct {
	From            string
	To              string
	FromCoordinates Coordinates
	ToCoordinates   Coordinates
	Geometry        orb.LineString
	DistanceMeters  float64
	Duration        time.Duration
}

// Represents the result of one successful planning run.
// Order indexes into Stops; Legs follow Order; OptimizedCost is the
// matrix cost the optimizer minimized, which may differ from the summed
// leg durations when the provider's ETA and route estimates disagree.
type RoutePlan struct {
	RunID               string
	Mode                TransportMode
	Stops               []Stop
	Order               []int
	Legs                []RouteLeg
	TotalDistanceMeters float64
	TotalDuration       time.Duration
	OptimizedCost       time.Duration
}

// OrderedAddresses returns stop addresses in visiting order.
func (p *RoutePlan) OrderedAddresses() []string {
	out := make([]string, 0, len(p.Order))
	for _, idx := range p.Order {
		out = append(out, p.Stops[idx].Address)
	}
	return out
}
