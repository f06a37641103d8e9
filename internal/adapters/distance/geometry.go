package distance

import "github.com/paulmach/orb"

// asLineString accepts a LineString, or a MultiLineString flattened in order.
func asLineString(g orb.Geometry) (orb.LineString, bool) {
	switch v := g.(type) {
	case orb.LineString:
		return v, true
	case orb.MultiLineString:
		var out orb.LineString
		for _, ls := range v {
			out = append(out, ls...)
		}
		return out, len(out) > 0
	default:
		return nil, false
	}
}
