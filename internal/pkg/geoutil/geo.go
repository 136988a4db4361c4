// Package geoutil holds the bounding-box helpers used by solve-time
// candidate selection.
package geoutil

import "github.com/paulmach/orb"

// KmPerDegree approximates the number of kilometres per degree of
// latitude/longitude near the equator, used to expand a search radius
// (given in kilometres) into a degree-denominated bounding box.
const KmPerDegree = 111.0

// BoundingBox returns the axis-aligned rectangle of radiusKm around each of
// the supplied centres, using the 111 km/degree approximation named in the
// candidate-selection algorithm. When multiple centres are supplied (start
// and end), the returned box is their union.
func BoundingBox(radiusKm float64, centres ...orb.Point) orb.Bound {
	degrees := radiusKm / KmPerDegree
	var bound orb.Bound
	first := true
	for _, c := range centres {
		box := orb.Bound{
			Min: orb.Point{c.Lon() - degrees, c.Lat() - degrees},
			Max: orb.Point{c.Lon() + degrees, c.Lat() + degrees},
		}
		if first {
			bound = box
			first = false
			continue
		}
		bound = bound.Union(box)
	}
	return bound
}
