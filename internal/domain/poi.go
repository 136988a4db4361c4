package domain

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Tags is an unordered mapping from non-empty tag key to non-empty tag
// value. Equality is by set of entries, not insertion order.
type Tags map[string]string

// Equal reports whether two tag maps hold the same entries, independent of
// Go's inherently unordered map iteration.
func (t Tags) Equal(other Tags) bool {
	if len(t) != len(other) {
		return false
	}
	for k, v := range t {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// PointOfInterest is an immutable record produced by ingestion: a stable
// 64-bit id encoding source kind in its top two bits, a WGS84 position, and
// an unordered tag map. POIs are never mutated after insertion.
type PointOfInterest struct {
	ID       uint64
	Location orb.Point
	Tags     Tags
}

// NewPointOfInterest constructs a POI, copying the supplied tags so callers
// cannot mutate the record afterwards.
func NewPointOfInterest(id uint64, location orb.Point, tags Tags) PointOfInterest {
	copied := make(Tags, len(tags))
	for k, v := range tags {
		copied[k] = v
	}
	return PointOfInterest{ID: id, Location: location, Tags: copied}
}

// WithEmptyTags constructs a POI with no tags, used by tests and synthetic
// depot/end markers.
func WithEmptyTags(id uint64, location orb.Point) PointOfInterest {
	return PointOfInterest{ID: id, Location: location, Tags: Tags{}}
}

// Equal reports structural equality: same id, location, and tag set.
func (p PointOfInterest) Equal(other PointOfInterest) bool {
	return p.ID == other.ID && p.Location == other.Location && p.Tags.Equal(other.Tags)
}

// ValidCoordinate reports whether lon/lat are finite and within WGS84 range.
func ValidCoordinate(lon, lat float64) bool {
	return isFinite(lon) && isFinite(lat) &&
		lon >= -180 && lon <= 180 &&
		lat >= -90 && lat <= 90
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// String renders a POI for diagnostics; never used for equality.
func (p PointOfInterest) String() string {
	return fmt.Sprintf("POI{id=%d, lon=%.6f, lat=%.6f, tags=%d}", p.ID, p.Location.Lon(), p.Location.Lat(), len(p.Tags))
}
