package geo

import "github.com/paulmach/orb"

// Bounds is an axis-aligned lat/lon region.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// BoundsOf returns the smallest region covering every coordinate. ok is
// false when no coordinates were given.
func BoundsOf(coords ...Coordinate) (b Bounds, ok bool) {
	if len(coords) == 0 {
		return Bounds{}, false
	}
	ob := orb.Bound{Min: coords[0].Point(), Max: coords[0].Point()}
	for _, c := range coords[1:] {
		ob = ob.Extend(c.Point())
	}
	return FromBound(ob), true
}

// FromBound converts an orb bound.
func FromBound(ob orb.Bound) Bounds {
	return Bounds{
		South: ob.Min.Lat(),
		West:  ob.Min.Lon(),
		North: ob.Max.Lat(),
		East:  ob.Max.Lon(),
	}
}

// Bound converts b to an orb bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// Center returns the middle of the region.
func (b Bounds) Center() Coordinate {
	return FromPoint(b.Bound().Center())
}

// Contains reports whether c lies inside b (edges included).
func (b Bounds) Contains(c Coordinate) bool {
	return b.Bound().Contains(c.Point())
}
