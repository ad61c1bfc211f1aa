package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// DefaultCircleSegments is enough for a smooth ring at city scale.
const DefaultCircleSegments = 64

// Circle approximates a circle of radiusMeters around center as a closed
// ring with the given number of segments.
func Circle(center Coordinate, radiusMeters float64, segments int) orb.Ring {
	if segments < 3 {
		segments = DefaultCircleSegments
	}
	p := center.Point()
	ring := make(orb.Ring, 0, segments+1)
	for i := 0; i < segments; i++ {
		bearing := 360 * float64(i) / float64(segments)
		ring = append(ring, orbgeo.PointAtBearingAndDistance(p, bearing, radiusMeters))
	}
	return append(ring, ring[0])
}

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Coordinate) float64 {
	return orbgeo.DistanceHaversine(a.Point(), b.Point())
}
