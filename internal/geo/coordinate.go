// Package geo holds the small amount of geometry the client needs:
// WGS84 coordinates, bounding regions and distance tiers.
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

var (
	ErrLatitudeRange  = errors.New("latitude must be between -90 and 90")
	ErrLongitudeRange = errors.New("longitude must be between -180 and 180")
	ErrMalformed      = errors.New("malformed coordinate")
)

// Coordinate is a WGS84 position. The zero value doubles as the "unset"
// sentinel: a coordinate with both components equal to 0 is never drawn
// or used to recenter a map.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsZero reports whether c is the unset sentinel.
func (c Coordinate) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

// Point converts c to an orb point (lon, lat order).
func (c Coordinate) Point() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// FromPoint is the inverse of Point.
func FromPoint(p orb.Point) Coordinate {
	return Coordinate{Latitude: p.Lat(), Longitude: p.Lon()}
}

// Rounded returns c with both components rounded to 6 decimal places,
// the precision device positions are stored with.
func (c Coordinate) Rounded() Coordinate {
	return Coordinate{Latitude: Round6(c.Latitude), Longitude: Round6(c.Longitude)}
}

// Validate checks the coordinate ranges.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || c.Latitude < -90 || c.Latitude > 90 {
		return ErrLatitudeRange
	}
	if math.IsNaN(c.Longitude) || c.Longitude < -180 || c.Longitude > 180 {
		return ErrLongitudeRange
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Latitude, c.Longitude)
}

// Round6 rounds v to 6 decimal places (~11 cm).
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// FormatComponent renders a single coordinate component the way form
// fields hold it: fixed 6 decimals.
func FormatComponent(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// ParseCoordinate parses latitude/longitude as typed by a user. Empty
// strings are rejected; use ParseOptional when empty means "not supplied".
func ParseCoordinate(lat, lon string) (Coordinate, error) {
	latV, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: latitude %q", ErrMalformed, lat)
	}
	lonV, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: longitude %q", ErrMalformed, lon)
	}
	c := Coordinate{Latitude: latV, Longitude: lonV}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// ParseOptional is ParseCoordinate that maps two empty inputs to the zero
// coordinate.
func ParseOptional(lat, lon string) (Coordinate, error) {
	if strings.TrimSpace(lat) == "" && strings.TrimSpace(lon) == "" {
		return Coordinate{}, nil
	}
	return ParseCoordinate(lat, lon)
}
