// Package mapview turns the facility's search state into a map
// configuration and keeps a rendering surface in step with it.
//
// Derive is pure. Synchronizer compares each derived view with the last one
// it applied and only touches the surface for the parts that changed, so
// repeated renders of the same state never move the camera.
package mapview

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/geo"
	"github.com/paulmach/orb"
)

const (
	FallbackLatitude  = 28.6139
	FallbackLongitude = 77.2090

	DefaultZoom = 13
	FlyDuration = 1500 * time.Millisecond
	FitPadding  = 50
	MaxFitZoom  = 15

	OverlayColor = "#dc2626"
	OverlayDash  = "5, 10"

	FacilityColor = "#2563eb"
)

// Fallback is the camera center used while no query center is set.
var Fallback = geo.Coordinate{Latitude: FallbackLatitude, Longitude: FallbackLongitude}

// Input is everything the map depends on.
type Input struct {
	Center          geo.Coordinate
	RadiusMeters    int
	SearchPerformed bool
	Results         []models.DonorResult
}

type MarkerKind string

const (
	MarkerFacility MarkerKind = "facility"
	MarkerDonor    MarkerKind = "donor"
)

type Marker struct {
	ID       string
	Kind     MarkerKind
	Position geo.Coordinate
	Tier     geo.Tier
	Color    string
	Title    string
	Popup    string
}

// RadiusOverlay is the dashed search circle.
type RadiusOverlay struct {
	Center       geo.Coordinate
	RadiusMeters int
	Color        string
	Dash         string
	Ring         orb.Ring
}

// Camera is where the map looks when no fit applies. CenterSet is false
// when Center is the fallback.
type Camera struct {
	Center    geo.Coordinate
	Zoom      int
	CenterSet bool
}

// Fit frames Bounds with Padding pixels, never zooming past MaxZoom.
type Fit struct {
	Bounds  geo.Bounds
	Padding int
	MaxZoom int
}

// State is the derived map configuration. It is never edited directly.
type State struct {
	Camera  Camera
	Fit     *Fit
	Overlay *RadiusOverlay
	Markers []Marker
}

// Derive computes the map configuration for in.
func Derive(in Input) State {
	st := State{Camera: Camera{Center: Fallback, Zoom: DefaultZoom}}
	centerSet := !in.Center.IsZero()
	if centerSet {
		st.Camera.Center = in.Center
		st.Camera.CenterSet = true
	}

	if centerSet {
		st.Markers = append(st.Markers, facilityMarker(in.Center, in.RadiusMeters))
	}

	coords := make([]geo.Coordinate, 0, len(in.Results)+1)
	if centerSet {
		coords = append(coords, in.Center)
	}
	for i, d := range in.Results {
		pos, ok := d.Position()
		if !ok {
			continue
		}
		coords = append(coords, pos)
		st.Markers = append(st.Markers, donorMarker(i, d, pos))
	}

	if !in.SearchPerformed {
		return st
	}

	if centerSet {
		st.Overlay = &RadiusOverlay{
			Center:       in.Center,
			RadiusMeters: in.RadiusMeters,
			Color:        OverlayColor,
			Dash:         OverlayDash,
			Ring:         geo.Circle(in.Center, float64(in.RadiusMeters), geo.DefaultCircleSegments),
		}
	}
	if len(in.Results) > 0 {
		if b, ok := geo.BoundsOf(coords...); ok {
			st.Fit = &Fit{Bounds: b, Padding: FitPadding, MaxZoom: MaxFitZoom}
		}
	}
	return st
}

func facilityMarker(c geo.Coordinate, radius int) Marker {
	return Marker{
		ID:       "facility",
		Kind:     MarkerFacility,
		Position: c,
		Color:    FacilityColor,
		Title:    "Search center",
		Popup: fmt.Sprintf("Search center\n%.4f, %.4f\nRadius: %.1f km",
			c.Latitude, c.Longitude, float64(radius)/1000),
	}
}

func donorMarker(i int, d models.DonorResult, pos geo.Coordinate) Marker {
	tier := d.Tier()
	id := d.ID
	if id == "" {
		id = fmt.Sprintf("donor-%d", i+1)
	}
	status := "Currently Offline"
	if d.IsAvailable {
		status = "Ready to Donate"
	}
	return Marker{
		ID:       id,
		Kind:     MarkerDonor,
		Position: pos,
		Tier:     tier,
		Color:    tier.Color(),
		Title:    d.Name,
		Popup: fmt.Sprintf("%s (%s)\n%s away\n%s",
			d.Name, d.BloodGroup, geo.FormatDistance(d.DistanceMeters), status),
	}
}
