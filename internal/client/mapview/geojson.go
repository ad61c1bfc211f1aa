package mapview

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/lifelink/internal/filex"
	"github.com/dmitrijs2005/lifelink/internal/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSONSurface renders the map as a GeoJSON FeatureCollection styled
// with simplestyle properties. When path is set every change rewrites the
// file, so any GeoJSON viewer pointed at it follows the search.
type GeoJSONSurface struct {
	path string

	mu      sync.Mutex
	center  geo.Coordinate
	zoom    int
	fit     *Fit
	overlay *RadiusOverlay
	markers []Marker
	writes  int
}

// NewGeoJSONSurface returns a surface looking at the fallback center. An
// empty path keeps the document in memory only.
func NewGeoJSONSurface(path string) *GeoJSONSurface {
	return &GeoJSONSurface{path: path, center: Fallback, zoom: DefaultZoom}
}

func (g *GeoJSONSurface) FlyTo(_ context.Context, center geo.Coordinate, zoom int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.center, g.zoom = center, zoom
	return g.flushLocked()
}

func (g *GeoJSONSurface) FitBounds(_ context.Context, fit *Fit) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fit = fit
	return g.flushLocked()
}

func (g *GeoJSONSurface) SetOverlay(_ context.Context, overlay *RadiusOverlay) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.overlay = overlay
	return g.flushLocked()
}

func (g *GeoJSONSurface) SetMarkers(_ context.Context, markers []Marker) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.markers = append([]Marker(nil), markers...)
	return g.flushLocked()
}

// Path is where the document is written.
func (g *GeoJSONSurface) Path() string {
	return g.path
}

// Writes counts how many times the surface changed.
func (g *GeoJSONSurface) Writes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.writes
}

// Document builds the current FeatureCollection.
func (g *GeoJSONSurface) Document() *geojson.FeatureCollection {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.documentLocked()
}

// MarshalJSON encodes the current document.
func (g *GeoJSONSurface) MarshalJSON() ([]byte, error) {
	return g.Document().MarshalJSON()
}

func (g *GeoJSONSurface) documentLocked() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if g.overlay != nil {
		f := geojson.NewFeature(orb.Polygon{g.overlay.Ring})
		f.ID = "radius"
		f.Properties["kind"] = "radius"
		f.Properties["radius_m"] = g.overlay.RadiusMeters
		f.Properties["stroke"] = g.overlay.Color
		f.Properties["stroke-dasharray"] = g.overlay.Dash
		f.Properties["fill"] = g.overlay.Color
		f.Properties["fill-opacity"] = 0.1
		fc.Append(f)
	}

	for _, m := range g.markers {
		f := geojson.NewFeature(m.Position.Point())
		f.ID = m.ID
		f.Properties["kind"] = string(m.Kind)
		f.Properties["title"] = m.Title
		f.Properties["description"] = m.Popup
		f.Properties["marker-color"] = m.Color
		if m.Kind == MarkerFacility {
			f.Properties["marker-symbol"] = "hospital"
		} else {
			f.Properties["tier"] = string(m.Tier)
			f.Properties["marker-symbol"] = "heart"
		}
		fc.Append(f)
	}

	camera := map[string]any{
		"center": []float64{g.center.Longitude, g.center.Latitude},
		"zoom":   g.zoom,
	}
	if g.fit != nil {
		fc.BBox = geojson.NewBBox(g.fit.Bounds.Bound())
		camera["padding"] = g.fit.Padding
		camera["maxZoom"] = g.fit.MaxZoom
	}
	fc.ExtraMembers = geojson.Properties{"camera": camera}
	return fc
}

func (g *GeoJSONSurface) flushLocked() error {
	g.writes++
	if g.path == "" {
		return nil
	}

	data, err := g.documentLocked().MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode map: %w", err)
	}
	if err := filex.WriteAtomic(g.path, data, 0o644); err != nil {
		return fmt.Errorf("write map: %w", err)
	}
	return nil
}
