package mapview

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/lifelink/internal/logging"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func featuresByKind(fc *geojson.FeatureCollection, kind string) []*geojson.Feature {
	var out []*geojson.Feature
	for _, f := range fc.Features {
		if f.Properties.MustString("kind", "") == kind {
			out = append(out, f)
		}
	}
	return out
}

func TestGeoJSONSurface_BeforeSearch(t *testing.T) {
	surf := NewGeoJSONSurface("")
	s := NewSynchronizer(surf, logging.Nop())

	_, err := s.Apply(context.Background(), Input{Center: scenarioCenter, RadiusMeters: 5000, Results: scenarioResults()})
	require.NoError(t, err)

	fc := surf.Document()
	assert.Len(t, featuresByKind(fc, "facility"), 1)
	assert.Empty(t, featuresByKind(fc, "radius"))
	assert.Nil(t, fc.BBox)
}

func TestGeoJSONSurface_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "map.geojson")
	surf := NewGeoJSONSurface(path)
	s := NewSynchronizer(surf, logging.Nop())

	_, err := s.Apply(context.Background(), Input{Center: scenarioCenter, RadiusMeters: 5000, SearchPerformed: true, Results: scenarioResults()})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)

	facility := featuresByKind(fc, "facility")
	require.Len(t, facility, 1)
	assert.Equal(t, orb.Point{85.82, 20.30}, facility[0].Geometry)

	donors := featuresByKind(fc, "donor")
	require.Len(t, donors, 2)
	assert.Equal(t, "near", donors[0].Properties.MustString("tier", ""))
	assert.Equal(t, "#16a34a", donors[0].Properties.MustString("marker-color", ""))
	assert.Equal(t, "far", donors[1].Properties.MustString("tier", ""))

	radius := featuresByKind(fc, "radius")
	require.Len(t, radius, 1)
	_, isPolygon := radius[0].Geometry.(orb.Polygon)
	assert.True(t, isPolygon)
	assert.Equal(t, OverlayColor, radius[0].Properties.MustString("stroke", ""))

	assert.NotNil(t, fc.BBox)
	assert.Contains(t, fc.ExtraMembers, "camera")
}

func TestGeoJSONSurface_UnchangedStateDoesNotRewrite(t *testing.T) {
	surf := NewGeoJSONSurface("")
	s := NewSynchronizer(surf, logging.Nop())
	in := Input{Center: scenarioCenter, RadiusMeters: 5000, SearchPerformed: true, Results: scenarioResults()}

	_, err := s.Apply(context.Background(), in)
	require.NoError(t, err)
	writes := surf.Writes()

	_, err = s.Apply(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, writes, surf.Writes())
}
