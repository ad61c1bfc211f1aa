package mapview

import (
	"testing"

	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/geo"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var scenarioCenter = geo.Coordinate{Latitude: 20.30, Longitude: 85.82}

func scenarioResults() []models.DonorResult {
	return []models.DonorResult{
		{
			ID: "d1", Name: "Asha", BloodGroup: "O+", IsAvailable: true,
			Location:       models.NewGeoPoint(geo.Coordinate{Latitude: 20.3072, Longitude: 85.82}),
			DistanceMeters: 800,
		},
		{
			ID: "d2", Name: "Ravi", BloodGroup: "O+",
			Location:       models.NewGeoPoint(geo.Coordinate{Latitude: 20.3378, Longitude: 85.82}),
			DistanceMeters: 4200,
		},
	}
}

func TestDerive_Scenario(t *testing.T) {
	st := Derive(Input{
		Center:          scenarioCenter,
		RadiusMeters:    5000,
		SearchPerformed: true,
		Results:         scenarioResults(),
	})

	assert.Equal(t, Camera{Center: scenarioCenter, Zoom: DefaultZoom, CenterSet: true}, st.Camera)

	require.Len(t, st.Markers, 3)
	assert.Equal(t, MarkerFacility, st.Markers[0].Kind)
	assert.Equal(t, geo.TierNear, st.Markers[1].Tier)
	assert.Equal(t, "#16a34a", st.Markers[1].Color)
	assert.Equal(t, geo.TierFar, st.Markers[2].Tier)
	assert.Equal(t, "#dc2626", st.Markers[2].Color)

	require.NotNil(t, st.Overlay)
	assert.Equal(t, 5000, st.Overlay.RadiusMeters)
	assert.Equal(t, OverlayColor, st.Overlay.Color)
	assert.NotEmpty(t, st.Overlay.Dash)
	assert.Len(t, st.Overlay.Ring, geo.DefaultCircleSegments+1)

	require.NotNil(t, st.Fit)
	assert.Equal(t, FitPadding, st.Fit.Padding)
	assert.Equal(t, MaxFitZoom, st.Fit.MaxZoom)
	assert.True(t, st.Fit.Bounds.Contains(scenarioCenter))
	for _, d := range scenarioResults() {
		pos, _ := d.Position()
		assert.True(t, st.Fit.Bounds.Contains(pos))
	}
}

func TestDerive_NoSearchMeansNoOverlayOrFit(t *testing.T) {
	st := Derive(Input{
		Center:       scenarioCenter,
		RadiusMeters: 5000,
		Results:      scenarioResults(),
	})

	assert.Nil(t, st.Overlay)
	assert.Nil(t, st.Fit)
	require.NotEmpty(t, st.Markers)
	assert.Equal(t, MarkerFacility, st.Markers[0].Kind)
}

func TestDerive_SearchWithoutResultsDrawsOverlayOnly(t *testing.T) {
	st := Derive(Input{Center: scenarioCenter, RadiusMeters: 3000, SearchPerformed: true, Results: []models.DonorResult{}})

	assert.Nil(t, st.Fit)
	require.NotNil(t, st.Overlay)
	assert.Equal(t, 3000, st.Overlay.RadiusMeters)
	assert.Len(t, st.Markers, 1)
}

func TestDerive_UnsetCenterUsesFallback(t *testing.T) {
	st := Derive(Input{RadiusMeters: 5000, SearchPerformed: true})

	assert.Equal(t, Fallback, st.Camera.Center)
	assert.False(t, st.Camera.CenterSet)
	assert.Nil(t, st.Overlay)
	assert.Empty(t, st.Markers)
}

func TestDerive_SkipsDonorsWithoutLocation(t *testing.T) {
	results := scenarioResults()
	results[0].Location = nil

	st := Derive(Input{Center: scenarioCenter, RadiusMeters: 5000, SearchPerformed: true, Results: results})

	require.Len(t, st.Markers, 2)
	assert.Equal(t, "d2", st.Markers[1].ID)
}

func TestDerive_FacilityPopup(t *testing.T) {
	st := Derive(Input{Center: geo.Coordinate{Latitude: 20.123456, Longitude: 85.654321}, RadiusMeters: 7000})

	require.Len(t, st.Markers, 1)
	assert.Contains(t, st.Markers[0].Popup, "20.1235, 85.6543")
	assert.Contains(t, st.Markers[0].Popup, "7.0 km")
}

func TestDerive_DonorPopup(t *testing.T) {
	st := Derive(Input{Center: scenarioCenter, RadiusMeters: 5000, SearchPerformed: true, Results: scenarioResults()})

	assert.Contains(t, st.Markers[1].Popup, "800m")
	assert.Contains(t, st.Markers[1].Popup, "Ready to Donate")
	assert.Contains(t, st.Markers[2].Popup, "4.2km")
	assert.Contains(t, st.Markers[2].Popup, "Currently Offline")
}

func TestDerive_Idempotent(t *testing.T) {
	in := Input{Center: scenarioCenter, RadiusMeters: 5000, SearchPerformed: true, Results: scenarioResults()}

	first := Derive(in)
	for i := 0; i < 5; i++ {
		if diff := cmp.Diff(first, Derive(in)); diff != "" {
			t.Fatalf("derive drifted (-first +again):\n%s", diff)
		}
	}
}

func TestDeriver_Memoizes(t *testing.T) {
	var d Deriver
	in := Input{Center: scenarioCenter, RadiusMeters: 5000, SearchPerformed: true, Results: scenarioResults()}

	a := d.Derive(in)
	in.Results[0].Name = "changed after derive"
	b := d.Derive(Input{Center: scenarioCenter, RadiusMeters: 5000, SearchPerformed: true, Results: scenarioResults()})

	assert.Same(t, a.Overlay, b.Overlay)

	c := d.Derive(Input{Center: scenarioCenter, RadiusMeters: 6000, SearchPerformed: true, Results: scenarioResults()})
	assert.NotSame(t, a.Overlay, c.Overlay)
	assert.Equal(t, 6000, c.Overlay.RadiusMeters)
}
