package mapview

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/geo"
	"github.com/dmitrijs2005/lifelink/internal/logging"
	"github.com/google/go-cmp/cmp"
)

// Surface is a rendering target for the map. Each call replaces the
// previous value of the same kind; nil clears it.
type Surface interface {
	FlyTo(ctx context.Context, center geo.Coordinate, zoom int) error
	FitBounds(ctx context.Context, fit *Fit) error
	SetOverlay(ctx context.Context, overlay *RadiusOverlay) error
	SetMarkers(ctx context.Context, markers []Marker) error
}

// Deriver memoizes Derive on its input.
type Deriver struct {
	mu    sync.Mutex
	last  *Input
	state State
}

// Derive returns the cached state when in equals the previous input.
func (d *Deriver) Derive(in Input) State {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.last != nil && cmp.Equal(*d.last, in) {
		return d.state
	}
	cp := in
	cp.Results = models.CloneDonors(in.Results)
	d.last = &cp
	d.state = Derive(cp)
	return d.state
}

// Synchronizer pushes derived map states to a Surface, applying only what
// changed since the previous Apply.
type Synchronizer struct {
	surface Surface
	log     logging.Logger
	deriver Deriver

	mu      sync.Mutex
	applied bool
	center  geo.Coordinate
	fit     *Fit
	overlay *RadiusOverlay
	markers []Marker
}

func NewSynchronizer(surface Surface, log logging.Logger) *Synchronizer {
	return &Synchronizer{surface: surface, log: log}
}

// Apply derives the map for in and updates the surface.
//
// The camera flies only when a set center changes; an unset center never
// moves it. The fit is requested again only when its bounds change.
func (s *Synchronizer) Apply(ctx context.Context, in Input) (State, error) {
	st := s.deriver.Derive(in)

	s.mu.Lock()
	defer s.mu.Unlock()

	if st.Camera.CenterSet && (!s.applied || st.Camera.Center != s.center) {
		if err := s.surface.FlyTo(ctx, st.Camera.Center, st.Camera.Zoom); err != nil {
			return st, err
		}
		s.center = st.Camera.Center
		s.log.Debug(ctx, "map recentered", "center", st.Camera.Center.String())
	}

	if !s.applied || !cmp.Equal(st.Fit, s.fit) {
		if err := s.surface.FitBounds(ctx, st.Fit); err != nil {
			return st, err
		}
		s.fit = st.Fit
	}

	if !s.applied || !cmp.Equal(st.Overlay, s.overlay) {
		if err := s.surface.SetOverlay(ctx, st.Overlay); err != nil {
			return st, err
		}
		s.overlay = st.Overlay
	}

	if !s.applied || !cmp.Equal(st.Markers, s.markers) {
		if err := s.surface.SetMarkers(ctx, st.Markers); err != nil {
			return st, err
		}
		s.markers = st.Markers
	}

	s.applied = true
	return st, nil
}
