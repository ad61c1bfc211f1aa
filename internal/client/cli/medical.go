package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/lifelink/internal/apperror"
	"github.com/dmitrijs2005/lifelink/internal/client/geolocation"
	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/client/services"
	"github.com/dmitrijs2005/lifelink/internal/client/widgets"
	"github.com/dmitrijs2005/lifelink/internal/common"
	"github.com/dmitrijs2005/lifelink/internal/geo"
)

// Group sets the blood group to search for.
func (a *App) Group(ctx context.Context, args []string) error {
	if !a.enter(ctx, common.PathMedicalDashboard) {
		return nil
	}
	if len(args) != 1 {
		a.println("Usage: group <" + strings.Join(models.BloodGroups, "|") + ">")
		return nil
	}
	return a.coordinator().SetBloodGroup(strings.ToUpper(args[0]))
}

// Radius sets the search radius in meters.
func (a *App) Radius(ctx context.Context, args []string) error {
	if !a.enter(ctx, common.PathMedicalDashboard) {
		return nil
	}
	if len(args) != 1 {
		a.println("Usage: radius <meters>")
		return nil
	}
	m, err := strconv.Atoi(args[0])
	if err != nil {
		return models.ValidateRadius(-1)
	}
	return a.coordinator().SetRadius(m)
}

// Center sets the search center by hand.
func (a *App) Center(ctx context.Context, args []string) error {
	if !a.enter(ctx, common.PathMedicalDashboard) {
		return nil
	}
	if len(args) != 2 {
		a.println("Usage: center <lat> <lon>")
		return nil
	}
	c, err := geo.ParseCoordinate(args[0], args[1])
	if err != nil {
		return apperror.Validation("center", "Invalid coordinates.")
	}
	return a.coordinator().SetCenter(c)
}

// Locate moves the center to the device position.
func (a *App) Locate(ctx context.Context, _ []string) error {
	if !a.enter(ctx, common.PathMedicalDashboard) {
		return nil
	}
	pos, err := a.coordinator().AcquireDevicePosition(ctx)
	if err != nil {
		return err
	}
	a.println("Center set to " + pos.String())
	return nil
}

// Search runs the query. With no center chosen yet and a usable device
// position it locates first.
func (a *App) Search(ctx context.Context, _ []string) error {
	if !a.enter(ctx, common.PathMedicalDashboard) {
		return nil
	}
	sc := a.coordinator()

	if sc.Snapshot().Query.Center.IsZero() && geolocation.Supported(a.locator) {
		a.println("Locating...")
		if _, err := sc.AcquireDevicePosition(ctx); err != nil {
			return err
		}
	}

	results, err := sc.Search(ctx)
	if errors.Is(err, services.ErrSearchSuperseded) {
		return nil
	}
	if err != nil {
		return err
	}

	q := sc.Snapshot().Query
	a.printf("%d donor(s) with %s within %.1f km of %s\n",
		len(results), q.BloodGroup, float64(q.RadiusMeters)/1000, q.Center.String())
	if err := widgets.RenderResults(a.out, results); err != nil {
		return err
	}
	if p := a.surface.Path(); p != "" {
		a.println("Map written to " + p)
	}
	return nil
}

// Reset discards the results and returns the map to its pre-search state.
func (a *App) Reset(ctx context.Context, _ []string) error {
	if !a.enter(ctx, common.PathMedicalDashboard) {
		return nil
	}
	a.coordinator().Reset()
	a.println("Search cleared.")
	return nil
}

// Results prints the last results, or the full card of one record with
// "results <n>".
func (a *App) Results(ctx context.Context, args []string) error {
	if !a.enter(ctx, common.PathMedicalDashboard) {
		return nil
	}
	st := a.coordinator().Snapshot()
	if !st.SearchPerformed {
		a.println("No search yet. Set a group and run 'search'.")
		return nil
	}
	if len(args) == 0 {
		return widgets.RenderResults(a.out, st.Results)
	}

	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(st.Results) {
		a.println(fmt.Sprintf("Usage: results [1-%d]", len(st.Results)))
		return nil
	}
	return widgets.NewDonorCard(n-1, st.Results[n-1]).Render(a.out)
}

// Map describes what the map currently shows.
func (a *App) Map(ctx context.Context, _ []string) error {
	if !a.enter(ctx, common.PathMedicalDashboard) {
		return nil
	}
	a.mu.Lock()
	ms := a.mapState
	a.mu.Unlock()

	cam := ms.Camera
	label := "fallback"
	if cam.CenterSet {
		label = "search center"
	}
	a.printf("Camera: %s (%s), zoom %d\n", cam.Center.String(), label, cam.Zoom)
	if ms.Fit != nil {
		b := ms.Fit.Bounds
		a.printf("Fitted to: %.4f,%.4f .. %.4f,%.4f (padding %d, max zoom %d)\n",
			b.South, b.West, b.North, b.East, ms.Fit.Padding, ms.Fit.MaxZoom)
	}
	if ms.Overlay != nil {
		a.printf("Radius overlay: %.1f km\n", float64(ms.Overlay.RadiusMeters)/1000)
	}
	a.printf("Markers: %d\n", len(ms.Markers))
	for _, m := range ms.Markers {
		a.printf("  [%s] %s %s %s\n", m.Kind, m.Title, m.Position.String(), m.Color)
	}
	if p := a.surface.Path(); p != "" {
		a.println("GeoJSON: " + p)
	}
	return nil
}

// Stats prints the directory counters.
func (a *App) Stats(ctx context.Context, _ []string) error {
	if !a.enter(ctx, common.PathMedicalDashboard) {
		return nil
	}
	stats, err := a.coordinator().LoadStats(ctx)
	if err != nil {
		return err
	}
	return widgets.RenderStats(a.out, *stats)
}
