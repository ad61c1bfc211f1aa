package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/lifelink/internal/client/routes"
	"github.com/dmitrijs2005/lifelink/internal/common"
)

func (a *App) access() routes.Access {
	snap := a.session.Snapshot()
	return routes.Access{
		Loading:       snap.Loading(),
		Authenticated: snap.Authenticated(),
		Role:          snap.Role(),
	}
}

// navigate moves the REPL to path through the route gate and returns the
// view it ended up on. ok is false while the session is still restoring.
func (a *App) navigate(ctx context.Context, path string) (view routes.View, ok bool) {
	v, d := routes.Resolve(a.access(), path)
	if d.Outcome == routes.Wait {
		a.println("Loading...")
		return v, false
	}

	a.mu.Lock()
	changed := a.view.Path != v.Path
	a.view = v
	a.mu.Unlock()

	if changed {
		a.println(fmt.Sprintf("-> %s (%s)", v.Title, v.Path))
		a.log.Debug(ctx, "view changed", "path", v.Path, "requested", path)
		if v.Path == common.PathMedicalDashboard {
			a.coordinator().SeedFromUser(a.session.Snapshot().User)
		}
	}
	return v, true
}

// enter navigates to path and reports whether that exact view was
// admitted. Commands use it to make sure they run on their own view.
func (a *App) enter(ctx context.Context, path string) bool {
	v, ok := a.navigate(ctx, path)
	if !ok {
		return false
	}
	if v.Path != path {
		if !a.session.Snapshot().Authenticated() {
			a.println("Please log in first.")
		} else {
			a.println("That command is not available for your account.")
		}
		return false
	}
	return true
}

// GoTo implements the goto command.
func (a *App) GoTo(ctx context.Context, args []string) error {
	if len(args) != 1 {
		a.println("Usage: goto <path>")
		return nil
	}
	v, ok := a.navigate(ctx, args[0])
	if want, known := routes.Lookup(args[0]); ok && (!known || want.Path != v.Path) {
		a.println(fmt.Sprintf("%s is not available; showing %s instead.", args[0], v.Path))
	}
	return nil
}
