package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/lifelink/internal/client/client"
	"github.com/dmitrijs2005/lifelink/internal/client/config"
	"github.com/dmitrijs2005/lifelink/internal/client/geolocation"
	"github.com/dmitrijs2005/lifelink/internal/client/mapview"
	"github.com/dmitrijs2005/lifelink/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/lifelink/internal/client/routes"
	"github.com/dmitrijs2005/lifelink/internal/client/services"
	"github.com/dmitrijs2005/lifelink/internal/common"
	"github.com/dmitrijs2005/lifelink/internal/cryptox"
	"github.com/dmitrijs2005/lifelink/internal/logging"
	"github.com/robfig/cron/v3"
	"github.com/rs/xid"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	api     *client.HTTPClient
	locator geolocation.Locator

	session      *services.Session
	donor        *services.DonorService
	registration *services.RegistrationService

	surface *mapview.GeoJSONSurface
	mapSync *mapview.Synchronizer

	reader *bufio.Reader
	out    io.Writer

	cron *cron.Cron

	mu         sync.Mutex
	view       routes.View
	search     *services.SearchCoordinator
	unwatch    func()
	mapState   mapview.State
	lastUserID string
	notices    []string
}

// NewApp opens local storage, loads the credential key and wires the
// directory client, the session and the dashboards together.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	log = log.With("run", xid.New().String())

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	key, err := cryptox.LoadOrCreateKey(c.KeyFilePath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load credential key: %w", err)
	}
	sealer, err := cryptox.NewSealer(key)
	common.WipeByteArray(key)
	if err != nil {
		db.Close()
		return nil, err
	}

	api, err := client.NewHTTPClient(c.ServerBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log.With("component", "directory")),
	)
	if err != nil {
		db.Close()
		return nil, err
	}

	session := services.NewSession(api, credentials.NewStore(db, sealer), log.With("component", "session"))
	api.SetTokenSource(session)

	pos, ok := c.DevicePosition()
	locator := geolocation.WithTimeout(geolocation.New(ok, pos), c.GeolocationTimeout)

	surface := mapview.NewGeoJSONSurface(c.MapOutputPath)

	a := &App{
		config:       c,
		log:          log,
		db:           db,
		api:          api,
		locator:      locator,
		session:      session,
		donor:        services.NewDonorService(session, api, locator, log.With("component", "donor")),
		registration: services.NewRegistrationService(session, locator, log.With("component", "registration")),
		surface:      surface,
		mapSync:      mapview.NewSynchronizer(surface, log.With("component", "map")),
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
	}
	a.view, _ = routes.Lookup(common.PathLanding)
	a.resetDiscovery(ctx)
	return a, nil
}

// Run restores the previous session, starts the credential watcher and
// serves the REPL until the user quits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	a.println("Welcome to LifeLink (type 'help' for commands)")

	snap := a.session.Restore(ctx)
	a.observeSession(ctx)
	if snap.Authenticated() {
		a.println(fmt.Sprintf("Welcome back, %s.", snap.User.Name))
		a.navigate(ctx, routes.DashboardFor(snap.Role()))
	}

	if err := a.StartCredentialWatcher(ctx); err != nil {
		return err
	}

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// Close stops background jobs and releases local storage.
func (a *App) Close() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	a.mu.Lock()
	if a.search != nil {
		a.unwatch()
		a.search.Close()
	}
	a.mu.Unlock()
	a.session.Close()
	if err := a.db.Close(); err != nil {
		a.log.Error(context.Background(), "close database", "error", err)
	}
}

// StartCredentialWatcher schedules the periodic check of the held token's
// expiry. A passed exp claim logs the user out; the REPL reports it at the
// next prompt.
func (a *App) StartCredentialWatcher(ctx context.Context) error {
	a.cron = cron.New()
	schedule := fmt.Sprintf("@every %s", a.config.CredentialCheckInterval)
	if _, err := a.cron.AddFunc(schedule, func() { a.checkCredential(ctx) }); err != nil {
		return fmt.Errorf("schedule credential watcher: %w", err)
	}
	a.cron.Start()
	return nil
}

func (a *App) checkCredential(ctx context.Context) {
	if a.session.CheckExpiry(ctx) {
		a.log.Warn(ctx, "credential expired, logged out")
	}
}

// resetDiscovery replaces the medical search state with a fresh one, the
// way leaving the console discards it.
func (a *App) resetDiscovery(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.search != nil {
		a.unwatch()
		a.search.Close()
	}
	a.search = services.NewSearchCoordinator(a.api, a.locator, a.log.With("component", "search"))
	a.unwatch = a.search.Watch(func(st services.SearchState) { a.syncMap(ctx, st) })
	a.syncMapLocked(ctx, a.search.Snapshot())
}

func (a *App) coordinator() *services.SearchCoordinator {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.search
}

func mapInput(st services.SearchState) mapview.Input {
	return mapview.Input{
		Center:          st.Query.Center,
		RadiusMeters:    st.Query.RadiusMeters,
		SearchPerformed: st.SearchPerformed,
		Results:         st.Results,
	}
}

func (a *App) syncMap(ctx context.Context, st services.SearchState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.syncMapLocked(ctx, st)
}

func (a *App) syncMapLocked(ctx context.Context, st services.SearchState) {
	ms, err := a.mapSync.Apply(ctx, mapInput(st))
	if err != nil {
		a.log.Warn(ctx, "map update failed", "error", err)
	}
	a.mapState = ms
}

// observeSession reacts to identity changes since the last prompt: a new
// or departed user gets fresh search state, and a forced logout sends the
// REPL to the login view.
func (a *App) observeSession(ctx context.Context) {
	snap := a.session.Snapshot()

	id := ""
	if snap.User != nil {
		id = snap.User.ID
	}
	a.mu.Lock()
	changed := id != a.lastUserID
	a.lastUserID = id
	a.mu.Unlock()

	if changed {
		a.resetDiscovery(ctx)
	}

	if a.session.ConsumeRedirect() {
		if snap.Error != "" {
			a.notice(snap.Error)
		}
		a.navigate(ctx, common.PathLogin)
		return
	}

	a.mu.Lock()
	current := a.view.Path
	a.mu.Unlock()
	if !snap.Loading() {
		a.navigate(ctx, current)
	}
}

func (a *App) notice(msg string) {
	a.mu.Lock()
	a.notices = append(a.notices, msg)
	a.mu.Unlock()
}

func (a *App) flushNotices() {
	a.mu.Lock()
	notices := a.notices
	a.notices = nil
	a.mu.Unlock()

	for _, n := range notices {
		a.println("! " + n)
	}
}

func (a *App) status() string {
	snap := a.session.Snapshot()
	a.mu.Lock()
	path := a.view.Path
	a.mu.Unlock()

	who := "guest"
	if snap.Authenticated() {
		who = snap.User.Email
	}
	if snap.Busy {
		who += " busy"
	}
	return fmt.Sprintf("(%s %s)", who, path)
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
