package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/lifelink/internal/apperror"
	"github.com/dmitrijs2005/lifelink/internal/client/client"
	"github.com/dmitrijs2005/lifelink/internal/client/geolocation"
	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/geo"
	"github.com/dmitrijs2005/lifelink/internal/logging"
)

const (
	searchFailedMessage = "Network error during search."
	statsFailedMessage  = "Could not load donor statistics."
)

// ErrSearchSuperseded is returned by Search when a newer search, a reset or
// Close overtook it. Its response was dropped.
var ErrSearchSuperseded = errors.New("search superseded")

type SearchPhase int

const (
	PhaseIdle SearchPhase = iota
	PhaseQuerying
	PhaseResultsReady
)

func (p SearchPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseQuerying:
		return "querying"
	case PhaseResultsReady:
		return "results"
	default:
		return "unknown"
	}
}

// SearchState is a snapshot of the coordinator. Results is a private copy.
type SearchState struct {
	Query           models.SearchQuery
	Phase           SearchPhase
	Locating        bool
	Results         []models.DonorResult
	SearchPerformed bool
	Error           string
	GeoStatus       string
	Stats           *models.DonorStats
}

// SearchCoordinator owns the facility's donor query and its results.
//
// Searches supersede each other: every dispatch takes the next sequence
// number and only a response carrying the latest issued number is applied.
// Reset and Close advance the sequence too, so anything in flight becomes a
// no-op.
type SearchCoordinator struct {
	client  client.Client
	locator geolocation.Locator
	log     logging.Logger

	mu         sync.Mutex
	bloodGroup string
	center     geo.Coordinate
	radius     int
	phase      SearchPhase
	locating   bool
	results    []models.DonorResult
	performed  bool
	errMsg     string
	geoStatus  string
	stats      *models.DonorStats
	issued     uint64
	closed     bool
	watchers   watchers[SearchState]
}

func NewSearchCoordinator(c client.Client, locator geolocation.Locator, log logging.Logger) *SearchCoordinator {
	return &SearchCoordinator{
		client:  c,
		locator: locator,
		log:     log,
		radius:  models.DefaultRadiusMeters,
	}
}

func (s *SearchCoordinator) Snapshot() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SearchCoordinator) snapshotLocked() SearchState {
	st := SearchState{
		Query:           s.queryLocked(),
		Phase:           s.phase,
		Locating:        s.locating,
		Results:         models.CloneDonors(s.results),
		SearchPerformed: s.performed,
		Error:           s.errMsg,
		GeoStatus:       s.geoStatus,
	}
	if s.stats != nil {
		stats := *s.stats
		stats.BloodGroupBreakdown = append([]models.BloodGroupStats(nil), s.stats.BloodGroupBreakdown...)
		st.Stats = &stats
	}
	return st
}

func (s *SearchCoordinator) queryLocked() models.SearchQuery {
	return models.SearchQuery{BloodGroup: s.bloodGroup, Center: s.center, RadiusMeters: s.radius}
}

// Watch registers fn to receive a snapshot after every change.
func (s *SearchCoordinator) Watch(fn func(SearchState)) func() {
	s.mu.Lock()
	id := s.watchers.add(fn)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.watchers.remove(id)
		s.mu.Unlock()
	}
}

func (s *SearchCoordinator) unlockAndNotify() {
	st := s.snapshotLocked()
	fns := s.watchers.list()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (s *SearchCoordinator) SetBloodGroup(bg string) error {
	if !models.ValidBloodGroup(bg) {
		return apperror.Validation("bloodGroup", "Unknown blood group.")
	}
	s.mu.Lock()
	s.bloodGroup = bg
	s.errMsg = ""
	s.unlockAndNotify()
	return nil
}

func (s *SearchCoordinator) SetRadius(m int) error {
	if err := models.ValidateRadius(m); err != nil {
		return err
	}
	s.mu.Lock()
	s.radius = m
	s.unlockAndNotify()
	return nil
}

// SetCenter replaces the query center. The zero coordinate clears it.
func (s *SearchCoordinator) SetCenter(c geo.Coordinate) error {
	if err := c.Validate(); err != nil {
		return apperror.Validation("center", err.Error())
	}
	s.mu.Lock()
	s.center = c
	s.unlockAndNotify()
	return nil
}

// SeedFromUser defaults the center from the user's stored location when no
// center has been chosen yet. It reports whether it changed anything.
func (s *SearchCoordinator) SeedFromUser(u *models.UserRecord) bool {
	if u == nil || !u.Location.IsSet() {
		return false
	}
	s.mu.Lock()
	if !s.center.IsZero() {
		s.mu.Unlock()
		return false
	}
	s.center = u.Location.Coordinate()
	s.unlockAndNotify()
	return true
}

// AcquireDevicePosition overwrites the center with the device position,
// rounded to six decimals. On failure the center is left alone and the
// failure is reported through GeoStatus and the returned capability error.
// It never starts a search.
func (s *SearchCoordinator) AcquireDevicePosition(ctx context.Context) (geo.Coordinate, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return geo.Coordinate{}, ErrSearchSuperseded
	}
	if !geolocation.Supported(s.locator) {
		s.geoStatus = geoUnsupportedMessage
		s.unlockAndNotify()
		return geo.Coordinate{}, apperror.Capability(geoUnsupportedMessage, geolocation.ErrUnsupported)
	}
	s.locating = true
	s.geoStatus = geoLocatingMessage
	s.unlockAndNotify()

	pos, err := s.locator.CurrentPosition(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return geo.Coordinate{}, ErrSearchSuperseded
	}
	s.locating = false
	if err != nil {
		ae := capabilityError(err)
		s.geoStatus = ae.Message
		s.log.Warn(ctx, "device position unavailable", "error", err)
		s.unlockAndNotify()
		return geo.Coordinate{}, ae
	}

	pos = pos.Rounded()
	s.center = pos
	s.geoStatus = geoVerifiedMessage
	s.unlockAndNotify()
	return pos, nil
}

// Search dispatches the current selections as an immutable query. Local
// validation failures never reach the directory and leave results as
// they were; so does a failed request.
func (s *SearchCoordinator) Search(ctx context.Context) ([]models.DonorResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSearchSuperseded
	}
	q := s.queryLocked()
	if err := q.Validate(); err != nil {
		s.errMsg = apperror.UserMessage(err, searchFailedMessage)
		s.unlockAndNotify()
		return nil, err
	}
	s.issued++
	seq := s.issued
	s.phase = PhaseQuerying
	s.errMsg = ""
	s.unlockAndNotify()

	s.log.Debug(ctx, "search dispatched", "seq", seq, "blood_group", q.BloodGroup,
		"radius", q.RadiusMeters, "center", q.Center.String())

	donors, err := s.client.SearchDonors(ctx, q)

	s.mu.Lock()
	if s.closed || seq != s.issued {
		s.mu.Unlock()
		s.log.Debug(ctx, "stale search response dropped", "seq", seq)
		return nil, ErrSearchSuperseded
	}
	if err != nil {
		ae := classify(err, searchFailedMessage)
		s.phase = PhaseIdle
		s.errMsg = ae.Message
		s.unlockAndNotify()
		return nil, ae
	}

	s.results = models.CloneDonors(donors)
	if s.results == nil {
		s.results = []models.DonorResult{}
	}
	s.performed = true
	s.phase = PhaseResultsReady
	out := models.CloneDonors(s.results)
	s.log.Info(ctx, "search completed", "seq", seq, "results", len(out))
	s.unlockAndNotify()
	return out, nil
}

// Reset clears results, the searched flag and the error. Query fields are
// kept.
func (s *SearchCoordinator) Reset() {
	s.mu.Lock()
	s.issued++
	s.results = nil
	s.performed = false
	s.errMsg = ""
	s.phase = PhaseIdle
	s.unlockAndNotify()
}

// ClearError dismisses the error line.
func (s *SearchCoordinator) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.unlockAndNotify()
}

// Close tears the coordinator down. Responses still in flight are dropped.
func (s *SearchCoordinator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.issued++
}

// LoadStats fetches the dashboard counters.
func (s *SearchCoordinator) LoadStats(ctx context.Context) (*models.DonorStats, error) {
	stats, err := s.client.GetDonorStats(ctx)
	if err != nil {
		return nil, classify(err, statsFailedMessage)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSearchSuperseded
	}
	cp := *stats
	s.stats = &cp
	s.unlockAndNotify()
	return stats, nil
}
