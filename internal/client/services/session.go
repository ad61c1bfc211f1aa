// Package services holds the client's stateful application services: the
// session state machine, donor self-service, the registration form and the
// donor search coordinator.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/lifelink/internal/apperror"
	"github.com/dmitrijs2005/lifelink/internal/client/client"
	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/common"
	"github.com/dmitrijs2005/lifelink/internal/logging"
)

const (
	loginFailedMessage    = "Login failed. Please try again."
	registerFailedMessage = "Registration failed. Please try again."
	sessionExpiredMessage = "Session expired. Please log in again."
)

type State int

const (
	StateRestoring State = iota
	StateUnauthenticated
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// CredentialStore is the durable home of the credential. Only Session
// writes to it.
type CredentialStore interface {
	Load(ctx context.Context) (*models.Credential, error)
	Save(ctx context.Context, cred models.Credential) error
	SaveUser(ctx context.Context, user models.UserRecord) error
	Clear(ctx context.Context) error
}

// Snapshot is an immutable view of the session. User is a private copy.
type Snapshot struct {
	State State
	User  *models.UserRecord
	Busy  bool
	Error string
	// RedirectToLogin is set by a forced logout and cleared by
	// ConsumeRedirect.
	RedirectToLogin bool
}

func (s Snapshot) Loading() bool       { return s.State == StateRestoring }
func (s Snapshot) Authenticated() bool { return s.State == StateAuthenticated && s.User != nil }

func (s Snapshot) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Ticket identifies the session generation a call started in. A result
// carrying a stale ticket is dropped.
type Ticket struct {
	epoch uint64
}

// Session owns the identity, the credential and the loading/error status.
// No lock is held across directory calls; every result is applied only if
// the session has not been torn down in the meantime.
type Session struct {
	client client.Client
	store  CredentialStore
	log    logging.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    State
	token    string
	user     *models.UserRecord
	busy     int
	errMsg   string
	redirect bool
	epoch    uint64

	watchers watchers[Snapshot]

	unsubscribe func()
}

// NewSession wires the session to c and subscribes to its session-expiry
// events. The session starts in StateRestoring; call Restore.
func NewSession(c client.Client, store CredentialStore, log logging.Logger) *Session {
	s := &Session{
		client: c,
		store:  store,
		log:    log,
		now:    time.Now,
		state:  StateRestoring,
	}
	s.unsubscribe = c.Subscribe(s.onClientEvent)
	return s
}

// Close detaches the session from the client's events.
func (s *Session) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// Token implements client.TokenSource.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:           s.state,
		Busy:            s.busy > 0,
		Error:           s.errMsg,
		RedirectToLogin: s.redirect,
	}
	if s.user != nil {
		u := s.user.Clone()
		snap.User = &u
	}
	return snap
}

// Watch registers fn to receive a snapshot after every state change.
func (s *Session) Watch(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.watchers.add(fn)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		s.watchers.remove(id)
		s.mu.Unlock()
	}
}

// unlockAndNotify releases mu and then delivers the new snapshot, so
// watchers may call back into the session.
func (s *Session) unlockAndNotify() {
	snap := s.snapshotLocked()
	fns := s.watchers.list()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// Ticket returns the current generation.
func (s *Session) Ticket() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Ticket{epoch: s.epoch}
}

// Restore brings the session out of StateRestoring. A stored credential is
// accepted only after the directory confirms it; anything else purges
// storage. It always ends in a settled state.
func (s *Session) Restore(ctx context.Context) Snapshot {
	s.mu.Lock()
	if s.state != StateRestoring {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	epoch := s.epoch
	s.mu.Unlock()

	cred, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn(ctx, "stored credential unreadable", "error", err)
		return s.abortRestore(ctx, epoch)
	}
	if cred == nil {
		return s.abortRestore(ctx, epoch)
	}
	if tokenExpired(cred.Token, s.now()) {
		s.log.Info(ctx, "stored credential expired")
		return s.abortRestore(ctx, epoch)
	}

	s.mu.Lock()
	if s.epoch != epoch {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	s.token = cred.Token
	s.mu.Unlock()

	user, err := s.client.GetProfile(ctx)
	if err != nil {
		s.log.Warn(ctx, "credential rejected on restore", "error", err)
		return s.abortRestore(ctx, epoch)
	}

	s.mu.Lock()
	if s.epoch != epoch {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	if err := s.store.SaveUser(ctx, *user); err != nil {
		s.log.Warn(ctx, "persist restored user", "error", err)
	}
	s.state = StateAuthenticated
	u := user.Clone()
	s.user = &u
	s.log.Info(ctx, "session restored", "user_id", u.ID, "role", string(u.Role))
	s.unlockAndNotify()
	return s.Snapshot()
}

func (s *Session) abortRestore(ctx context.Context, epoch uint64) Snapshot {
	s.mu.Lock()
	if s.epoch != epoch {
		defer s.mu.Unlock()
		return s.snapshotLocked()
	}
	s.epoch++
	s.clearLocked(ctx)
	s.unlockAndNotify()
	return s.Snapshot()
}

// clearLocked purges memory and storage and settles in
// StateUnauthenticated. Storage failures are logged only.
func (s *Session) clearLocked(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.Error(ctx, "clear stored credential", "error", err)
	}
	s.state = StateUnauthenticated
	s.token = ""
	s.user = nil
	s.errMsg = ""
	s.busy = 0
}

func (s *Session) Login(ctx context.Context, email, password string) error {
	return s.authenticate(ctx, loginFailedMessage, func(ctx context.Context) (*models.Credential, error) {
		return s.client.Login(ctx, email, password)
	})
}

// Register submits an already validated registration form.
func (s *Session) Register(ctx context.Context, req models.RegisterRequest) error {
	return s.authenticate(ctx, registerFailedMessage, func(ctx context.Context) (*models.Credential, error) {
		return s.client.Register(ctx, req)
	})
}

func (s *Session) authenticate(ctx context.Context, fallback string, call func(context.Context) (*models.Credential, error)) error {
	s.mu.Lock()
	s.errMsg = ""
	s.busy++
	epoch := s.epoch
	s.unlockAndNotify()

	cred, err := call(ctx)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return apperror.Auth("Session changed while signing in.", common.ErrNotAuthenticated)
	}
	s.busy--
	if err != nil {
		ae := classifyAuth(err, fallback)
		s.errMsg = ae.Message
		s.unlockAndNotify()
		return ae
	}

	if err := s.store.Save(ctx, *cred); err != nil {
		s.log.Error(ctx, "persist credential", "error", err)
	}
	s.state = StateAuthenticated
	s.token = cred.Token
	u := cred.User.Clone()
	s.user = &u
	s.redirect = false
	s.log.Info(ctx, "logged in", "user_id", u.ID, "role", string(u.Role))
	s.unlockAndNotify()
	return nil
}

// Logout purges the credential and identity. Calls still in flight become
// no-ops.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	s.epoch++
	s.clearLocked(ctx)
	s.log.Info(ctx, "logged out")
	s.unlockAndNotify()
}

func (s *Session) onClientEvent(ev client.Event) {
	if ev != client.EventSessionExpired {
		return
	}
	s.expire(context.Background(), "directory rejected credential")
}

// expire is the forced logout: it only acts on an authenticated session
// and leaves the redirect flag set for the view layer.
func (s *Session) expire(ctx context.Context, reason string) bool {
	s.mu.Lock()
	if s.state != StateAuthenticated {
		s.mu.Unlock()
		return false
	}
	s.epoch++
	s.clearLocked(ctx)
	s.redirect = true
	s.errMsg = sessionExpiredMessage
	s.log.Warn(ctx, "session expired", "reason", reason)
	s.unlockAndNotify()
	return true
}

// CheckExpiry forces a logout when the held token's exp claim has passed.
// It reports whether it did.
func (s *Session) CheckExpiry(ctx context.Context) bool {
	s.mu.Lock()
	tok, state := s.token, s.state
	s.mu.Unlock()

	if state != StateAuthenticated || !tokenExpired(tok, s.now()) {
		return false
	}
	return s.expire(ctx, "token exp claim passed")
}

// ConsumeRedirect returns and clears the forced-logout redirect flag.
func (s *Session) ConsumeRedirect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.redirect
	s.redirect = false
	return r
}

func (s *Session) ClearError() {
	s.mu.Lock()
	if s.errMsg == "" {
		s.mu.Unlock()
		return
	}
	s.errMsg = ""
	s.unlockAndNotify()
}

// UpdateLocalUser merges a server-confirmed patch into the in-memory and
// persisted user record.
func (s *Session) UpdateLocalUser(ctx context.Context, patch models.UserPatch) error {
	_, err := s.ApplyConfirmed(ctx, s.Ticket(), patch)
	return err
}

// ApplyConfirmed merges patch if the session is still in the generation
// identified by t. applied is false when the patch was dropped.
func (s *Session) ApplyConfirmed(ctx context.Context, t Ticket, patch models.UserPatch) (applied bool, err error) {
	s.mu.Lock()
	if s.epoch != t.epoch || s.state != StateAuthenticated || s.user == nil {
		s.mu.Unlock()
		return false, nil
	}

	u := patch.Apply(*s.user)
	s.user = &u
	if perr := s.store.SaveUser(ctx, u); perr != nil {
		s.log.Error(ctx, "persist user record", "error", perr)
		err = apperror.Transport("Could not save your profile locally.", perr)
	}
	s.unlockAndNotify()
	return true, err
}

// Mutate runs a server mutation with the busy flag raised. call returns
// the confirmed patch, which is merged only if the session survived the
// call.
func (s *Session) Mutate(ctx context.Context, fallback string, call func(ctx context.Context) (models.UserPatch, error)) error {
	s.mu.Lock()
	if s.state != StateAuthenticated {
		s.mu.Unlock()
		return apperror.Auth("Please log in first.", common.ErrNotAuthenticated)
	}
	s.errMsg = ""
	s.busy++
	t := Ticket{epoch: s.epoch}
	s.unlockAndNotify()

	patch, err := call(ctx)

	s.mu.Lock()
	if s.epoch != t.epoch {
		s.mu.Unlock()
		if err != nil {
			return classify(err, fallback)
		}
		return nil
	}
	s.busy--
	if err != nil {
		ae := classify(err, fallback)
		s.errMsg = ae.Message
		s.unlockAndNotify()
		return ae
	}
	s.unlockAndNotify()

	_, err = s.ApplyConfirmed(ctx, t, patch)
	return err
}

// RefreshProfile re-reads the donor profile and merges it.
func (s *Session) RefreshProfile(ctx context.Context) error {
	return s.Mutate(ctx, "Could not load your profile.", func(ctx context.Context) (models.UserPatch, error) {
		u, err := s.client.GetUserProfile(ctx)
		if err != nil {
			return models.UserPatch{}, err
		}
		return models.PatchFromUser(*u), nil
	})
}
