package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifelink/internal/client/client"
	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fakeClient implements client.Client with per-method hooks. A hook left
// nil fails the test if it is called.
type fakeClient struct {
	t *testing.T

	mu    sync.Mutex
	calls map[string]int
	subs  []func(client.Event)

	login          func(ctx context.Context, email, password string) (*models.Credential, error)
	register       func(ctx context.Context, req models.RegisterRequest) (*models.Credential, error)
	getProfile     func(ctx context.Context) (*models.UserRecord, error)
	getUserProfile func(ctx context.Context) (*models.UserRecord, error)
	updateProfile  func(ctx context.Context, upd models.ProfileUpdate) (*models.UserRecord, error)
	updateLocation func(ctx context.Context, upd models.LocationUpdate) (*models.GeoPoint, error)
	toggle         func(ctx context.Context) (bool, error)
	search         func(ctx context.Context, q models.SearchQuery) ([]models.DonorResult, error)
	stats          func(ctx context.Context) (*models.DonorStats, error)
}

func newFakeClient(t *testing.T) *fakeClient {
	return &fakeClient{t: t, calls: map[string]int{}}
}

func (f *fakeClient) record(name string, hooked bool) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
	if !hooked {
		f.t.Fatalf("unexpected call to %s", name)
	}
}

func (f *fakeClient) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

// expire plays the part of a 401 seen by the transport.
func (f *fakeClient) expire() {
	f.mu.Lock()
	subs := append([]func(client.Event){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn(client.EventSessionExpired)
	}
}

func (f *fakeClient) Subscribe(fn func(client.Event)) func() {
	f.mu.Lock()
	f.subs = append(f.subs, fn)
	f.mu.Unlock()
	return func() {}
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*models.Credential, error) {
	f.record("Login", f.login != nil)
	return f.login(ctx, email, password)
}

func (f *fakeClient) Register(ctx context.Context, req models.RegisterRequest) (*models.Credential, error) {
	f.record("Register", f.register != nil)
	return f.register(ctx, req)
}

func (f *fakeClient) GetProfile(ctx context.Context) (*models.UserRecord, error) {
	f.record("GetProfile", f.getProfile != nil)
	return f.getProfile(ctx)
}

func (f *fakeClient) GetUserProfile(ctx context.Context) (*models.UserRecord, error) {
	f.record("GetUserProfile", f.getUserProfile != nil)
	return f.getUserProfile(ctx)
}

func (f *fakeClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.UserRecord, error) {
	f.record("UpdateProfile", f.updateProfile != nil)
	return f.updateProfile(ctx, upd)
}

func (f *fakeClient) UpdateLocation(ctx context.Context, upd models.LocationUpdate) (*models.GeoPoint, error) {
	f.record("UpdateLocation", f.updateLocation != nil)
	return f.updateLocation(ctx, upd)
}

func (f *fakeClient) ToggleAvailability(ctx context.Context) (bool, error) {
	f.record("ToggleAvailability", f.toggle != nil)
	return f.toggle(ctx)
}

func (f *fakeClient) SearchDonors(ctx context.Context, q models.SearchQuery) ([]models.DonorResult, error) {
	f.record("SearchDonors", f.search != nil)
	return f.search(ctx, q)
}

func (f *fakeClient) GetDonorStats(ctx context.Context) (*models.DonorStats, error) {
	f.record("GetDonorStats", f.stats != nil)
	return f.stats(ctx)
}

// memStore is an in-memory CredentialStore.
type memStore struct {
	mu       sync.Mutex
	cred     *models.Credential
	loadErr  error
	clearErr error
	clears   int
}

func (m *memStore) Load(context.Context) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.cred == nil {
		return nil, nil
	}
	c := *m.cred
	c.User = c.User.Clone()
	return &c, nil
}

func (m *memStore) Save(_ context.Context, cred models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cred.User = cred.User.Clone()
	m.cred = &cred
	return nil
}

func (m *memStore) SaveUser(_ context.Context, u models.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return nil
	}
	m.cred.User = u.Clone()
	return nil
}

func (m *memStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.cred = nil
	return m.clearErr
}

func (m *memStore) stored() *models.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return nil
	}
	c := *m.cred
	return &c
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func donorUser() models.UserRecord {
	avail := true
	return models.UserRecord{
		ID: "u1", Name: "Ann", Email: "ann@x.io", Role: models.RoleDonor, BloodGroup: "O+",
		IsAvailable: &avail,
		Location:    &models.GeoPoint{Type: "Point", Coordinates: [2]float64{85.82, 20.3}},
	}
}

func medicalUser() models.UserRecord {
	return models.UserRecord{
		ID: "m1", Name: "City Hospital", Email: "er@city.org", Role: models.RoleMedical,
		Location: &models.GeoPoint{Type: "Point", Coordinates: [2]float64{85.82, 20.30}},
	}
}

func newTestSession(t *testing.T, fc *fakeClient, store *memStore) *Session {
	t.Helper()
	s := NewSession(fc, store, logging.Nop())
	t.Cleanup(s.Close)
	return s
}

// loggedIn returns a session already authenticated as u.
func loggedIn(t *testing.T, fc *fakeClient, store *memStore, u models.UserRecord) *Session {
	t.Helper()
	token := signedToken(t, time.Now().Add(time.Hour))
	prev := fc.login
	fc.login = func(context.Context, string, string) (*models.Credential, error) {
		return &models.Credential{Token: token, User: u}, nil
	}
	s := newTestSession(t, fc, store)
	require.NoError(t, s.Login(context.Background(), u.Email, "secret1"))
	fc.login = prev
	return s
}
