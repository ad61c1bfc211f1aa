package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/lifelink/internal/apperror"
	"github.com/dmitrijs2005/lifelink/internal/client/client"
	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestore_NoStoredCredential(t *testing.T) {
	fc := newFakeClient(t)
	s := newTestSession(t, fc, &memStore{})

	require.True(t, s.Snapshot().Loading())

	snap := s.Restore(context.Background())
	require.Equal(t, StateUnauthenticated, snap.State)
	require.False(t, snap.Loading())
	require.Equal(t, 0, fc.count("GetProfile"))
}

func TestRestore_ValidCredentialIsConfirmedByDirectory(t *testing.T) {
	fc := newFakeClient(t)
	token := signedToken(t, time.Now().Add(time.Hour))
	store := &memStore{cred: &models.Credential{Token: token, User: models.UserRecord{ID: "u1", Name: "stale"}}}

	s := newTestSession(t, fc, store)
	var tokenDuringCall string
	fc.getProfile = func(context.Context) (*models.UserRecord, error) {
		tokenDuringCall = s.Token()
		u := donorUser()
		return &u, nil
	}

	snap := s.Restore(context.Background())
	require.True(t, snap.Authenticated())
	require.Equal(t, "Ann", snap.User.Name)
	require.Equal(t, token, tokenDuringCall)
	require.Equal(t, "Ann", store.stored().User.Name)
}

func TestRestore_ExpiredTokenSkipsNetworkAndPurges(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{cred: &models.Credential{
		Token: signedToken(t, time.Now().Add(-time.Minute)),
		User:  donorUser(),
	}}
	s := newTestSession(t, fc, store)

	snap := s.Restore(context.Background())
	require.Equal(t, StateUnauthenticated, snap.State)
	require.Equal(t, 0, fc.count("GetProfile"))
	require.Nil(t, store.stored())
	require.Empty(t, s.Token())
}

func TestRestore_RejectedCredentialPurges(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{cred: &models.Credential{Token: "opaque-token", User: donorUser()}}
	fc.getProfile = func(context.Context) (*models.UserRecord, error) {
		fc.expire()
		return nil, &client.APIError{Status: 401, Err: client.ErrUnauthorized}
	}
	s := newTestSession(t, fc, store)

	snap := s.Restore(context.Background())
	require.Equal(t, StateUnauthenticated, snap.State)
	require.Nil(t, store.stored())
	require.False(t, snap.RedirectToLogin)
}

func TestRestore_NetworkFailurePurges(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{cred: &models.Credential{Token: "opaque-token", User: donorUser()}}
	fc.getProfile = func(context.Context) (*models.UserRecord, error) {
		return nil, client.ErrUnavailable
	}
	s := newTestSession(t, fc, store)

	require.Equal(t, StateUnauthenticated, s.Restore(context.Background()).State)
	require.Nil(t, store.stored())
}

func TestRestore_UnreadableStoreSettles(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{loadErr: errors.New("disk on fire")}
	s := newTestSession(t, fc, store)

	require.Equal(t, StateUnauthenticated, s.Restore(context.Background()).State)
	require.Equal(t, 1, store.clears)
}

func TestLogin_SuccessPersistsCredentialAndUser(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{}
	s := newTestSession(t, fc, store)
	s.Restore(context.Background())

	fc.login = func(_ context.Context, email, password string) (*models.Credential, error) {
		require.Equal(t, "er@city.org", email)
		return &models.Credential{Token: "tok", User: medicalUser()}, nil
	}

	require.NoError(t, s.Login(context.Background(), "er@city.org", "secret1"))

	snap := s.Snapshot()
	require.True(t, snap.Authenticated())
	require.Equal(t, models.RoleMedical, snap.Role())
	require.Equal(t, "tok", s.Token())
	require.Equal(t, "tok", store.stored().Token)
	require.Equal(t, "m1", store.stored().User.ID)
}

func TestLogin_FailureSurfacesMessageAndPersistsNothing(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{}
	s := newTestSession(t, fc, store)
	s.Restore(context.Background())

	fc.login = func(context.Context, string, string) (*models.Credential, error) {
		return nil, &client.APIError{Status: 400, Message: "Invalid credentials", Err: client.ErrRejected}
	}
	err := s.Login(context.Background(), "a@b.c", "nope")
	require.ErrorIs(t, err, apperror.ErrAuth)
	require.Equal(t, "Invalid credentials", s.Snapshot().Error)
	require.Equal(t, StateUnauthenticated, s.Snapshot().State)
	require.Nil(t, store.stored())

	fc.login = func(context.Context, string, string) (*models.Credential, error) {
		return nil, client.ErrUnavailable
	}
	err = s.Login(context.Background(), "a@b.c", "nope")
	require.ErrorIs(t, err, apperror.ErrTransport)
	require.Equal(t, "Login failed. Please try again.", s.Snapshot().Error)

	s.ClearError()
	require.Empty(t, s.Snapshot().Error)
}

func TestRegister_FallbackMessage(t *testing.T) {
	fc := newFakeClient(t)
	s := newTestSession(t, fc, &memStore{})
	s.Restore(context.Background())

	fc.register = func(context.Context, models.RegisterRequest) (*models.Credential, error) {
		return nil, &client.APIError{Status: 409, Err: client.ErrRejected}
	}
	err := s.Register(context.Background(), models.RegisterRequest{Email: "x@y.z"})
	require.Error(t, err)
	require.Equal(t, "Registration failed. Please try again.", s.Snapshot().Error)
}

func TestLogout_PurgesEverything(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{}
	s := loggedIn(t, fc, store, donorUser())
	require.NotNil(t, store.stored())

	s.Logout(context.Background())

	snap := s.Snapshot()
	require.Equal(t, StateUnauthenticated, snap.State)
	require.Nil(t, snap.User)
	require.Empty(t, snap.Error)
	require.Empty(t, s.Token())
	require.Nil(t, store.stored())
}

func TestLogout_StorageFailureIsNotFatal(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{}
	s := loggedIn(t, fc, store, donorUser())
	store.clearErr = errors.New("locked")

	s.Logout(context.Background())
	require.Equal(t, StateUnauthenticated, s.Snapshot().State)
}

func TestSessionExpiredEvent_ForcesLogoutAndRedirect(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{}
	s := loggedIn(t, fc, store, medicalUser())

	fc.expire()

	snap := s.Snapshot()
	require.Equal(t, StateUnauthenticated, snap.State)
	require.True(t, snap.RedirectToLogin)
	require.Nil(t, store.stored())

	require.True(t, s.ConsumeRedirect())
	require.False(t, s.ConsumeRedirect())
}

func TestSessionExpiredEvent_IgnoredWhenNotAuthenticated(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{}
	s := newTestSession(t, fc, store)
	s.Restore(context.Background())
	clears := store.clears

	fc.expire()
	require.False(t, s.Snapshot().RedirectToLogin)
	require.Equal(t, clears, store.clears)
}

func TestLogoutDuringLogin_ResultIsDropped(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{}
	s := newTestSession(t, fc, store)
	s.Restore(context.Background())

	started := make(chan struct{})
	release := make(chan struct{})
	fc.login = func(context.Context, string, string) (*models.Credential, error) {
		close(started)
		<-release
		return &models.Credential{Token: "late", User: donorUser()}, nil
	}

	done := make(chan error, 1)
	go func() { done <- s.Login(context.Background(), "ann@x.io", "secret1") }()

	<-started
	require.True(t, s.Snapshot().Busy)
	s.Logout(context.Background())
	close(release)

	require.Error(t, <-done)
	require.Equal(t, StateUnauthenticated, s.Snapshot().State)
	require.False(t, s.Snapshot().Busy)
	require.Empty(t, s.Token())
	require.Nil(t, store.stored())
}

func TestLogoutDuringMutation_PatchIsDropped(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{}
	s := loggedIn(t, fc, store, donorUser())

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.Mutate(context.Background(), "x", func(context.Context) (models.UserPatch, error) {
			close(started)
			<-release
			off := false
			return models.UserPatch{IsAvailable: &off}, nil
		})
	}()

	<-started
	s.Logout(context.Background())

	// A different user signs in before the old call resolves.
	fc.login = func(context.Context, string, string) (*models.Credential, error) {
		return &models.Credential{Token: "t2", User: medicalUser()}, nil
	}
	require.NoError(t, s.Login(context.Background(), "er@city.org", "secret1"))
	close(release)
	require.NoError(t, <-done)

	snap := s.Snapshot()
	require.Equal(t, "m1", snap.User.ID)
	require.Nil(t, snap.User.IsAvailable)
}

func TestUpdateLocalUser_MergesIntoMemoryAndStorage(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{}
	s := loggedIn(t, fc, store, donorUser())

	off := false
	require.NoError(t, s.UpdateLocalUser(context.Background(), models.UserPatch{IsAvailable: &off}))

	snap := s.Snapshot()
	require.False(t, snap.User.Available())
	require.Equal(t, "Ann", snap.User.Name)
	require.False(t, store.stored().User.Available())
	require.Equal(t, 0, fc.count("GetUserProfile"))
	require.Equal(t, 0, fc.count("GetProfile"))
}

func TestSnapshot_IsACopy(t *testing.T) {
	fc := newFakeClient(t)
	s := loggedIn(t, fc, &memStore{}, donorUser())

	snap := s.Snapshot()
	*snap.User.IsAvailable = false
	snap.User.Name = "changed"

	again := s.Snapshot()
	assert.True(t, again.User.Available())
	assert.Equal(t, "Ann", again.User.Name)
}

func TestMutate_RequiresAuthentication(t *testing.T) {
	fc := newFakeClient(t)
	s := newTestSession(t, fc, &memStore{})
	s.Restore(context.Background())

	err := s.Mutate(context.Background(), "x", func(context.Context) (models.UserPatch, error) {
		t.Fatal("must not run")
		return models.UserPatch{}, nil
	})
	require.ErrorIs(t, err, apperror.ErrAuth)
}

func TestMutate_FailureKeepsRecord(t *testing.T) {
	fc := newFakeClient(t)
	s := loggedIn(t, fc, &memStore{}, donorUser())

	err := s.Mutate(context.Background(), "Update failed", func(context.Context) (models.UserPatch, error) {
		return models.UserPatch{}, client.ErrUnavailable
	})
	require.ErrorIs(t, err, apperror.ErrTransport)
	snap := s.Snapshot()
	require.Equal(t, "Update failed", snap.Error)
	require.False(t, snap.Busy)
	require.True(t, snap.User.Available())
}

func TestRefreshProfile_MergesServerRecord(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{}
	s := loggedIn(t, fc, store, donorUser())

	fc.getUserProfile = func(context.Context) (*models.UserRecord, error) {
		u := donorUser()
		u.Phone = "+91 555"
		return &u, nil
	}
	require.NoError(t, s.RefreshProfile(context.Background()))
	require.Equal(t, "+91 555", s.Snapshot().User.Phone)
	require.Equal(t, "+91 555", store.stored().User.Phone)
}

func TestCheckExpiry(t *testing.T) {
	fc := newFakeClient(t)
	store := &memStore{}
	s := loggedIn(t, fc, store, donorUser())

	require.False(t, s.CheckExpiry(context.Background()))

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	require.True(t, s.CheckExpiry(context.Background()))
	require.True(t, s.Snapshot().RedirectToLogin)
	require.Nil(t, store.stored())

	require.False(t, s.CheckExpiry(context.Background()))
}

func TestWatch_ReceivesTransitions(t *testing.T) {
	fc := newFakeClient(t)
	s := newTestSession(t, fc, &memStore{})

	var states []State
	stop := s.Watch(func(snap Snapshot) { states = append(states, snap.State) })
	s.Restore(context.Background())
	stop()
	s.Logout(context.Background())

	require.Equal(t, []State{StateUnauthenticated}, states)
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	got, ok, err := tokenExpiry(signedToken(t, exp))
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, got.Equal(exp))

	_, _, err = tokenExpiry("not-a-jwt")
	require.Error(t, err)
	require.False(t, tokenExpired("not-a-jwt", time.Now()))
}
