package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Undertone0809/ecjtu/internal/domain"
	"github.com/Undertone0809/ecjtu/internal/portal"
	"github.com/Undertone0809/ecjtu/internal/service"
	"github.com/Undertone0809/ecjtu/internal/store"
)

type memSessions struct {
	mu   sync.Mutex
	byID map[string]domain.StoredSession
}

func (m *memSessions) Upsert(_ context.Context, s domain.StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[s.StudentID] = s
	return nil
}

func (m *memSessions) GetByStudentID(_ context.Context, studentID string) (domain.StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byID[studentID]
	if !ok {
		return domain.StoredSession{}, store.ErrNotFound
	}
	return s, nil
}

func (m *memSessions) GetByAccessToken(_ context.Context, token string) (domain.StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.byID {
		if s.AccessToken == token {
			return s, nil
		}
	}
	return domain.StoredSession{}, store.ErrNotFound
}

type memStore struct {
	sessions *memSessions
}

func newMemStore() *memStore {
	return &memStore{sessions: &memSessions{byID: map[string]domain.StoredSession{}}}
}

func (m *memStore) Sessions() store.Sessions   { return m.sessions }
func (m *memStore) ApplyMigrations() error     { return nil }
func (m *memStore) Close() error               { return nil }
func (m *memStore) Ping(context.Context) error { return nil }

type fakeAuthenticator struct {
	password string
	calls    int
}

func (a *fakeAuthenticator) Login(_ context.Context, studentID, password string) ([]domain.Cookie, error) {
	a.calls++
	if password != a.password {
		return nil, portal.ErrInvalidCredentials
	}
	return []domain.Cookie{{Name: "CASTGC", Value: "TGT-" + studentID, Domain: "cas.example"}}, nil
}

func newTokenService(st store.Store, auth service.Authenticator) *service.TokenService {
	return &service.TokenService{
		Store:         st,
		Authenticator: auth,
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		Issuer:        "test",
		AccessTTL:     time.Hour,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func TestCreateTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		st := newMemStore()
		svc := newTokenService(st, &fakeAuthenticator{password: "pw"})

		pair, err := svc.CreateTokens(ctx, "2022170101", "pw")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.Equal(t, int64(3600), pair.ExpiresIn)

		studentID, err := svc.ResolveStudentID(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "2022170101", studentID)

		cookies, err := svc.CookiesFor(ctx, "2022170101")
		require.NoError(t, err)
		require.Len(t, cookies, 1)
		require.Equal(t, "CASTGC", cookies[0].Name)
	})

	t.Run("failed login issues nothing", func(t *testing.T) {
		st := newMemStore()
		svc := newTokenService(st, &fakeAuthenticator{password: "pw"})

		_, err := svc.CreateTokens(ctx, "2022170101", "wrong")
		require.ErrorIs(t, err, portal.ErrInvalidCredentials)

		_, err = svc.CookiesFor(ctx, "2022170101")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("second login overwrites not duplicates", func(t *testing.T) {
		st := newMemStore()
		svc := newTokenService(st, &fakeAuthenticator{password: "pw"})

		first, err := svc.CreateTokens(ctx, "2022170101", "pw")
		require.NoError(t, err)
		// Keep the clock moving so the second pair differs.
		svc.Now = func() time.Time { return time.Now().Add(time.Second) }
		second, err := svc.CreateTokens(ctx, "2022170101", "pw")
		require.NoError(t, err)
		require.NotEqual(t, first.AccessToken, second.AccessToken)

		// The rotated-away token no longer resolves.
		_, err = svc.ResolveStudentID(ctx, first.AccessToken)
		require.ErrorIs(t, err, service.ErrTokenInvalid)

		studentID, err := svc.ResolveStudentID(ctx, second.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "2022170101", studentID)
	})
}

func TestResolveStudentID(t *testing.T) {
	ctx := context.Background()

	t.Run("garbage token", func(t *testing.T) {
		svc := newTokenService(newMemStore(), &fakeAuthenticator{password: "pw"})
		_, err := svc.ResolveStudentID(ctx, "not-a-token")
		require.ErrorIs(t, err, service.ErrTokenInvalid)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		st := newMemStore()
		svc := newTokenService(st, &fakeAuthenticator{password: "pw"})
		pair, err := svc.CreateTokens(ctx, "2022170101", "pw")
		require.NoError(t, err)

		other := newTokenService(st, &fakeAuthenticator{password: "pw"})
		other.AccessSecret = []byte("different")
		_, err = other.ResolveStudentID(ctx, pair.AccessToken)
		require.ErrorIs(t, err, service.ErrTokenInvalid)
	})

	t.Run("expired current token", func(t *testing.T) {
		st := newMemStore()
		svc := newTokenService(st, &fakeAuthenticator{password: "pw"})
		pair, err := svc.CreateTokens(ctx, "2022170101", "pw")
		require.NoError(t, err)

		svc.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = svc.ResolveStudentID(ctx, pair.AccessToken)
		require.ErrorIs(t, err, service.ErrTokenExpired)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates both tokens", func(t *testing.T) {
		st := newMemStore()
		auth := &fakeAuthenticator{password: "pw"}
		svc := newTokenService(st, auth)

		first, err := svc.CreateTokens(ctx, "2022170101", "pw")
		require.NoError(t, err)

		svc.Now = func() time.Time { return time.Now().Add(time.Second) }
		second, err := svc.Refresh(ctx, first.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, first.AccessToken, second.AccessToken)
		require.Equal(t, 2, auth.calls)

		studentID, err := svc.ResolveStudentID(ctx, second.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "2022170101", studentID)

		_, err = svc.ResolveStudentID(ctx, first.AccessToken)
		require.ErrorIs(t, err, service.ErrTokenInvalid)
	})

	t.Run("garbage refresh token", func(t *testing.T) {
		svc := newTokenService(newMemStore(), &fakeAuthenticator{password: "pw"})
		_, err := svc.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, service.ErrTokenInvalid)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		st := newMemStore()
		svc := newTokenService(st, &fakeAuthenticator{password: "pw"})
		pair, err := svc.CreateTokens(ctx, "2022170101", "pw")
		require.NoError(t, err)

		_, err = svc.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, service.ErrTokenInvalid)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		st := newMemStore()
		svc := newTokenService(st, &fakeAuthenticator{password: "pw"})
		pair, err := svc.CreateTokens(ctx, "2022170101", "pw")
		require.NoError(t, err)

		svc.Now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrTokenExpired)
	})

	t.Run("upstream rejects the carried password", func(t *testing.T) {
		st := newMemStore()
		auth := &fakeAuthenticator{password: "pw"}
		svc := newTokenService(st, auth)
		pair, err := svc.CreateTokens(ctx, "2022170101", "pw")
		require.NoError(t, err)

		// Password changed upstream since the refresh token was minted.
		auth.password = "rotated"
		_, err = svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, portal.ErrInvalidCredentials)
	})
}
