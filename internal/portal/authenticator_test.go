package portal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Undertone0809/ecjtu/internal/portal"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("full flow establishes a session", func(t *testing.T) {
		up := newUpstream(t)
		c := up.client(t, portal.WithCredentials(testStudentID, testPassword))

		require.NoError(t, c.Login(ctx))
		require.Equal(t, 1, up.loginCount())

		var names []string
		for _, ck := range c.Cookies() {
			names = append(names, ck.Name)
		}
		require.Contains(t, names, "CASTGC")
		require.Contains(t, names, "JSESSIONID")
	})

	t.Run("rejected credentials", func(t *testing.T) {
		up := newUpstream(t)
		c := up.client(t, portal.WithCredentials(testStudentID, "wrong"))

		err := c.Login(ctx)
		require.ErrorIs(t, err, portal.ErrInvalidCredentials)
		require.True(t, portal.IsAuthError(err))
	})

	t.Run("login page without ticket field", func(t *testing.T) {
		up := newUpstream(t)
		up.omitTicket = true
		c := up.client(t, portal.WithCredentials(testStudentID, testPassword))

		require.ErrorIs(t, c.Login(ctx), portal.ErrLoginTicket)
	})

	t.Run("broken password encryption endpoint", func(t *testing.T) {
		up := newUpstream(t)
		up.brokenEnc = true
		c := up.client(t, portal.WithCredentials(testStudentID, testPassword))

		err := c.Login(ctx)
		var encErr *portal.EncryptError
		require.ErrorAs(t, err, &encErr)
	})

	t.Run("handoff without location header", func(t *testing.T) {
		up := newUpstream(t)
		up.omitLocation = true
		c := up.client(t, portal.WithCredentials(testStudentID, testPassword))

		err := c.Login(ctx)
		var svcErr *portal.ServiceLoginError
		require.ErrorAs(t, err, &svcErr)
		require.Equal(t, 200, svcErr.StatusCode)
	})

	t.Run("no bound credentials", func(t *testing.T) {
		up := newUpstream(t)
		c := up.client(t)

		require.ErrorIs(t, c.Login(ctx), portal.ErrNoCredentials)
	})
}
