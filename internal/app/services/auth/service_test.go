package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/services/auth"
	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
)

func newService(t *testing.T) (*auth.Service, *memory.SessionStore) {
	t.Helper()
	sessions := memory.NewSessionStore()
	return &auth.Service{
		Users:      memory.NewUserRepository(),
		Sessions:   sessions,
		Passwords:  &security.BcryptHasher{Cost: 4},
		Tokens:     &security.RandomTokenGenerator{},
		SessionTTL: time.Hour,
	}, sessions
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("guest by default", func(t *testing.T) {
		svc, _ := newService(t)
		result, err := svc.Register(ctx, auth.RegisterParams{
			Email:    "Ana@Example.com",
			Name:     "Ana",
			Password: "supersecret",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "ana@example.com", result.User.Email)
		assert.True(t, result.User.HasRole(domainuser.RoleGuest))
		assert.False(t, result.User.HasRole(domainuser.RoleHost))
		assert.NotEqual(t, "supersecret", result.User.PasswordHash)
	})

	t.Run("host role on request", func(t *testing.T) {
		svc, _ := newService(t)
		result, err := svc.Register(ctx, auth.RegisterParams{
			Email:      "bea@example.com",
			Name:       "Bea",
			Password:   "supersecret",
			WantToHost: true,
		})
		require.NoError(t, err)
		assert.True(t, result.User.HasRole(domainuser.RoleHost))
	})

	t.Run("short password rejected", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Register(ctx, auth.RegisterParams{
			Email:    "carl@example.com",
			Name:     "Carl",
			Password: "short",
		})
		assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		svc, _ := newService(t)
		params := auth.RegisterParams{Email: "dup@example.com", Name: "Dup", Password: "supersecret"}
		_, err := svc.Register(ctx, params)
		require.NoError(t, err)
		_, err = svc.Register(ctx, params)
		assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Register(ctx, auth.RegisterParams{Name: "NoMail", Password: "supersecret"})
		assert.ErrorIs(t, err, domainuser.ErrEmailRequired)

		_, err = svc.Register(ctx, auth.RegisterParams{Email: "e@example.com", Password: "supersecret"})
		assert.ErrorIs(t, err, domainuser.ErrNameRequired)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.Register(ctx, auth.RegisterParams{
		Email:    "ana@example.com",
		Name:     "Ana",
		Password: "supersecret",
	})
	require.NoError(t, err)

	t.Run("correct credentials issue a fresh token", func(t *testing.T) {
		result, err := svc.Login(ctx, auth.LoginParams{Email: "ANA@example.com", Password: "supersecret"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginParams{Email: "ana@example.com", Password: "wrongpass"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email indistinguishable from wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginParams{Email: "ghost@example.com", Password: "supersecret"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token resolves to its user", func(t *testing.T) {
		svc, _ := newService(t)
		result, err := svc.Register(ctx, auth.RegisterParams{
			Email:    "ana@example.com",
			Name:     "Ana",
			Password: "supersecret",
		})
		require.NoError(t, err)

		user, err := svc.Resolve(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, user.ID)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Resolve(ctx, "not-a-token")
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	})

	t.Run("expired session evicted", func(t *testing.T) {
		svc, sessions := newService(t)
		result, err := svc.Register(ctx, auth.RegisterParams{
			Email:    "ana@example.com",
			Name:     "Ana",
			Password: "supersecret",
		})
		require.NoError(t, err)

		// Rewrite the stored session so it already expired.
		stored, err := sessions.Get(ctx, domainauth.Token(result.Token))
		require.NoError(t, err)
		stored.ExpiresAt = time.Now().Add(-time.Minute)
		require.NoError(t, sessions.Save(ctx, stored))

		_, err = svc.Resolve(ctx, result.Token)
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

		_, err = sessions.Get(ctx, domainauth.Token(result.Token))
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		svc, _ := newService(t)
		result, err := svc.Register(ctx, auth.RegisterParams{
			Email:    "ana@example.com",
			Name:     "Ana",
			Password: "supersecret",
		})
		require.NoError(t, err)

		require.NoError(t, svc.Logout(ctx, result.Token))
		_, err = svc.Resolve(ctx, result.Token)
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	})
}
