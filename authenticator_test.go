package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	auth "github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAutherLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("successful login returns a signed token", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		identity := TestIdentity{
			id:       "8b9130b6-4903-4b34-a04a-37e53ff8e178",
			username: "pepe",
			email:    "pepe.rone@example.com",
			role:     auth.RoleAdmin,
		}
		provider.On("VerifyIdentity", ctx, "pepe", "password-123").Return(identity, nil)

		sink := &capturingSink{}
		authenticator := auth.NewAuthenticator(provider, newMockConfig()).WithActivitySink(sink)

		token, err := authenticator.Login(ctx, "pepe", "password-123")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := authenticator.TokenService().Validate(token)
		require.NoError(t, err)
		assert.Equal(t, identity.ID(), claims.UserID())
		assert.Equal(t, identity.ID(), claims.Subject())
		assert.Equal(t, auth.RoleAdmin, claims.Role())

		assert.True(t, sink.has(auth.ActivityEventLoginSuccess))
		assert.False(t, sink.has(auth.ActivityEventLoginFailure))
		provider.AssertExpectations(t)
	})

	t.Run("provider rejection propagates and is recorded", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		provider.On("VerifyIdentity", ctx, "pepe", "wrong").
			Return(nil, auth.ErrMismatchedHashAndPassword)

		sink := &capturingSink{}
		authenticator := auth.NewAuthenticator(provider, newMockConfig()).WithActivitySink(sink)

		token, err := authenticator.Login(ctx, "pepe", "wrong")
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
		assert.Empty(t, token)
		assert.True(t, sink.has(auth.ActivityEventLoginFailure))
	})

	t.Run("zero identity is treated as not found", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		provider.On("VerifyIdentity", ctx, "pepe", "password-123").
			Return(TestIdentity{}, nil)

		authenticator := auth.NewAuthenticator(provider, newMockConfig())

		_, err := authenticator.Login(ctx, "pepe", "password-123")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}

func TestAutherSessionFromToken(t *testing.T) {
	ctx := context.Background()
	provider := new(MockIdentityProvider)
	identity := TestIdentity{id: "8b9130b6-4903-4b34-a04a-37e53ff8e178", role: auth.RoleUser}
	provider.On("VerifyIdentity", ctx, "pepe", "password-123").Return(identity, nil)

	authenticator := auth.NewAuthenticator(provider, newMockConfig())

	token, err := authenticator.Login(ctx, "pepe", "password-123")
	require.NoError(t, err)

	session, err := authenticator.SessionFromToken(token)
	require.NoError(t, err)

	assert.Equal(t, identity.ID(), session.GetUserID())
	assert.Equal(t, auth.RoleUser, session.GetRole())
	assert.Equal(t, "test-issuer", session.GetIssuer())
	assert.Equal(t, []string{"test-audience"}, session.GetAudience())
	require.NotNil(t, session.GetIssuedAt())
	assert.WithinDuration(t, time.Now(), *session.GetIssuedAt(), 5*time.Second)
}

func TestAutherSessionFromTokenRejectsGarbage(t *testing.T) {
	authenticator := auth.NewAuthenticator(new(MockIdentityProvider), newMockConfig())

	_, err := authenticator.SessionFromToken("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAutherIdentityFromSession(t *testing.T) {
	ctx := context.Background()

	t.Run("passes the session issue time to the provider", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		issuedAt := time.Now().Add(-time.Hour).Truncate(time.Second)
		identity := TestIdentity{id: "u1", role: auth.RoleUser}

		provider.On("FindSessionIdentity", ctx, "u1", issuedAt).Return(identity, nil)

		authenticator := auth.NewAuthenticator(provider, newMockConfig())
		session := &auth.SessionObject{UserID: "u1", UserRole: auth.RoleUser, IssuedAt: &issuedAt}

		got, err := authenticator.IdentityFromSession(ctx, session)
		require.NoError(t, err)
		assert.Equal(t, "u1", got.ID())
		provider.AssertExpectations(t)
	})

	t.Run("revoked sessions do not resolve", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		provider.On("FindSessionIdentity", ctx, "u1", mock.Anything).
			Return(nil, auth.ErrSessionRevoked)

		authenticator := auth.NewAuthenticator(provider, newMockConfig())
		session := &auth.SessionObject{UserID: "u1"}

		_, err := authenticator.IdentityFromSession(ctx, session)
		assert.ErrorIs(t, err, auth.ErrSessionRevoked)
	})

	t.Run("provider errors pass through", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		boom := errors.New("store unavailable")
		provider.On("FindSessionIdentity", ctx, "u1", mock.Anything).Return(nil, boom)

		authenticator := auth.NewAuthenticator(provider, newMockConfig())

		_, err := authenticator.IdentityFromSession(ctx, &auth.SessionObject{UserID: "u1"})
		assert.ErrorIs(t, err, boom)
	})
}
