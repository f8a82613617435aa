package auth_test

import (
	"context"
	"testing"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	auth "github.com/goliatone/go-users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	// keep bcrypt cheap in tests
	auth.BcryptCost = 4
}

func activeUser(t *testing.T, password string) *auth.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	return &auth.User{
		ID:           uuid.New(),
		Role:         auth.RoleUser,
		Username:     "pepe",
		Email:        "pepe.rone@example.com",
		PasswordHash: hash,
		IsActive:     true,
	}
}

func TestVerifyIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		store := new(MockUserStore)
		user := activeUser(t, "password-123")

		store.On("GetByIdentifier", ctx, "pepe.rone@example.com").Return(user, nil)
		store.On("TrackSuccessfulLogin", ctx, user).Return(nil)

		provider := auth.NewUserProvider(store)
		identity, err := provider.VerifyIdentity(ctx, "pepe.rone@example.com", "password-123")
		require.NoError(t, err)

		assert.Equal(t, user.ID.String(), identity.ID())
		assert.Equal(t, "pepe.rone@example.com", identity.Email())
		assert.Equal(t, auth.RoleUser, identity.Role())
		store.AssertExpectations(t)
	})

	t.Run("wrong password tracks the attempt", func(t *testing.T) {
		store := new(MockUserStore)
		user := activeUser(t, "password-123")

		store.On("GetByIdentifier", ctx, "pepe.rone@example.com").Return(user, nil)
		store.On("TrackAttemptedLogin", ctx, user).Return(nil)

		provider := auth.NewUserProvider(store)
		_, err := provider.VerifyIdentity(ctx, "pepe.rone@example.com", "nope")
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
		store.AssertExpectations(t)
	})

	t.Run("unknown identifier looks like bad credentials", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("GetByIdentifier", ctx, "ghost@example.com").
			Return(nil, repository.NewRecordNotFound())

		provider := auth.NewUserProvider(store)
		_, err := provider.VerifyIdentity(ctx, "ghost@example.com", "password-123")
		assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)
	})

	t.Run("inactive account", func(t *testing.T) {
		store := new(MockUserStore)
		user := activeUser(t, "password-123")
		user.IsActive = false

		store.On("GetByIdentifier", ctx, "pepe.rone@example.com").Return(user, nil)

		provider := auth.NewUserProvider(store)
		_, err := provider.VerifyIdentity(ctx, "pepe.rone@example.com", "password-123")
		assert.ErrorIs(t, err, auth.ErrAccountInactive)
	})

	t.Run("too many attempts inside the cooldown", func(t *testing.T) {
		store := new(MockUserStore)
		user := activeUser(t, "password-123")
		now := time.Now()
		user.LoginAttempts = auth.MaxLoginAttempts + 1
		user.LoginAttemptAt = &now

		store.On("GetByIdentifier", ctx, "pepe.rone@example.com").Return(user, nil)

		provider := auth.NewUserProvider(store)
		_, err := provider.VerifyIdentity(ctx, "pepe.rone@example.com", "password-123")
		assert.ErrorIs(t, err, auth.ErrTooManyLoginAttempts)
	})

	t.Run("attempt counter resets after the cooldown", func(t *testing.T) {
		store := new(MockUserStore)
		user := activeUser(t, "password-123")
		stale := time.Now().Add(-48 * time.Hour)
		user.LoginAttempts = auth.MaxLoginAttempts + 1
		user.LoginAttemptAt = &stale

		store.On("GetByIdentifier", ctx, "pepe.rone@example.com").Return(user, nil)
		store.On("TrackSuccessfulLogin", ctx, mock.Anything).Return(nil)

		provider := auth.NewUserProvider(store)
		_, err := provider.VerifyIdentity(ctx, "pepe.rone@example.com", "password-123")
		assert.NoError(t, err)
	})

	t.Run("invalid role fails validation", func(t *testing.T) {
		store := new(MockUserStore)
		user := activeUser(t, "password-123")
		user.Role = "owner"

		store.On("GetByIdentifier", ctx, "pepe.rone@example.com").Return(user, nil)
		store.On("TrackSuccessfulLogin", ctx, mock.Anything).Return(nil)

		provider := auth.NewUserProvider(store)
		_, err := provider.VerifyIdentity(ctx, "pepe.rone@example.com", "password-123")
		assert.Error(t, err)
	})
}

func TestFindSessionIdentity(t *testing.T) {
	ctx := context.Background()

	t.Run("valid session resolves the identity", func(t *testing.T) {
		store := new(MockUserStore)
		user := activeUser(t, "password-123")

		store.On("GetByIdentifier", ctx, user.ID.String()).Return(user, nil)

		provider := auth.NewUserProvider(store)
		identity, err := provider.FindSessionIdentity(ctx, user.ID.String(), time.Now())
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), identity.ID())
	})

	t.Run("deactivated account rejects the session", func(t *testing.T) {
		store := new(MockUserStore)
		user := activeUser(t, "password-123")
		user.IsActive = false

		store.On("GetByIdentifier", ctx, user.ID.String()).Return(user, nil)

		provider := auth.NewUserProvider(store)
		_, err := provider.FindSessionIdentity(ctx, user.ID.String(), time.Now())
		assert.ErrorIs(t, err, auth.ErrAccountInactive)
	})

	t.Run("token older than the password change is revoked", func(t *testing.T) {
		store := new(MockUserStore)
		user := activeUser(t, "password-123")
		changed := time.Now()
		user.PasswordChangedAt = &changed

		store.On("GetByIdentifier", ctx, user.ID.String()).Return(user, nil)

		provider := auth.NewUserProvider(store)
		_, err := provider.FindSessionIdentity(ctx, user.ID.String(), changed.Add(-time.Hour))
		assert.ErrorIs(t, err, auth.ErrSessionRevoked)
	})
}
