package auth_test

import (
	"context"
	"testing"

	auth "github.com/goliatone/go-users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundtrip(t *testing.T) {
	user := &auth.User{ID: uuid.New(), Email: "pepe.rone@example.com"}

	ctx := auth.WithContext(context.Background(), user)

	found, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user.ID, found.ID)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestClaimsContextRoundtrip(t *testing.T) {
	svc := newTestTokenService(1)

	token, err := svc.Generate(TestIdentity{id: "u1", role: auth.RoleUser})
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)

	ctx := auth.WithClaimsContext(context.Background(), claims)

	found, ok := auth.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", found.UserID())

	_, ok = auth.GetClaims(context.Background())
	assert.False(t, ok)
}
