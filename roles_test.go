package auth_test

import (
	"testing"

	auth "github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, auth.IsValidRole(auth.RoleUser))
	assert.True(t, auth.IsValidRole(auth.RoleAdmin))
	assert.False(t, auth.IsValidRole("owner"))
	assert.False(t, auth.IsValidRole(""))
}

func TestRoleIsAtLeast(t *testing.T) {
	assert.True(t, auth.RoleIsAtLeast(auth.RoleAdmin, auth.RoleUser))
	assert.True(t, auth.RoleIsAtLeast(auth.RoleAdmin, auth.RoleAdmin))
	assert.True(t, auth.RoleIsAtLeast(auth.RoleUser, auth.RoleUser))
	assert.False(t, auth.RoleIsAtLeast(auth.RoleUser, auth.RoleAdmin))
	assert.False(t, auth.RoleIsAtLeast("unknown", auth.RoleUser))
}

func TestRoleIn(t *testing.T) {
	assert.True(t, auth.RoleIn(auth.RoleUser, auth.RoleUser, auth.RoleAdmin))
	assert.True(t, auth.RoleIn(auth.RoleAdmin, auth.RoleAdmin))
	assert.False(t, auth.RoleIn(auth.RoleUser, auth.RoleAdmin))
	assert.False(t, auth.RoleIn(auth.RoleUser))
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, role)

	_, ok = auth.ParseRole("superuser")
	assert.False(t, ok)
}
