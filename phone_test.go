package auth_test

import (
	"testing"

	auth "github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhoneNumber(t *testing.T) {
	t.Run("national number uses the default region", func(t *testing.T) {
		normalized, err := auth.NormalizePhoneNumber("650 253 0000", "")
		require.NoError(t, err)
		assert.Equal(t, "+16502530000", normalized)
	})

	t.Run("international prefix wins over the region", func(t *testing.T) {
		normalized, err := auth.NormalizePhoneNumber("+442079460958", "US")
		require.NoError(t, err)
		assert.Equal(t, "+442079460958", normalized)
	})

	t.Run("empty input passes through", func(t *testing.T) {
		normalized, err := auth.NormalizePhoneNumber("", "")
		require.NoError(t, err)
		assert.Empty(t, normalized)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := auth.NormalizePhoneNumber("not a phone", "")
		assert.Error(t, err)
	})

	t.Run("well formed but invalid number is rejected", func(t *testing.T) {
		_, err := auth.NormalizePhoneNumber("+1999999999999", "")
		assert.Error(t, err)
	})
}
