package auth_test

import (
	"strings"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	auth "github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRequestValidate(t *testing.T) {
	valid := auth.LoginRequest{Identifier: "pepe", Password: "password-123"}
	assert.NoError(t, valid.Validate())

	assert.Equal(t, "pepe", valid.GetIdentifier())
	assert.Equal(t, "password-123", valid.GetPassword())

	missing := auth.LoginRequest{}
	assert.Error(t, missing.Validate())
}

func TestSignupPayloadValidate(t *testing.T) {
	base := auth.SignupPayload{
		FirstName:       "Pepe",
		LastName:        "Rone",
		Email:           "pepe.rone@example.com",
		Password:        "password-123",
		ConfirmPassword: "password-123",
	}

	t.Run("valid payload", func(t *testing.T) {
		assert.NoError(t, base.Validate())
	})

	t.Run("password confirmation must match", func(t *testing.T) {
		payload := base
		payload.ConfirmPassword = "password-456"
		err := payload.Validate()
		require.Error(t, err)

		fields := auth.FormatValidationErrorToMap(err)
		assert.Contains(t, fields, "password_confirm")
	})

	t.Run("short passwords are rejected", func(t *testing.T) {
		payload := base
		payload.Password = "short"
		payload.ConfirmPassword = "short"
		assert.Error(t, payload.Validate())
	})

	t.Run("email is required and must be valid", func(t *testing.T) {
		payload := base
		payload.Email = "not-an-email"
		assert.Error(t, payload.Validate())

		payload.Email = ""
		assert.Error(t, payload.Validate())
	})

	t.Run("phone must be digits when present", func(t *testing.T) {
		payload := base
		payload.Phone = "555123456x"
		assert.Error(t, payload.Validate())

		payload.Phone = "5551234567"
		assert.NoError(t, payload.Validate())
	})
}

func TestPayloadConfiguredPasswordLength(t *testing.T) {
	long := strings.Repeat("p", 12)

	t.Run("signup", func(t *testing.T) {
		payload := auth.SignupPayload{
			FirstName:       "Pepe",
			LastName:        "Rone",
			Email:           "pepe.rone@example.com",
			Password:        "password",
			ConfirmPassword: "password",
		}

		assert.NoError(t, payload.Validate())
		assert.Error(t, payload.ValidateWithPasswordLength(12))

		payload.Password = long
		payload.ConfirmPassword = long
		assert.NoError(t, payload.ValidateWithPasswordLength(12))
	})

	t.Run("reset password", func(t *testing.T) {
		payload := auth.ResetPasswordPayload{Password: "password", ConfirmPassword: "password"}
		assert.NoError(t, payload.Validate())
		assert.Error(t, payload.ValidateWithPasswordLength(12))

		payload.Password = long
		payload.ConfirmPassword = long
		assert.NoError(t, payload.ValidateWithPasswordLength(12))
	})

	t.Run("update password", func(t *testing.T) {
		payload := auth.UpdatePasswordPayload{
			PasswordCurrent: "old-password",
			Password:        "password",
			ConfirmPassword: "password",
		}
		assert.NoError(t, payload.Validate())
		assert.Error(t, payload.ValidateWithPasswordLength(12))
	})

	t.Run("non positive minimum falls back to the default", func(t *testing.T) {
		payload := auth.ResetPasswordPayload{Password: "short", ConfirmPassword: "short"}
		assert.Error(t, payload.ValidateWithPasswordLength(0))

		payload.Password = "password"
		payload.ConfirmPassword = "password"
		assert.NoError(t, payload.ValidateWithPasswordLength(-1))
	})
}

func TestAuthControllerConfigWiring(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c := auth.NewAuthController()
		assert.Equal(t, auth.DefaultResetTokenTTL, c.ResetTokenTTL)
		assert.Equal(t, auth.DefaultMinPasswordLength, c.MinPasswordLength)
	})

	t.Run("config overrides reach the controller", func(t *testing.T) {
		cfg := newMockConfig()
		cfg.ResetTokenTTL = 30 * time.Minute
		cfg.MinPasswordLength = 12

		c := auth.NewAuthController(auth.WithControllerConfig(cfg))
		assert.Equal(t, 30*time.Minute, c.ResetTokenTTL)
		assert.Equal(t, 12, c.MinPasswordLength)
	})

	t.Run("zero config values keep the defaults", func(t *testing.T) {
		c := auth.NewAuthController(auth.WithControllerConfig(&auth.SimpleConfig{
			SigningKey: "test-signing-key-for-tests",
		}))
		assert.Equal(t, auth.DefaultResetTokenTTL, c.ResetTokenTTL)
		assert.Equal(t, auth.DefaultMinPasswordLength, c.MinPasswordLength)
	})
}

func TestForgotPasswordPayloadValidate(t *testing.T) {
	assert.NoError(t, auth.ForgotPasswordPayload{Email: "pepe.rone@example.com"}.Validate())
	assert.Error(t, auth.ForgotPasswordPayload{Email: "nope"}.Validate())
	assert.Error(t, auth.ForgotPasswordPayload{}.Validate())
}

func TestResetPasswordPayloadValidate(t *testing.T) {
	valid := auth.ResetPasswordPayload{Password: "password-123", ConfirmPassword: "password-123"}
	assert.NoError(t, valid.Validate())

	mismatch := auth.ResetPasswordPayload{Password: "password-123", ConfirmPassword: "password-456"}
	assert.Error(t, mismatch.Validate())
}

func TestUpdatePasswordPayloadValidate(t *testing.T) {
	valid := auth.UpdatePasswordPayload{
		PasswordCurrent: "old-password",
		Password:        "password-123",
		ConfirmPassword: "password-123",
	}
	assert.NoError(t, valid.Validate())

	missingCurrent := valid
	missingCurrent.PasswordCurrent = ""
	assert.Error(t, missingCurrent.Validate())
}

func TestUpdateMePayloadRejectsPasswordFields(t *testing.T) {
	t.Run("profile only payload passes", func(t *testing.T) {
		payload := auth.UpdateMePayload{FirstName: "Pepe", Email: "pepe.rone@example.com"}
		assert.NoError(t, payload.Validate())
	})

	t.Run("password field fails with a pointer to the right route", func(t *testing.T) {
		payload := auth.UpdateMePayload{Password: "password-123"}
		err := payload.Validate()
		require.Error(t, err)

		fields := auth.FormatValidationErrorToMap(err)
		assert.Contains(t, fields["password"], "/update-password")
	})

	t.Run("password_confirm field fails too", func(t *testing.T) {
		payload := auth.UpdateMePayload{ConfirmPassword: "password-123"}
		err := payload.Validate()
		require.Error(t, err)

		fields := auth.FormatValidationErrorToMap(err)
		assert.Contains(t, fields, "password_confirm")
	})
}

func TestValidateStringEquals(t *testing.T) {
	rule := auth.ValidateStringEquals("expected")
	assert.NoError(t, rule("expected"))
	assert.Error(t, rule("other"))
	assert.Error(t, rule(42))
}

func TestFormatValidationErrorToMap(t *testing.T) {
	verr := validation.Errors{
		"email": assert.AnError,
	}

	out := auth.FormatValidationErrorToMap(verr)
	assert.Equal(t, assert.AnError.Error(), out["email"])

	out = auth.FormatValidationErrorToMap(assert.AnError)
	assert.Equal(t, assert.AnError.Error(), out["error"])

	assert.Empty(t, auth.FormatValidationErrorToMap(nil))
}
