package auth

import "time"

// EnsureSessionUser applies the session validity policy to a user record and
// the issue time of an already verified token:
//
//   - the referenced user must exist,
//   - the account must be active,
//   - the token must not predate the PasswordChangedAt watermark.
//
// Logout, password change, and password reset all rely on the watermark
// comparison for revocation; no per-token state is kept anywhere.
func EnsureSessionUser(user *User, issuedAt time.Time) error {
	if user == nil {
		return ErrIdentityNotFound
	}

	if !user.IsActive {
		return ErrAccountInactive
	}

	if user.ChangedPasswordAfter(issuedAt) {
		return ErrSessionRevoked
	}

	return nil
}
