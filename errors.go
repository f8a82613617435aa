package auth

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidToken is the single public failure kind for session
	// token verification. Expired, forged, and malformed tokens all collapse
	// into it so callers cannot probe which condition occurred.
	TextCodeInvalidToken = "INVALID_TOKEN"

	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeEmptyPassword     = "EMPTY_PASSWORD"
	TextCodeAccountInactive   = "ACCOUNT_INACTIVE"
	TextCodeSessionRevoked    = "SESSION_REVOKED"
	TextCodeSessionNotFound   = "SESSION_NOT_FOUND"
	TextCodeTooManyAttempts   = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeInsufficientRole  = "INSUFFICIENT_ROLE"
	TextCodeResetTokenInvalid = "RESET_TOKEN_INVALID"
	TextCodeDuplicateIdentity = "DUPLICATE_IDENTITY"
	TextCodeInvalidPhone      = "INVALID_PHONE"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is returned when credentials do not verify.
// It is deliberately indistinguishable from an unknown identifier.
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty plaintext passwords before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// ErrInvalidToken is the only token verification failure callers ever see
var ErrInvalidToken = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// ErrAccountInactive rejects sessions for deactivated accounts
var ErrAccountInactive = errors.New("account is deactivated", errors.CategoryAuth).
	WithTextCode(TextCodeAccountInactive).
	WithCode(errors.CodeUnauthorized)

// ErrSessionRevoked rejects tokens issued before the password watermark
var ErrSessionRevoked = errors.New("session issued before last password change", errors.CategoryAuth).
	WithTextCode(TextCodeSessionRevoked).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToFindSession is the error when our request has no token
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrTooManyLoginAttempts enforces the login attempt cool down window
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrInsufficientRole rejects authenticated users outside the allowed role set
var ErrInsufficientRole = errors.New("insufficient role for this resource", errors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientRole).
	WithCode(errors.CodeForbidden)

// ErrResetTokenInvalid covers unknown, expired, and already consumed reset
// secrets. Like session tokens, the conditions are not distinguished.
var ErrResetTokenInvalid = errors.New("invalid or expired password reset token", errors.CategoryAuth).
	WithTextCode(TextCodeResetTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// HTTPStatusFromError maps a rich error to the status code transports should
// answer with. Errors that carry an explicit code win, everything else falls
// back to a category based mapping.
func HTTPStatusFromError(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return http.StatusInternalServerError
	}

	if richErr.Code >= http.StatusBadRequest {
		return richErr.Code
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
