package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default self-service role
	RoleUser UserRole = "user"
	// RoleAdmin can additionally manage other accounts (i.e. hard delete)
	RoleAdmin UserRole = "admin"
)

// User is the user model
type User struct {
	bun.BaseModel        `bun:"table:users,alias:usr"`
	ID                   uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role                 UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName            string     `bun:"first_name" json:"first_name,omitempty"`
	LastName             string     `bun:"last_name" json:"last_name,omitempty"`
	Username             string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email                string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone                string     `bun:"phone_number" json:"phone_number,omitempty"`
	ProfilePicture       string     `bun:"profile_picture" json:"profile_picture,omitempty"`
	PasswordHash         string     `bun:"password_hash" json:"-"`
	PasswordChangedAt    *time.Time `bun:"password_changed_at,nullzero" json:"-"`
	PasswordResetToken   string     `bun:"password_reset_token,nullzero" json:"-"`
	PasswordResetExpires *time.Time `bun:"password_reset_expires,nullzero" json:"-"`
	IsActive             bool       `bun:"is_active,notnull,default:true" json:"is_active,omitempty"`
	LoginAttempts        int        `bun:"login_attempts" json:"-"`
	LoginAttemptAt       *time.Time `bun:"login_attempt_at" json:"-"`
	LoggedInAt           *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt            *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt            *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// ChangedPasswordAfter reports whether the password was mutated after the
// given instant. A session token issued before the change must never
// validate, which is how password updates revoke every prior session
// without a blacklist.
//
// JWT iat claims carry whole seconds, while the stored watermark keeps the
// driver's full precision. The comparison runs at second granularity so the
// token minted in the same second as the change it follows still validates.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u == nil || u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Truncate(time.Second).Before(u.PasswordChangedAt.Truncate(time.Second))
}

// HasPendingReset reports whether an unexpired reset secret digest is stored.
// PasswordResetToken and PasswordResetExpires are set and cleared together.
func (u *User) HasPendingReset(now time.Time) bool {
	if u == nil || u.PasswordResetToken == "" || u.PasswordResetExpires == nil {
		return false
	}
	return now.Before(*u.PasswordResetExpires)
}

// FullName joins first and last name for presentation purposes.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Sanitized returns a copy safe to serialize in responses, with credential
// and reset fields zeroed out.
func (u User) Sanitized() *User {
	u.PasswordHash = ""
	u.PasswordResetToken = ""
	u.PasswordResetExpires = nil
	return &u
}
