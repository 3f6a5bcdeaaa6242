package entity

import (
	"crypto/subtle"
	"time"
)

// User is a registrant. IsActive only ever moves from false to true; the
// activation fields are left in place after activation but no longer matter.
type User struct {
	Base
	Email               string     `db:"email"`
	PasswordHash        []byte     `db:"password_hash"`
	IsActive            bool       `db:"is_active"`
	ActivationCode      *string    `db:"activation_code"`
	ActivationExpiresAt *time.Time `db:"activation_expires_at"`
}

// IsActivationCodeExpired reports whether the code can no longer be used at now.
// A missing expiry counts as expired.
func (u *User) IsActivationCodeExpired(now time.Time) bool {
	if u.ActivationExpiresAt == nil {
		return true
	}
	return now.After(*u.ActivationExpiresAt)
}

// MatchesActivationCode compares code with the stored one in constant time.
func (u *User) MatchesActivationCode(code string) bool {
	if u.ActivationCode == nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*u.ActivationCode), []byte(code)) == 1
}

// CanActivate reports whether code activates the user at now.
func (u *User) CanActivate(code string, now time.Time) bool {
	if u.IsActive {
		return false
	}
	if u.IsActivationCodeExpired(now) {
		return false
	}
	return u.MatchesActivationCode(code)
}
