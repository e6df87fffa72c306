package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin     = "admin"
	RoleDeveloper = "developer"
)

var ErrDeveloperNotFound = errors.New("developer not found")
var ErrDeveloperExists = errors.New("developer already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrEmailNotVerified = errors.New("email not verified")
var ErrResetCodeInvalid = errors.New("reset code invalid or expired")

// Developer is a platform account that owns projects and issues license
// keys. DevID is the rotatable credential presented by API callers to
// prove ownership; UID is a stable public identifier.
type Developer struct {
	ID            int64      `json:"id"`
	DevID         string     `json:"dev_id"`
	UID           string     `json:"uid"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	EmailVerified bool       `json:"email_verified"`
	IsAdmin       bool       `json:"is_admin"`
	ResetCode     string     `json:"-"`
	ResetExpires  *time.Time `json:"-"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
}

// Role reports the RBAC role carried in dashboard tokens.
func (d *Developer) Role() string {
	if d.IsAdmin {
		return RoleAdmin
	}
	return RoleDeveloper
}

// ResetCodeValid reports whether code matches the pending reset code and
// the code has not expired at now.
func (d *Developer) ResetCodeValid(code string, now time.Time) bool {
	if d.ResetCode == "" || d.ResetExpires == nil {
		return false
	}
	return d.ResetCode == code && now.Before(*d.ResetExpires)
}
