package domain

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("project user not found")
var ErrUserExists = errors.New("project user already exists")
var ErrUserBanned = errors.New("project user is banned")
var ErrMissingIdentifier = errors.New("no lookup identifier supplied")
var ErrResetTokenInvalid = errors.New("reset token invalid or expired")

// ProjectUser is an end-user account scoped to a single project, distinct
// from the developer who owns that project. Username and email are unique
// within the project only.
type ProjectUser struct {
	ID                int64      `json:"id"`
	UID               string     `json:"uid"`
	ProjectID         int64      `json:"-"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"-"`
	Nickname          string     `json:"nickname,omitempty"`
	IsActive          bool       `json:"is_active"`
	IsBanned          bool       `json:"is_banned"`
	ResetToken        string     `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
	CreatedAt         time.Time  `json:"created_at"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	LastLoginIP       string     `json:"last_login_ip,omitempty"`
}

// ResetTokenValid reports whether token matches the pending reset token
// and the token has not expired at now.
func (u *ProjectUser) ResetTokenValid(token string, now time.Time) bool {
	if u.ResetToken == "" || u.ResetTokenExpires == nil {
		return false
	}
	return u.ResetToken == token && now.Before(*u.ResetTokenExpires)
}
