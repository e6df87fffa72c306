package ports

import (
	"context"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
)

// RegisterUserInput carries an end-user registration against one project.
type RegisterUserInput struct {
	AppID    string
	Username string
	Email    string
	Password string
	Nickname string
}

// UserLoginInput carries an end-user login attempt.
type UserLoginInput struct {
	AppID    string
	Login    string // username or email
	Password string
	ClientIP string
}

// GuardedUserInput addresses one project user through the public API with
// the owner's credential and the precedence-ordered identifiers.
type GuardedUserInput struct {
	AppID      string
	DevID      string
	Identifier UserIdentifier
}

// RegistrationState is the answer of the public check-registration call.
type RegistrationState string

const (
	RegistrationUnknown    RegistrationState = "not_found"
	RegistrationUnverified RegistrationState = "unverified"
	RegistrationRegistered RegistrationState = "registered"
)

// UserService owns end-user accounts scoped to projects.
type UserService interface {
	Register(ctx context.Context, input RegisterUserInput) (*domain.ProjectUser, error)
	Login(ctx context.Context, input UserLoginInput) (*domain.ProjectUser, error)
	// CheckRegistration requires no owner credential; it reports whether
	// any of the supplied identifiers matches a user of the project.
	CheckRegistration(ctx context.Context, appID string, ident UserIdentifier) (RegistrationState, error)
	// Guarded owner operations.
	Get(ctx context.Context, input GuardedUserInput) (*domain.ProjectUser, error)
	Ban(ctx context.Context, input GuardedUserInput) error
	Unban(ctx context.Context, input GuardedUserInput) error
	Delete(ctx context.Context, input GuardedUserInput) error
	// SendResetEmail issues a reset token (1 hour validity) and mails it.
	SendResetEmail(ctx context.Context, input GuardedUserInput) error
	// ResetPassword consumes a mailed reset token and sets the new
	// password. The token proves identity; no owner credential is
	// required. Tokens are single-use.
	ResetPassword(ctx context.Context, token, newPassword string) error
	// List returns all users of an owned project for the dashboard.
	List(ctx context.Context, developerID, projectID int64) ([]*domain.ProjectUser, error)
}
