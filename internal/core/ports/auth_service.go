package ports

import (
	"context"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
)

// RegisterDeveloperInput carries a new platform account registration.
type RegisterDeveloperInput struct {
	Username string
	Email    string
	Password string
}

// AuthService owns developer accounts: registration, login, email
// verification, password reset, and dev_id rotation.
type AuthService interface {
	Register(ctx context.Context, input RegisterDeveloperInput) (*domain.Developer, error)
	// Login authenticates by username or email and returns a signed JWT.
	Login(ctx context.Context, login, password string) (string, *domain.Developer, error)
	// VerifyEmail marks the account verified; token is the account's dev_id.
	VerifyEmail(ctx context.Context, token string) error
	// RequestPasswordReset mails a 6-digit code valid for 30 minutes.
	RequestPasswordReset(ctx context.Context, email string) error
	// ResetPassword consumes a valid code and sets the new password.
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	ChangePassword(ctx context.Context, developerID int64, current, newPassword string) error
	// RotateDevID replaces the developer credential and returns the new one.
	RotateDevID(ctx context.Context, developerID int64) (string, error)
}

// Mailer is the outbound email collaborator. Implementations deliver an
// HTML body; callers treat failures as non-fatal.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
