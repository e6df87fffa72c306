package ports

import (
	"context"
	"time"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
)

// DeveloperRepository is the persistence boundary for platform accounts.
type DeveloperRepository interface {
	// Create inserts a new developer. Duplicate username or email surfaces
	// as domain.ErrDeveloperExists.
	Create(ctx context.Context, d *domain.Developer) (*domain.Developer, error)
	FindByID(ctx context.Context, id int64) (*domain.Developer, error)
	FindByUsername(ctx context.Context, username string) (*domain.Developer, error)
	FindByEmail(ctx context.Context, email string) (*domain.Developer, error)
	// FindByDevID resolves the rotatable developer credential.
	FindByDevID(ctx context.Context, devID string) (*domain.Developer, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetEmailVerified(ctx context.Context, id int64) error
	SetResetCode(ctx context.Context, id int64, code string, expires time.Time) error
	ClearResetCode(ctx context.Context, id int64) error
	// RotateDevID stores a freshly generated dev_id and returns it.
	RotateDevID(ctx context.Context, id int64, devID string) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}
