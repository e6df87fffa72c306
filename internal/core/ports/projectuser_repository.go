package ports

import (
	"context"
	"time"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
)

// UserIdentifier carries the alternate keys a caller may supply to resolve
// a project user. Resolution follows a fixed precedence: ID, then
// Username, then UID, then Email; the first non-zero identifier wins and
// the rest are ignored.
type UserIdentifier struct {
	ID       int64
	Username string
	UID      string
	Email    string
}

// Empty reports whether no identifier was supplied at all.
func (i UserIdentifier) Empty() bool {
	return i.ID == 0 && i.Username == "" && i.UID == "" && i.Email == ""
}

// ProjectUserRepository is the persistence boundary for end-user accounts,
// always scoped to one project.
type ProjectUserRepository interface {
	// Create inserts a new project user. Duplicate username or email within
	// the project surfaces as domain.ErrUserExists.
	Create(ctx context.Context, u *domain.ProjectUser) (*domain.ProjectUser, error)
	// FindByIdentifier resolves a user by the highest-precedence identifier
	// present. Returns domain.ErrMissingIdentifier when none is supplied.
	FindByIdentifier(ctx context.Context, projectID int64, ident UserIdentifier) (*domain.ProjectUser, error)
	// FindByResetToken resolves a user by a pending password-reset token.
	// Returns domain.ErrUserNotFound when no user holds the token.
	FindByResetToken(ctx context.Context, token string) (*domain.ProjectUser, error)
	ListForProject(ctx context.Context, projectID int64) ([]*domain.ProjectUser, error)
	SetBanned(ctx context.Context, id int64, banned bool) error
	Delete(ctx context.Context, id int64) error
	SetResetToken(ctx context.Context, id int64, token string, expires time.Time) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time, ip string) error
}
