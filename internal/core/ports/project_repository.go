package ports

import (
	"context"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
)

// ProjectRepository is the persistence boundary for projects. Deleting a
// project cascades to its license keys and project users at the store level.
type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) error
	FindByAppID(ctx context.Context, appID string) (*domain.Project, error)
	FindForDeveloper(ctx context.Context, id, developerID int64) (*domain.Project, error)
	ListForDeveloper(ctx context.Context, developerID int64) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id int64) error
}
