package ports

import (
	"context"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
)

// CreateProjectInput carries the fields a developer sets on a new project.
type CreateProjectInput struct {
	DeveloperID   int64
	Name          string
	Description   string
	LatestVersion string
	DownloadURL   string
	Announcement  string
	ForceUpdate   bool
}

// UpdateProjectInput mirrors CreateProjectInput for edits of an owned project.
type UpdateProjectInput struct {
	DeveloperID   int64
	ProjectID     int64
	Name          string
	Description   string
	LatestVersion string
	DownloadURL   string
	Announcement  string
	ForceUpdate   bool
}

// ProjectUpdateInfo is the public update metadata served to installed apps.
type ProjectUpdateInfo struct {
	Name          string
	CreatedAt     string
	LatestVersion string
	UpdateURL     string
	UpdateNotice  string
	ForceUpdate   bool
}

// ProjectService owns project CRUD and the ownership guard.
type ProjectService interface {
	Create(ctx context.Context, input CreateProjectInput) (*domain.Project, error)
	Update(ctx context.Context, input UpdateProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, developerID, projectID int64) error
	List(ctx context.Context, developerID int64) ([]*domain.Project, error)

	// UpdateInfo serves the public version/update metadata by app_id.
	UpdateInfo(ctx context.Context, appID string) (*ProjectUpdateInfo, error)

	// ResolveOwned is the authorization guard: it confirms the project
	// exists (domain.ErrProjectNotFound) and that the caller's dev_id
	// matches its owner (domain.ErrForbidden). Stateless and
	// side-effect-free.
	ResolveOwned(ctx context.Context, appID, devID string) (*domain.Project, error)
}
