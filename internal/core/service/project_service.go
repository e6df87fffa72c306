package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// ProjectService implements project CRUD and the public update-info reads.
type ProjectService struct {
	projects ports.ProjectRepository
	guard    *OwnerGuard
	log      zerolog.Logger
}

func NewProjectService(projects ports.ProjectRepository, guard *OwnerGuard, log zerolog.Logger) *ProjectService {
	return &ProjectService{projects: projects, guard: guard, log: log}
}

func (s *ProjectService) Create(ctx context.Context, input ports.CreateProjectInput) (*domain.Project, error) {
	if input.Name == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	project := &domain.Project{
		AppID:         uuid.NewString(),
		Name:          input.Name,
		Description:   input.Description,
		LatestVersion: input.LatestVersion,
		DownloadURL:   input.DownloadURL,
		Announcement:  input.Announcement,
		ForceUpdate:   input.ForceUpdate,
		DeveloperID:   input.DeveloperID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		s.log.Error().Err(err).Str("name", input.Name).Msg("failed to create project")
		return nil, err
	}

	s.log.Info().Str("app_id", project.AppID).Str("name", project.Name).Msg("project created")
	return project, nil
}

func (s *ProjectService) Update(ctx context.Context, input ports.UpdateProjectInput) (*domain.Project, error) {
	project, err := s.projects.FindForDeveloper(ctx, input.ProjectID, input.DeveloperID)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, domain.ErrInvalidInput
	}

	project.Name = input.Name
	project.Description = input.Description
	project.LatestVersion = input.LatestVersion
	project.DownloadURL = input.DownloadURL
	project.Announcement = input.Announcement
	project.ForceUpdate = input.ForceUpdate
	project.UpdatedAt = time.Now().UTC()

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes the project; the store cascades to license keys and
// project users.
func (s *ProjectService) Delete(ctx context.Context, developerID, projectID int64) error {
	project, err := s.projects.FindForDeveloper(ctx, projectID, developerID)
	if err != nil {
		return err
	}
	if err := s.projects.Delete(ctx, project.ID); err != nil {
		return err
	}
	s.log.Info().Str("app_id", project.AppID).Msg("project deleted")
	return nil
}

func (s *ProjectService) List(ctx context.Context, developerID int64) ([]*domain.Project, error) {
	return s.projects.ListForDeveloper(ctx, developerID)
}

// UpdateInfo serves the public version/update metadata for installed apps.
func (s *ProjectService) UpdateInfo(ctx context.Context, appID string) (*ports.ProjectUpdateInfo, error) {
	project, err := s.projects.FindByAppID(ctx, appID)
	if err != nil {
		return nil, err
	}
	return &ports.ProjectUpdateInfo{
		Name:          project.Name,
		CreatedAt:     project.CreatedAt.UTC().Format(time.RFC3339),
		LatestVersion: project.LatestVersion,
		UpdateURL:     project.DownloadURL,
		UpdateNotice:  project.Announcement,
		ForceUpdate:   project.ForceUpdate,
	}, nil
}

// ResolveOwned exposes the ownership guard as a service operation.
func (s *ProjectService) ResolveOwned(ctx context.Context, appID, devID string) (*domain.Project, error) {
	return s.guard.ResolveOwned(ctx, appID, devID)
}
