package service

import (
	"context"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// OwnerGuard verifies that a caller-supplied dev_id owns the project an
// operation targets. Stateless and side-effect-free; every privileged
// license or project-user operation passes through it.
type OwnerGuard struct {
	projects   ports.ProjectRepository
	developers ports.DeveloperRepository
}

func NewOwnerGuard(projects ports.ProjectRepository, developers ports.DeveloperRepository) *OwnerGuard {
	return &OwnerGuard{projects: projects, developers: developers}
}

// ResolveOwned returns the project when the dev_id matches its owner.
// Missing project: domain.ErrProjectNotFound. Owner mismatch (or unknown
// dev_id): domain.ErrForbidden.
func (g *OwnerGuard) ResolveOwned(ctx context.Context, appID, devID string) (*domain.Project, error) {
	if appID == "" || devID == "" {
		return nil, domain.ErrInvalidInput
	}

	project, err := g.projects.FindByAppID(ctx, appID)
	if err != nil {
		return nil, err
	}

	owner, err := g.developers.FindByDevID(ctx, devID)
	if err != nil {
		if err == domain.ErrDeveloperNotFound {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}
	if owner.ID != project.DeveloperID {
		return nil, domain.ErrForbidden
	}
	return project, nil
}
