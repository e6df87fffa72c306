package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

const projectColumns = `id, app_id, name, description, latest_version, download_url,
	announcement, force_update, developer_id, created_at, updated_at`

// ProjectRepository implements ports.ProjectRepository on PostgreSQL.
// Deletes cascade to license_keys and project_users through the schema's
// foreign keys.
type ProjectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(pool *pgxpool.Pool) ports.ProjectRepository {
	return &ProjectRepository{pool: pool}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	const query = `
	INSERT INTO projects (app_id, name, description, latest_version, download_url,
		announcement, force_update, developer_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		p.AppID, p.Name, p.Description, p.LatestVersion, p.DownloadURL,
		p.Announcement, p.ForceUpdate, p.DeveloperID, p.CreatedAt, p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) FindByAppID(ctx context.Context, appID string) (*domain.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE app_id = $1`, projectColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, appID))
}

func (r *ProjectRepository) FindForDeveloper(ctx context.Context, id, developerID int64) (*domain.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE id = $1 AND developer_id = $2`, projectColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id, developerID))
}

func (r *ProjectRepository) ListForDeveloper(ctx context.Context, developerID int64) ([]*domain.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE developer_id = $1 ORDER BY created_at DESC`, projectColumns)

	rows, err := r.pool.Query(ctx, query, developerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *ProjectRepository) Update(ctx context.Context, p *domain.Project) error {
	const query = `
	UPDATE projects
	SET name = $2, description = $3, latest_version = $4, download_url = $5,
	    announcement = $6, force_update = $7, updated_at = $8
	WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.LatestVersion, p.DownloadURL,
		p.Announcement, p.ForceUpdate, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

func (r *ProjectRepository) scanOne(row pgx.Row) (*domain.Project, error) {
	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	return p, nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.AppID, &p.Name, &p.Description, &p.LatestVersion, &p.DownloadURL,
		&p.Announcement, &p.ForceUpdate, &p.DeveloperID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
