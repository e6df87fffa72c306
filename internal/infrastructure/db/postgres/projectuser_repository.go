package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

const projectUserColumns = `id, uid, project_id, username, email, password_hash, nickname,
	is_active, is_banned, COALESCE(reset_token, ''), reset_token_expires,
	created_at, last_login, last_login_ip`

// ProjectUserRepository implements ports.ProjectUserRepository on PostgreSQL.
type ProjectUserRepository struct {
	pool *pgxpool.Pool
}

// NewProjectUserRepository creates a new ProjectUserRepository.
func NewProjectUserRepository(pool *pgxpool.Pool) ports.ProjectUserRepository {
	return &ProjectUserRepository{pool: pool}
}

func (r *ProjectUserRepository) Create(ctx context.Context, u *domain.ProjectUser) (*domain.ProjectUser, error) {
	const query = `
	INSERT INTO project_users (uid, project_id, username, email, password_hash, nickname,
		is_active, is_banned, created_at, last_login_ip)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		u.UID, u.ProjectID, u.Username, u.Email, u.PasswordHash, u.Nickname,
		u.IsActive, u.IsBanned, u.CreatedAt, u.LastLoginIP,
	).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("create project user: %w", err)
	}
	return u, nil
}

// FindByIdentifier resolves by the highest-precedence identifier present:
// id, then username, then uid, then email.
func (r *ProjectUserRepository) FindByIdentifier(ctx context.Context, projectID int64, ident ports.UserIdentifier) (*domain.ProjectUser, error) {
	var (
		clause string
		arg    any
	)
	switch {
	case ident.ID != 0:
		clause, arg = "id = $2", ident.ID
	case ident.Username != "":
		clause, arg = "username = $2", ident.Username
	case ident.UID != "":
		clause, arg = "uid = $2", ident.UID
	case ident.Email != "":
		clause, arg = "email = $2", ident.Email
	default:
		return nil, domain.ErrMissingIdentifier
	}

	query := fmt.Sprintf(`SELECT %s FROM project_users WHERE project_id = $1 AND %s`,
		projectUserColumns, clause)
	return r.scanOne(r.pool.QueryRow(ctx, query, projectID, arg))
}

func (r *ProjectUserRepository) FindByResetToken(ctx context.Context, token string) (*domain.ProjectUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM project_users WHERE reset_token = $1`, projectUserColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, token))
}

func (r *ProjectUserRepository) ListForProject(ctx context.Context, projectID int64) ([]*domain.ProjectUser, error) {
	query := fmt.Sprintf(`SELECT %s FROM project_users WHERE project_id = $1 ORDER BY created_at DESC`,
		projectUserColumns)

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project users: %w", err)
	}
	defer rows.Close()

	var users []*domain.ProjectUser
	for rows.Next() {
		u, err := scanProjectUser(rows)
		if err != nil {
			return nil, fmt.Errorf("list project users: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *ProjectUserRepository) SetBanned(ctx context.Context, id int64, banned bool) error {
	return r.exec(ctx, `UPDATE project_users SET is_banned = $2 WHERE id = $1`, id, banned)
}

func (r *ProjectUserRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM project_users WHERE id = $1`, id)
}

func (r *ProjectUserRepository) SetResetToken(ctx context.Context, id int64, token string, expires time.Time) error {
	return r.exec(ctx, `UPDATE project_users SET reset_token = $2, reset_token_expires = $3 WHERE id = $1`,
		id, token, expires.UTC())
}

func (r *ProjectUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const query = `
	UPDATE project_users
	SET password_hash = $2, reset_token = NULL, reset_token_expires = NULL
	WHERE id = $1`
	return r.exec(ctx, query, id, passwordHash)
}

func (r *ProjectUserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time, ip string) error {
	return r.exec(ctx, `UPDATE project_users SET last_login = $2, last_login_ip = $3 WHERE id = $1`,
		id, at.UTC(), ip)
}

func (r *ProjectUserRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("project user update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *ProjectUserRepository) scanOne(row pgx.Row) (*domain.ProjectUser, error) {
	u, err := scanProjectUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project user: %w", err)
	}
	return u, nil
}

func scanProjectUser(row pgx.Row) (*domain.ProjectUser, error) {
	var u domain.ProjectUser
	err := row.Scan(
		&u.ID, &u.UID, &u.ProjectID, &u.Username, &u.Email, &u.PasswordHash, &u.Nickname,
		&u.IsActive, &u.IsBanned, &u.ResetToken, &u.ResetTokenExpires,
		&u.CreatedAt, &u.LastLogin, &u.LastLoginIP,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
