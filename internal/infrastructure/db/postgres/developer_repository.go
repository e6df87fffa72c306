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

const developerColumns = `id, dev_id, uid, username, email, password_hash, email_verified,
	is_admin, COALESCE(reset_code, ''), reset_expires, created_at, last_login`

// DeveloperRepository implements ports.DeveloperRepository on PostgreSQL.
type DeveloperRepository struct {
	pool *pgxpool.Pool
}

// NewDeveloperRepository creates a new DeveloperRepository.
func NewDeveloperRepository(pool *pgxpool.Pool) ports.DeveloperRepository {
	return &DeveloperRepository{pool: pool}
}

func (r *DeveloperRepository) Create(ctx context.Context, d *domain.Developer) (*domain.Developer, error) {
	const query = `
	INSERT INTO developers (dev_id, uid, username, email, password_hash, email_verified, is_admin, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id`

	err := r.pool.QueryRow(ctx, query,
		d.DevID, d.UID, d.Username, d.Email, d.PasswordHash, d.EmailVerified, d.IsAdmin, d.CreatedAt,
	).Scan(&d.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDeveloperExists
		}
		return nil, fmt.Errorf("create developer: %w", err)
	}
	return d, nil
}

func (r *DeveloperRepository) FindByID(ctx context.Context, id int64) (*domain.Developer, error) {
	query := fmt.Sprintf(`SELECT %s FROM developers WHERE id = $1`, developerColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *DeveloperRepository) FindByUsername(ctx context.Context, username string) (*domain.Developer, error) {
	query := fmt.Sprintf(`SELECT %s FROM developers WHERE username = $1`, developerColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, username))
}

func (r *DeveloperRepository) FindByEmail(ctx context.Context, email string) (*domain.Developer, error) {
	query := fmt.Sprintf(`SELECT %s FROM developers WHERE email = $1`, developerColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *DeveloperRepository) FindByDevID(ctx context.Context, devID string) (*domain.Developer, error) {
	query := fmt.Sprintf(`SELECT %s FROM developers WHERE dev_id = $1`, developerColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, devID))
}

func (r *DeveloperRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.exec(ctx, `UPDATE developers SET password_hash = $2 WHERE id = $1`, id, passwordHash)
}

func (r *DeveloperRepository) SetEmailVerified(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE developers SET email_verified = TRUE WHERE id = $1`, id)
}

func (r *DeveloperRepository) SetResetCode(ctx context.Context, id int64, code string, expires time.Time) error {
	return r.exec(ctx, `UPDATE developers SET reset_code = $2, reset_expires = $3 WHERE id = $1`,
		id, code, expires.UTC())
}

func (r *DeveloperRepository) ClearResetCode(ctx context.Context, id int64) error {
	return r.exec(ctx, `UPDATE developers SET reset_code = NULL, reset_expires = NULL WHERE id = $1`, id)
}

func (r *DeveloperRepository) RotateDevID(ctx context.Context, id int64, devID string) error {
	return r.exec(ctx, `UPDATE developers SET dev_id = $2 WHERE id = $1`, id, devID)
}

func (r *DeveloperRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.exec(ctx, `UPDATE developers SET last_login = $2 WHERE id = $1`, id, at.UTC())
}

func (r *DeveloperRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("developer update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeveloperNotFound
	}
	return nil
}

func (r *DeveloperRepository) scanOne(row pgx.Row) (*domain.Developer, error) {
	var d domain.Developer
	err := row.Scan(
		&d.ID, &d.DevID, &d.UID, &d.Username, &d.Email, &d.PasswordHash, &d.EmailVerified,
		&d.IsAdmin, &d.ResetCode, &d.ResetExpires, &d.CreatedAt, &d.LastLogin,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDeveloperNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find developer: %w", err)
	}
	return &d, nil
}
