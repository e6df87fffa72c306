package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

const licenseColumns = `id, key, project_id, duration_minutes, is_active, is_banned,
	activation_time, expiry_time, notes, created_at`

// LicenseRepository implements ports.LicenseRepository on PostgreSQL.
type LicenseRepository struct {
	pool *pgxpool.Pool
}

// NewLicenseRepository creates a new LicenseRepository.
func NewLicenseRepository(pool *pgxpool.Pool) ports.LicenseRepository {
	return &LicenseRepository{pool: pool}
}

// CreateBatch inserts all keys in one transaction so a collision rolls the
// whole batch back and the caller can retry with fresh key strings.
func (r *LicenseRepository) CreateBatch(ctx context.Context, keys []*domain.LicenseKey) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create licenses: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const query = `
	INSERT INTO license_keys (key, project_id, duration_minutes, is_active, is_banned, notes, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id`

	for _, k := range keys {
		err := tx.QueryRow(ctx, query,
			k.Key, k.ProjectID, k.DurationMinutes, k.IsActive, k.IsBanned, k.Notes, k.CreatedAt,
		).Scan(&k.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrKeyCollision
			}
			return fmt.Errorf("create licenses: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("create licenses: commit: %w", err)
	}
	return nil
}

func (r *LicenseRepository) FindByKey(ctx context.Context, projectID int64, key string) (*domain.LicenseKey, error) {
	query := fmt.Sprintf(`SELECT %s FROM license_keys WHERE project_id = $1 AND key = $2`, licenseColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, projectID, key))
}

func (r *LicenseRepository) FindForDeveloper(ctx context.Context, id, developerID int64) (*domain.LicenseKey, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM license_keys
	WHERE id = $1
	  AND project_id IN (SELECT id FROM projects WHERE developer_id = $2)`, licenseColumns)
	return r.scanOne(r.pool.QueryRow(ctx, query, id, developerID))
}

func (r *LicenseRepository) ListForDeveloper(ctx context.Context, developerID, projectID int64) ([]*domain.LicenseKey, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM license_keys
	WHERE project_id IN (SELECT id FROM projects WHERE developer_id = $1)
	  AND ($2 = 0 OR project_id = $2)
	ORDER BY created_at DESC, id DESC`, licenseColumns)

	rows, err := r.pool.Query(ctx, query, developerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("list licenses: %w", err)
	}
	defer rows.Close()

	var keys []*domain.LicenseKey
	for rows.Next() {
		k, err := scanLicense(rows)
		if err != nil {
			return nil, fmt.Errorf("list licenses: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Activate is the one-time activation as a single conditional update; the
// database evaluates the guard and the write atomically. A guard miss
// returns (nil, nil) and the caller classifies the rejection.
func (r *LicenseRepository) Activate(ctx context.Context, id int64, now time.Time) (*time.Time, error) {
	const query = `
	UPDATE license_keys
	SET activation_time = $2,
	    expiry_time = $2 + make_interval(mins => duration_minutes)
	WHERE id = $1
	  AND activation_time IS NULL
	  AND is_active
	  AND NOT is_banned
	RETURNING expiry_time`

	var expiry time.Time
	err := r.pool.QueryRow(ctx, query, id, now.UTC()).Scan(&expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("activate license: %w", err)
	}
	return &expiry, nil
}

func (r *LicenseRepository) ForceActivate(ctx context.Context, id int64, now time.Time) (*time.Time, error) {
	const query = `
	UPDATE license_keys
	SET activation_time = $2,
	    expiry_time = $2 + make_interval(mins => duration_minutes),
	    is_active = TRUE,
	    is_banned = FALSE
	WHERE id = $1
	RETURNING expiry_time`

	var expiry time.Time
	err := r.pool.QueryRow(ctx, query, id, now.UTC()).Scan(&expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLicenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("force activate license: %w", err)
	}
	return &expiry, nil
}

func (r *LicenseRepository) Deactivate(ctx context.Context, id int64) error {
	const query = `UPDATE license_keys SET activation_time = NULL, expiry_time = NULL WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *LicenseRepository) SetActive(ctx context.Context, id int64, active bool) error {
	const query = `UPDATE license_keys SET is_active = $2 WHERE id = $1`
	return r.exec(ctx, query, id, active)
}

// SetBanned keeps the ban invariant at the store level: banning always
// forces the key inactive.
func (r *LicenseRepository) SetBanned(ctx context.Context, id int64, banned bool) error {
	const query = `
	UPDATE license_keys
	SET is_banned = $2,
	    is_active = CASE WHEN $2 THEN FALSE ELSE is_active END
	WHERE id = $1`
	return r.exec(ctx, query, id, banned)
}

func (r *LicenseRepository) Update(ctx context.Context, key *domain.LicenseKey) error {
	const query = `
	UPDATE license_keys
	SET duration_minutes = $2, is_active = $3, is_banned = $4,
	    activation_time = $5, expiry_time = $6, notes = $7
	WHERE id = $1`
	return r.exec(ctx, query,
		key.ID, key.DurationMinutes, key.IsActive, key.IsBanned,
		key.ActivationTime, key.ExpiryTime, key.Notes)
}

func (r *LicenseRepository) Delete(ctx context.Context, id int64) error {
	return r.exec(ctx, `DELETE FROM license_keys WHERE id = $1`, id)
}

func (r *LicenseRepository) SweepExpired(ctx context.Context, developerID int64, now time.Time) (int64, error) {
	const query = `
	UPDATE license_keys
	SET is_active = FALSE
	WHERE is_active
	  AND expiry_time IS NOT NULL
	  AND expiry_time <= $2
	  AND project_id IN (SELECT id FROM projects WHERE developer_id = $1)`

	tag, err := r.pool.Exec(ctx, query, developerID, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep expired licenses: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *LicenseRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("license update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLicenseNotFound
	}
	return nil
}

func (r *LicenseRepository) scanOne(row pgx.Row) (*domain.LicenseKey, error) {
	k, err := scanLicense(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLicenseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find license: %w", err)
	}
	return k, nil
}

func scanLicense(row pgx.Row) (*domain.LicenseKey, error) {
	var k domain.LicenseKey
	err := row.Scan(
		&k.ID, &k.Key, &k.ProjectID, &k.DurationMinutes, &k.IsActive, &k.IsBanned,
		&k.ActivationTime, &k.ExpiryTime, &k.Notes, &k.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// isUniqueViolation reports a PostgreSQL unique-constraint error (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
