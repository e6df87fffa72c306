package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// AnnouncementRepository implements ports.AnnouncementRepository on PostgreSQL.
type AnnouncementRepository struct {
	pool *pgxpool.Pool
}

// NewAnnouncementRepository creates a new AnnouncementRepository.
func NewAnnouncementRepository(pool *pgxpool.Pool) ports.AnnouncementRepository {
	return &AnnouncementRepository{pool: pool}
}

func (r *AnnouncementRepository) Create(ctx context.Context, a *domain.Announcement) error {
	const query = `
	INSERT INTO announcements (title, content, is_active, created_at)
	VALUES ($1, $2, $3, $4)
	RETURNING id`

	err := r.pool.QueryRow(ctx, query, a.Title, a.Content, a.IsActive, a.CreatedAt).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

func (r *AnnouncementRepository) ListActive(ctx context.Context) ([]*domain.Announcement, error) {
	const query = `
	SELECT id, title, content, is_active, created_at
	FROM announcements
	WHERE is_active
	ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	defer rows.Close()

	var out []*domain.Announcement
	for rows.Next() {
		var a domain.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("list announcements: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *AnnouncementRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE announcements SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAnnouncementNotFound
	}
	return nil
}
