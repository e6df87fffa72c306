package ports

import (
	"context"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
)

// AuditRepository archives activation attempts. The archive is
// best-effort and non-authoritative; failures must never affect license
// state.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.ActivationEvent) error
}

// AnnouncementRepository stores platform-wide notices.
type AnnouncementRepository interface {
	Create(ctx context.Context, a *domain.Announcement) error
	ListActive(ctx context.Context) ([]*domain.Announcement, error)
	SetActive(ctx context.Context, id int64, active bool) error
}
