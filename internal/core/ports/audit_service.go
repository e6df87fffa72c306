package ports

import (
	"context"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
)

// AuditService processes activation-attempt events off the hot path.
type AuditService interface {
	Process(ctx context.Context, event domain.ActivationEvent) error
}

// AuditSink is what the license service enqueues events into; the queue
// dispatcher implements it. A nil-safe no-op sink is acceptable in tests.
type AuditSink interface {
	Enqueue(event domain.ActivationEvent)
}

// AnnouncementService owns platform-wide notices.
type AnnouncementService interface {
	Publish(ctx context.Context, title, content string) (*domain.Announcement, error)
	Retire(ctx context.Context, id int64) error
	ListActive(ctx context.Context) ([]*domain.Announcement, error)
}
