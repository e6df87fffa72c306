package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

// DedupChecker abstracts the idempotency store (Redis).
type DedupChecker interface {
	IsDuplicate(ctx context.Context, key, outcome string, ts time.Time) (bool, error)
	Mark(ctx context.Context, key, outcome string, ts time.Time) error
}

type auditService struct {
	auditRepo ports.AuditRepository
	dedup     DedupChecker
	log       zerolog.Logger
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(auditRepo ports.AuditRepository, dedup DedupChecker, log zerolog.Logger) ports.AuditService {
	return &auditService{
		auditRepo: auditRepo,
		dedup:     dedup,
		log:       log,
	}
}

// Process deduplicates and archives a single activation attempt. The
// archive never feeds back into license state, so every failure here is
// logged and swallowed except the final insert.
func (s *auditService) Process(ctx context.Context, event domain.ActivationEvent) error {
	// 1. Idempotency check — silently skip duplicates (retried deliveries).
	isDup, err := s.dedup.IsDuplicate(ctx, event.Key, event.Outcome, event.Timestamp)
	if err != nil {
		s.log.Warn().Err(err).Str("key", event.Key).Msg("dedup check failed, archiving anyway")
	} else if isDup {
		s.log.Debug().Str("key", event.Key).Str("outcome", event.Outcome).Msg("duplicate activation event skipped")
		return nil
	}

	// 2. Mark as processed before writing (prevents duplicate archiving on retry).
	if markErr := s.dedup.Mark(ctx, event.Key, event.Outcome, event.Timestamp); markErr != nil {
		s.log.Warn().Err(markErr).Str("key", event.Key).Msg("failed to set dedup key")
	}

	// 3. Archive the attempt.
	if err := s.auditRepo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("process activation event: %w", err)
	}

	s.log.Info().
		Str("key", event.Key).
		Str("app_id", event.AppID).
		Str("outcome", event.Outcome).
		Str("source", event.Source).
		Msg("activation event archived")

	return nil
}
