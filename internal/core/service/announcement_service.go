package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/simplekeytime/licensing-system/internal/core/domain"
	"github.com/simplekeytime/licensing-system/internal/core/ports"
)

type announcementService struct {
	announcements ports.AnnouncementRepository
	log           zerolog.Logger
}

// NewAnnouncementService returns an AnnouncementService implementation.
func NewAnnouncementService(announcements ports.AnnouncementRepository, log zerolog.Logger) ports.AnnouncementService {
	return &announcementService{announcements: announcements, log: log}
}

func (s *announcementService) Publish(ctx context.Context, title, content string) (*domain.Announcement, error) {
	if title == "" || content == "" {
		return nil, domain.ErrInvalidInput
	}
	a := &domain.Announcement{
		Title:     title,
		Content:   content,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.announcements.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info().Int64("announcement_id", a.ID).Str("title", title).Msg("announcement published")
	return a, nil
}

func (s *announcementService) Retire(ctx context.Context, id int64) error {
	return s.announcements.SetActive(ctx, id, false)
}

func (s *announcementService) ListActive(ctx context.Context) ([]*domain.Announcement, error) {
	return s.announcements.ListActive(ctx)
}
