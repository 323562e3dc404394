package service

import (
	"context"

	"discusshub/internal/models"
	"discusshub/internal/repository"
)

// AnnouncementService manages site-wide announcements.
type AnnouncementService struct {
	announcements repository.AnnouncementRepository
}

// NewAnnouncementService returns an AnnouncementService backed by the given
// repository.
func NewAnnouncementService(announcements repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{announcements: announcements}
}

// CreateAnnouncement publishes a new announcement.
func (s *AnnouncementService) CreateAnnouncement(ctx context.Context, a *models.Announcement) error {
	return s.announcements.Create(ctx, a)
}

// ListAnnouncements returns every announcement, newest first.
func (s *AnnouncementService) ListAnnouncements(ctx context.Context) ([]*models.Announcement, error) {
	return s.announcements.List(ctx)
}
