package repository

import (
	"context"

	"discusshub/internal/models"

	"gorm.io/gorm"
)

// AnnouncementRepository defines persistence operations for announcements.
type AnnouncementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	List(ctx context.Context) ([]*models.Announcement, error)
}

type announcementRepository struct {
	db *gorm.DB
}

// NewAnnouncementRepository returns a new AnnouncementRepository implementation.
func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if err := r.db.WithContext(ctx).Create(announcement).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *announcementRepository) List(ctx context.Context) ([]*models.Announcement, error) {
	var announcements []*models.Announcement
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&announcements).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return announcements, nil
}
