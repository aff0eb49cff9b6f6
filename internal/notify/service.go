// Package notify persists and serves in-app notifications.
package notify

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/ntumia/mediahub/internal/database/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("notification not found")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, kind models.NotificationType, title, message string) (*models.Notification, error) {
	n := &models.Notification{
		UserID:  userID,
		Type:    kind,
		Title:   title,
		Message: message,
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

// List returns a user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flags one of the user's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
