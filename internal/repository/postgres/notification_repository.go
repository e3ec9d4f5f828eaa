package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", translate(err))
	}
	return nil
}

func (r *NotificationRepository) Get(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	var n models.Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (r *NotificationRepository) List(ctx context.Context, filter repository.NotificationFilter) ([]models.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", filter.UserID)
	if filter.UnreadOnly {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", translate(err))
	}

	var out []models.Notification
	if err := paginate(query.Order("created_at DESC"), filter.Offset, filter.Limit).Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", translate(err))
	}
	return out, total, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND read = ?", id, false).
		Updates(map[string]interface{}{"read": true, "read_at": at, "updated_at": at}).Error
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", translate(err))
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": at, "updated_at": at})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", translate(result.Error))
	}
	return result.RowsAffected, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", translate(err))
	}
	return count, nil
}
