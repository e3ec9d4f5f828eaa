package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/ipr-backend/internal/models"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Append(ctx context.Context, record *models.ReviewRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to append review record: %w", translate(err))
	}
	return nil
}

func (r *ReviewRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]models.ReviewRecord, error) {
	var records []models.ReviewRecord
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list review records: %w", translate(err))
	}
	return records, nil
}
