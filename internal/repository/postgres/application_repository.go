package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		return fmt.Errorf("failed to create application: %w", translate(err))
	}
	return nil
}

func (r *ApplicationRepository) Get(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var app models.Application
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error; err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (r *ApplicationRepository) List(ctx context.Context, filter repository.ApplicationFilter) ([]models.Application, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Application{})

	if filter.ApplicantEmail != "" {
		query = query.Where("applicant_email = ?", filter.ApplicantEmail)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if !filter.IncludeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("title ILIKE ? OR application_number ILIKE ? OR applicant_name ILIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", translate(err))
	}

	var apps []models.Application
	if err := paginate(query.Order("created_at DESC"), filter.Offset, filter.Limit).Find(&apps).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", translate(err))
	}
	return apps, total, nil
}

func (r *ApplicationRepository) Update(ctx context.Context, id uuid.UUID, patch models.ApplicationPatch) (*models.Application, error) {
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Updates(patch.Columns(nowUTC()))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update application: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *ApplicationRepository) AssignNumber(ctx context.Context, id uuid.UUID, number string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND application_number IS NULL", id).
		Updates(map[string]interface{}{
			"application_number": number,
			"updated_at":         nowUTC(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to assign application number: %w", translate(result.Error))
	}
	if result.RowsAffected == 1 {
		return true, nil
	}

	// Either someone else assigned first or the row does not exist.
	if _, err := r.Get(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error) {
	var rows []struct {
		Status models.ApplicationStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Select("status, COUNT(*) AS count").
		Where("deleted_at IS NULL").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count applications by status: %w", translate(err))
	}

	counts := make(map[models.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
