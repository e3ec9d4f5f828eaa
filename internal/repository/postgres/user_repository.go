package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = strings.ToLower(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Approved != nil {
		query = query.Where("is_approved = ?", *filter.Approved)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("email ILIKE ? OR display_name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", translate(err))
	}

	var users []models.User
	if err := paginate(query.Order("created_at DESC"), filter.Offset, filter.Limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", translate(err))
	}
	return users, total, nil
}

func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(patch.Columns(nowUTC()))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update user: %w", translate(result.Error))
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *UserRepository) IDsByRole(ctx context.Context, role models.UserRole) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ? AND is_approved = ?", role, true).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s recipients: %w", role, translate(err))
	}
	return ids, nil
}

func (r *UserRepository) Count(ctx context.Context, approved *bool) (int64, error) {
	query := r.db.WithContext(ctx).Model(&models.User{})
	if approved != nil {
		query = query.Where("is_approved = ?", *approved)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", translate(err))
	}
	return count, nil
}
