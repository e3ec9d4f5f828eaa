// internal/repository/repository.go
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/javajoker/ipr-backend/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write lost a race: a serialization failure, a deadlock or a
	// unique key collision. Callers may retry.
	ErrConflict = errors.New("write conflict")
)

type ApplicationFilter struct {
	ApplicantEmail string
	Statuses       []models.ApplicationStatus
	IncludeDeleted bool
	Search         string // title, application number or applicant name
	Offset         int
	Limit          int // 0 means no limit
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	Get(ctx context.Context, id uuid.UUID) (*models.Application, error)
	// List returns matches ordered by created_at desc together with the unpaged total.
	List(ctx context.Context, filter ApplicationFilter) ([]models.Application, int64, error)
	Update(ctx context.Context, id uuid.UUID, patch models.ApplicationPatch) (*models.Application, error)
	// AssignNumber writes number only when the application has none yet. It reports whether
	// this call performed the write.
	AssignNumber(ctx context.Context, id uuid.UUID, number string) (bool, error)
	CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int64, error)
}

type NotificationFilter struct {
	UserID     uuid.UUID
	UnreadOnly bool
	Offset     int
	Limit      int
}

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	Get(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, filter NotificationFilter) ([]models.Notification, int64, error)
	// MarkRead is a no-op on an already read notification.
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type CounterRepository interface {
	// Increment advances counter id by one inside a serializable transaction, creating it at
	// base when absent, and returns the new value. A lost race surfaces as ErrConflict.
	Increment(ctx context.Context, id, prefix string, base int64) (int64, error)
}

type UserFilter struct {
	Role     *models.UserRole
	Approved *bool
	Search   string // email or display name
	Offset   int
	Limit    int
}

type UserRepository interface {
	// Create fails with ErrConflict when the email is taken.
	Create(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	Update(ctx context.Context, id uuid.UUID, patch models.UserPatch) (*models.User, error)
	IDsByRole(ctx context.Context, role models.UserRole) ([]uuid.UUID, error)
	Count(ctx context.Context, approved *bool) (int64, error)
}

type ReviewRepository interface {
	Append(ctx context.Context, record *models.ReviewRecord) error
	// ListByApplication returns the history oldest first.
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]models.ReviewRecord, error)
}

// Store groups the collections the services work against.
type Store struct {
	Applications  ApplicationRepository
	Notifications NotificationRepository
	Counters      CounterRepository
	Users         UserRepository
	Reviews       ReviewRepository
}
