// internal/services/user_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ipr-backend/internal/events"
	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
	"github.com/javajoker/ipr-backend/internal/utils"
)

type UserService struct {
	users     repository.UserRepository
	notifier  *NotificationService
	publisher events.Publisher
	log       logrus.FieldLogger
	now       func() time.Time
}

type UpdateUserProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=255"`
	Department  *string `json:"department,omitempty" validate:"omitempty,max=255"`
	EmployeeID  *string `json:"employee_id,omitempty" validate:"omitempty,employee_id"`
}

type ChangeRoleRequest struct {
	Role models.UserRole `json:"role" validate:"required,oneof=user admin patent_attorney"`
}

type UserQuery struct {
	Role     *models.UserRole
	Approved *bool
	Search   string
	Offset   int
	Limit    int
}

func NewUserService(store *repository.Store, notifier *NotificationService, publisher events.Publisher, log logrus.FieldLogger) *UserService {
	if publisher == nil {
		publisher = events.Discard
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &UserService{
		users:     store.Users,
		notifier:  notifier,
		publisher: publisher,
		log:       log.WithField("component", "users"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// UpdateProfile edits the caller's own profile. Existing applications keep the snapshot taken
// at creation.
func (s *UserService) UpdateProfile(ctx context.Context, p Principal, req *UpdateUserProfileRequest) (*models.User, error) {
	if !p.Authenticated() {
		return nil, ErrForbidden
	}
	trim(req.DisplayName)
	trim(req.Department)
	trim(req.EmployeeID)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(utils.GetValidationErrors(err)...)
	}

	user, err := s.users.Update(ctx, p.ID, models.UserPatch{
		DisplayName: req.DisplayName,
		Department:  req.Department,
		EmployeeID:  req.EmployeeID,
	})
	if err != nil {
		return nil, fromRepository(err)
	}

	s.publisher.Publish(events.Change{Collection: events.CollectionUsers, ID: user.ID.String()})
	return user, nil
}

func (s *UserService) List(ctx context.Context, p Principal, q UserQuery) ([]models.User, int64, error) {
	if err := p.requireRole("list users", models.RoleAdmin); err != nil {
		return nil, 0, err
	}
	users, total, err := s.users.List(ctx, repository.UserFilter{
		Role:     q.Role,
		Approved: q.Approved,
		Search:   q.Search,
		Offset:   q.Offset,
		Limit:    q.Limit,
	})
	if err != nil {
		return nil, 0, fromRepository(err)
	}
	return users, total, nil
}

// Approve grants access and notifies the account holder.
func (s *UserService) Approve(ctx context.Context, p Principal, id uuid.UUID) (*models.User, error) {
	if err := p.requireRole("approve users", models.RoleAdmin); err != nil {
		return nil, err
	}

	approved := true
	now := s.now()
	user, err := s.users.Update(ctx, id, models.UserPatch{IsApproved: &approved, ApprovedAt: &now})
	if err != nil {
		return nil, fromRepository(err)
	}

	s.changed(p, user, "approved")
	s.notify(ctx, user.ID, AccountApprovedTemplate())
	return user, nil
}

// Reject revokes access. Admins cannot revoke themselves.
func (s *UserService) Reject(ctx context.Context, p Principal, id uuid.UUID) (*models.User, error) {
	if err := p.requireRole("reject users", models.RoleAdmin); err != nil {
		return nil, err
	}
	if id == p.ID {
		return nil, fmt.Errorf("%w: admins cannot revoke their own access", ErrInvalidTransition)
	}

	approved := false
	now := s.now()
	user, err := s.users.Update(ctx, id, models.UserPatch{IsApproved: &approved, RejectedAt: &now})
	if err != nil {
		return nil, fromRepository(err)
	}

	s.changed(p, user, "rejected")
	s.notify(ctx, user.ID, AccountRejectedTemplate())
	return user, nil
}

func (s *UserService) ChangeRole(ctx context.Context, p Principal, id uuid.UUID, req *ChangeRoleRequest) (*models.User, error) {
	if err := p.requireRole("change user roles", models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(utils.GetValidationErrors(err)...)
	}
	if id == p.ID && req.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admins cannot demote themselves", ErrInvalidTransition)
	}

	user, err := s.users.Update(ctx, id, models.UserPatch{Role: &req.Role})
	if err != nil {
		return nil, fromRepository(err)
	}

	s.changed(p, user, "role:"+string(req.Role))
	return user, nil
}

func (s *UserService) changed(p Principal, user *models.User, action string) {
	s.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
		"action":  action,
		"actor":   p.Email,
	}).Info("account updated by admin")
	s.publisher.Publish(events.Change{Collection: events.CollectionUsers, ID: user.ID.String()})
}

func (s *UserService) notify(ctx context.Context, userID uuid.UUID, tpl Template) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, []uuid.UUID{userID}, tpl, nil); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("account notification failed")
	}
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
