// internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ipr-backend/internal/config"
	"github.com/javajoker/ipr-backend/internal/events"
	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/repository"
	"github.com/javajoker/ipr-backend/internal/utils"
)

// ErrAccountRevoked is returned when an account whose access was revoked tries to sign in.
var ErrAccountRevoked = errors.New("account access revoked")

// AuthService is the identity store: accounts, credentials and tokens.
type AuthService struct {
	users     repository.UserRepository
	cfg       *config.Config
	publisher events.Publisher
	log       logrus.FieldLogger
	now       func() time.Time
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,strong_password"`
	DisplayName string `json:"display_name" validate:"required,max=255"`
	Department  string `json:"department,omitempty" validate:"max=255"`
	EmployeeID  string `json:"employee_id,omitempty" validate:"employee_id"`
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

func NewAuthService(store *repository.Store, cfg *config.Config, publisher events.Publisher, log logrus.FieldLogger) *AuthService {
	if publisher == nil {
		publisher = events.Discard
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthService{
		users:     store.Users,
		cfg:       cfg,
		publisher: publisher,
		log:       log.WithField("component", "auth"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register opens an account with the user role. Registration is open, so accounts start approved.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(utils.GetValidationErrors(err)...)
	}

	now := s.now()
	user := &models.User{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        models.RoleUser,
		Department:  strings.TrimSpace(req.Department),
		EmployeeID:  strings.TrimSpace(req.EmployeeID),
		IsApproved:  true,
		ApprovedAt:  &now,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: user with this email already exists", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "email": user.Email}).Info("account registered")
	s.publisher.Publish(events.Change{Collection: events.CollectionUsers, ID: user.ID.String()})
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationError(utils.GetValidationErrors(err)...)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, ErrUnauthorized
	}
	if !user.IsApproved {
		return nil, ErrAccountRevoked
	}

	now := s.now()
	if updated, err := s.users.Update(ctx, user.ID, models.UserPatch{LastLoginAt: &now}); err == nil {
		user = updated
	} else {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to stamp last login")
	}

	return s.issue(user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	userIDStr, err := utils.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token: %v", ErrUnauthorized, err)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user ID in token", ErrUnauthorized)
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !user.IsApproved {
		return nil, ErrAccountRevoked
	}

	return s.issue(user)
}

// Me returns the stored account behind the principal.
func (s *AuthService) Me(ctx context.Context, p Principal) (*models.User, error) {
	if !p.Authenticated() {
		return nil, ErrUnauthorized
	}
	user, err := s.users.Get(ctx, p.ID)
	return user, fromRepository(err)
}

// Authenticate resolves an access token to a principal. Role and display name come from the
// stored account, so a role change or revocation applies to tokens already issued.
func (s *AuthService) Authenticate(ctx context.Context, token string) (Principal, error) {
	claims, err := utils.ValidateJWT(token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: invalid user ID in token", ErrUnauthorized)
	}
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: account not found", ErrUnauthorized)
	}
	if !user.IsApproved {
		return Principal{}, ErrAccountRevoked
	}
	p := Principal{
		ID:          user.ID,
		Email:       user.Email,
		Role:        user.Role,
		DisplayName: user.DisplayName,
	}
	if !p.Authenticated() {
		return Principal{}, fmt.Errorf("%w: account has no valid role", ErrUnauthorized)
	}
	return p, nil
}

// EnsureAdmin creates the bootstrap admin account if no account uses email yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if existing, err := s.users.GetByEmail(ctx, email); err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if password == "" {
		generated, err := utils.GeneratePassword()
		if err != nil {
			return nil, err
		}
		password = generated
		s.log.WithFields(logrus.Fields{"email": email, "password": password}).Warn("generated bootstrap admin password, change it after first login")
	}

	now := s.now()
	admin := &models.User{
		Email:       email,
		DisplayName: name,
		Role:        models.RoleAdmin,
		IsApproved:  true,
		ApprovedAt:  &now,
	}
	if err := admin.SetPassword(password); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, err
	}
	s.log.WithField("email", email).Info("bootstrap admin created")
	return admin, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResponse, error) {
	accessToken, err := utils.GenerateJWT(
		user.ID,
		user.Email,
		string(user.Role),
		user.DisplayName,
		s.cfg.JWT.AccessTokenTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID, s.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}
