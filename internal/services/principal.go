package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/javajoker/ipr-backend/internal/models"
)

// Principal is the authenticated caller of a request. It is passed explicitly into every
// operation; nothing in this package reads ambient session state.
type Principal struct {
	ID          uuid.UUID       `json:"uid"`
	Email       string          `json:"email"`
	Role        models.UserRole `json:"role"`
	DisplayName string          `json:"display_name"`
}

func (p Principal) Authenticated() bool {
	return p.ID != uuid.Nil && p.Role.Valid()
}

func (p Principal) Is(role models.UserRole) bool {
	return p.Authenticated() && p.Role == role
}

func (p Principal) requireRole(action string, roles ...models.UserRole) error {
	if !p.Authenticated() {
		return fmt.Errorf("%w: %s requires an authenticated user", ErrForbidden, action)
	}
	for _, r := range roles {
		if p.Role == r {
			return nil
		}
	}
	return fmt.Errorf("%w: role %s may not %s", ErrForbidden, p.Role, action)
}

// PrincipalFromUser builds the request principal for a stored account.
func PrincipalFromUser(u *models.User) Principal {
	return Principal{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		DisplayName: u.DisplayName,
	}
}
