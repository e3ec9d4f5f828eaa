// internal/models/user.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	DisplayName  string     `json:"display_name" gorm:"size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(20);not null;index"`
	Department   string     `json:"department" gorm:"size:255"`
	EmployeeID   string     `json:"employee_id" gorm:"size:100"`
	IsApproved   bool       `json:"is_approved" gorm:"not null"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	RejectedAt   *time.Time `json:"rejected_at,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// UserPatch is a partial update of a user record.
type UserPatch struct {
	DisplayName *string
	Department  *string
	EmployeeID  *string
	Role        *UserRole
	IsApproved  *bool
	ApprovedAt  *time.Time
	RejectedAt  *time.Time
	LastLoginAt *time.Time
}

func (p UserPatch) Columns(now time.Time) map[string]interface{} {
	cols := map[string]interface{}{"updated_at": now}
	if p.DisplayName != nil {
		cols["display_name"] = *p.DisplayName
	}
	if p.Department != nil {
		cols["department"] = *p.Department
	}
	if p.EmployeeID != nil {
		cols["employee_id"] = *p.EmployeeID
	}
	if p.Role != nil {
		cols["role"] = *p.Role
	}
	if p.IsApproved != nil {
		cols["is_approved"] = *p.IsApproved
	}
	if p.ApprovedAt != nil {
		cols["approved_at"] = *p.ApprovedAt
	}
	if p.RejectedAt != nil {
		cols["rejected_at"] = *p.RejectedAt
	}
	if p.LastLoginAt != nil {
		cols["last_login_at"] = *p.LastLoginAt
	}
	return cols
}

func (p UserPatch) Apply(u *User, now time.Time) {
	u.UpdatedAt = now
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.EmployeeID != nil {
		u.EmployeeID = *p.EmployeeID
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsApproved != nil {
		u.IsApproved = *p.IsApproved
	}
	if p.ApprovedAt != nil {
		t := *p.ApprovedAt
		u.ApprovedAt = &t
	}
	if p.RejectedAt != nil {
		t := *p.RejectedAt
		u.RejectedAt = &t
	}
	if p.LastLoginAt != nil {
		t := *p.LastLoginAt
		u.LastLoginAt = &t
	}
}
