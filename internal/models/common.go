// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enums
type UserRole string

const (
	RoleUser           UserRole = "user"
	RoleAdmin          UserRole = "admin"
	RolePatentAttorney UserRole = "patent_attorney"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RolePatentAttorney:
		return true
	}
	return false
}

type PatentType string

const (
	PatentTypeUtility PatentType = "utility"
	PatentTypeDesign  PatentType = "design"
	PatentTypePublish PatentType = "publish"
)

func (p PatentType) Valid() bool {
	switch p {
	case PatentTypeUtility, PatentTypeDesign, PatentTypePublish:
		return true
	}
	return false
}

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)
