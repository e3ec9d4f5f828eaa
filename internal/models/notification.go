package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a message directed at exactly one user.
type Notification struct {
	BaseModel
	UserID        uuid.UUID        `json:"user_id" gorm:"type:uuid;not null;index"`
	Title         string           `json:"title" gorm:"size:255;not null"`
	Message       string           `json:"message" gorm:"type:text;not null"`
	Type          NotificationType `json:"type" gorm:"type:varchar(20);not null"`
	Read          bool             `json:"read" gorm:"not null;index"`
	ReadAt        *time.Time       `json:"read_at,omitempty"`
	ApplicationID *uuid.UUID       `json:"application_id,omitempty" gorm:"type:uuid;index"`
}
