package models

import "github.com/google/uuid"

// ReviewRecord keeps the history that the scalar review fields on Application overwrite.
type ReviewRecord struct {
	BaseModel
	ApplicationID    uuid.UUID         `json:"application_id" gorm:"type:uuid;not null;index"`
	ReviewerID       uuid.UUID         `json:"reviewer_id" gorm:"type:uuid;not null"`
	ReviewerName     string            `json:"reviewer_name" gorm:"size:255"`
	ReviewerRole     UserRole          `json:"reviewer_role" gorm:"type:varchar(20);not null"`
	PreviousStatus   ApplicationStatus `json:"previous_status" gorm:"type:varchar(20)"`
	NewStatus        ApplicationStatus `json:"new_status" gorm:"type:varchar(20);not null"`
	PreviousComments string            `json:"previous_comments,omitempty" gorm:"type:text"`
	Comments         string            `json:"comments" gorm:"type:text"`
}
