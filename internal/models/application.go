// internal/models/application.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Application is one invention disclosure. The applicant fields are a snapshot of the submitter
// taken at creation time.
type Application struct {
	BaseModel
	ApplicationNumber *string           `json:"application_number,omitempty" gorm:"size:20;uniqueIndex"`
	Title             string            `json:"title" gorm:"size:500;not null"`
	Description       string            `json:"description" gorm:"type:text;not null"`
	Inventors         pq.StringArray    `json:"inventors" gorm:"type:text[]"`
	PatentType        *PatentType       `json:"patent_type,omitempty" gorm:"type:varchar(20)"`
	Status            ApplicationStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Attachments       Attachments       `json:"attachments" gorm:"type:jsonb"`

	ApplicantUID   uuid.UUID `json:"applicant_uid" gorm:"type:uuid;not null;index"`
	ApplicantEmail string    `json:"applicant_email" gorm:"size:255;not null;index"`
	ApplicantName  string    `json:"applicant_name" gorm:"size:255"`
	Department     string    `json:"department" gorm:"size:255"`
	EmployeeID     string    `json:"employee_id" gorm:"size:100"`

	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt     *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy     string     `json:"reviewed_by,omitempty" gorm:"size:255"`
	ReviewComments string     `json:"review_comments,omitempty" gorm:"type:text"`

	ForwardedToPAAt *time.Time `json:"forwarded_to_pa_at,omitempty" gorm:"column:forwarded_to_pa_at"`
	ForwardedBy     string     `json:"forwarded_by,omitempty" gorm:"size:255"`

	PatentabilityScore string `json:"patentability_score,omitempty" gorm:"size:100"`
	NoveltyAssessment  string `json:"novelty_assessment,omitempty" gorm:"type:text"`
	Recommendations    string `json:"recommendations,omitempty" gorm:"type:text"`

	PARemarks                string `json:"pa_remarks,omitempty" gorm:"column:pa_remarks;type:text"`
	PARemarksApprovedByAdmin bool   `json:"pa_remarks_approved_by_admin" gorm:"column:pa_remarks_approved_by_admin;not null"`

	DeletedAt *time.Time `json:"deleted_at,omitempty" gorm:"index"`
	DeletedBy string     `json:"deleted_by,omitempty" gorm:"size:255"`
}

// Number returns the application number or "" when none has been assigned yet.
func (a *Application) Number() string {
	if a.ApplicationNumber == nil {
		return ""
	}
	return *a.ApplicationNumber
}

func (a *Application) IsDeleted() bool {
	return a.DeletedAt != nil
}

// ApplicantView returns a copy safe to show the applicant: attorney remarks are withheld until
// an admin approves them.
func (a *Application) ApplicantView() *Application {
	out := *a
	if !a.PARemarksApprovedByAdmin {
		out.PARemarks = ""
	}
	return &out
}

// FileAttachment references an uploaded file; the bytes live with the upload collaborator.
type FileAttachment struct {
	ID         string    `json:"id" validate:"required"`
	Name       string    `json:"name" validate:"required"`
	URL        string    `json:"url" validate:"required,url"`
	Size       int64     `json:"size" validate:"gte=0"`
	Type       string    `json:"type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Attachments is stored as a jsonb array.
type Attachments []FileAttachment

func (a Attachments) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (a *Attachments) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("Attachments: unsupported scan source")
	}

	return json.Unmarshal(raw, a)
}

// ApplicationPatch is a partial, last-write-wins update of an application. The application
// number is deliberately absent: it is written only through the conditional number assignment.
type ApplicationPatch struct {
	Status                   *ApplicationStatus
	Title                    *string
	Description              *string
	Inventors                []string
	PatentType               *PatentType
	Attachments              Attachments
	SubmittedAt              *time.Time
	ReviewedAt               *time.Time
	ReviewedBy               *string
	ReviewComments           *string
	ForwardedToPAAt          *time.Time
	ForwardedBy              *string
	PatentabilityScore       *string
	NoveltyAssessment        *string
	Recommendations          *string
	PARemarks                *string
	PARemarksApprovedByAdmin *bool
	DeletedAt                *time.Time
	DeletedBy                *string
}

// Columns maps the patch onto database columns.
func (p ApplicationPatch) Columns(now time.Time) map[string]interface{} {
	cols := map[string]interface{}{"updated_at": now}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Inventors != nil {
		cols["inventors"] = pq.StringArray(p.Inventors)
	}
	if p.PatentType != nil {
		cols["patent_type"] = *p.PatentType
	}
	if p.Attachments != nil {
		cols["attachments"] = p.Attachments
	}
	if p.SubmittedAt != nil {
		cols["submitted_at"] = *p.SubmittedAt
	}
	if p.ReviewedAt != nil {
		cols["reviewed_at"] = *p.ReviewedAt
	}
	if p.ReviewedBy != nil {
		cols["reviewed_by"] = *p.ReviewedBy
	}
	if p.ReviewComments != nil {
		cols["review_comments"] = *p.ReviewComments
	}
	if p.ForwardedToPAAt != nil {
		cols["forwarded_to_pa_at"] = *p.ForwardedToPAAt
	}
	if p.ForwardedBy != nil {
		cols["forwarded_by"] = *p.ForwardedBy
	}
	if p.PatentabilityScore != nil {
		cols["patentability_score"] = *p.PatentabilityScore
	}
	if p.NoveltyAssessment != nil {
		cols["novelty_assessment"] = *p.NoveltyAssessment
	}
	if p.Recommendations != nil {
		cols["recommendations"] = *p.Recommendations
	}
	if p.PARemarks != nil {
		cols["pa_remarks"] = *p.PARemarks
	}
	if p.PARemarksApprovedByAdmin != nil {
		cols["pa_remarks_approved_by_admin"] = *p.PARemarksApprovedByAdmin
	}
	if p.DeletedAt != nil {
		cols["deleted_at"] = *p.DeletedAt
	}
	if p.DeletedBy != nil {
		cols["deleted_by"] = *p.DeletedBy
	}
	return cols
}

// Apply mutates a in place; it mirrors Columns for stores that hold structs.
func (p ApplicationPatch) Apply(a *Application, now time.Time) {
	a.UpdatedAt = now
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Inventors != nil {
		a.Inventors = append(pq.StringArray(nil), p.Inventors...)
	}
	if p.PatentType != nil {
		pt := *p.PatentType
		a.PatentType = &pt
	}
	if p.Attachments != nil {
		a.Attachments = append(Attachments(nil), p.Attachments...)
	}
	if p.SubmittedAt != nil {
		a.SubmittedAt = timePtr(*p.SubmittedAt)
	}
	if p.ReviewedAt != nil {
		a.ReviewedAt = timePtr(*p.ReviewedAt)
	}
	if p.ReviewedBy != nil {
		a.ReviewedBy = *p.ReviewedBy
	}
	if p.ReviewComments != nil {
		a.ReviewComments = *p.ReviewComments
	}
	if p.ForwardedToPAAt != nil {
		a.ForwardedToPAAt = timePtr(*p.ForwardedToPAAt)
	}
	if p.ForwardedBy != nil {
		a.ForwardedBy = *p.ForwardedBy
	}
	if p.PatentabilityScore != nil {
		a.PatentabilityScore = *p.PatentabilityScore
	}
	if p.NoveltyAssessment != nil {
		a.NoveltyAssessment = *p.NoveltyAssessment
	}
	if p.Recommendations != nil {
		a.Recommendations = *p.Recommendations
	}
	if p.PARemarks != nil {
		a.PARemarks = *p.PARemarks
	}
	if p.PARemarksApprovedByAdmin != nil {
		a.PARemarksApprovedByAdmin = *p.PARemarksApprovedByAdmin
	}
	if p.DeletedAt != nil {
		a.DeletedAt = timePtr(*p.DeletedAt)
	}
	if p.DeletedBy != nil {
		a.DeletedBy = *p.DeletedBy
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
