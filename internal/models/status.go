package models

import "fmt"

// ApplicationStatus is the workflow state of an invention disclosure.
type ApplicationStatus string

const (
	StatusDraft       ApplicationStatus = "draft"
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under_review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
	StatusPatentFiled ApplicationStatus = "patent_filed"
	StatusPublished   ApplicationStatus = "published"
)

// AllStatuses lists every state in workflow order.
var AllStatuses = []ApplicationStatus{
	StatusDraft,
	StatusSubmitted,
	StatusUnderReview,
	StatusApproved,
	StatusRejected,
	StatusPatentFiled,
	StatusPublished,
}

// AttorneyQueueStatuses are the states in which an application is visible to patent attorneys,
// i.e. it has already been forwarded by an admin.
var AttorneyQueueStatuses = []ApplicationStatus{StatusApproved, StatusRejected, StatusPatentFiled}

func ParseStatus(s string) (ApplicationStatus, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

func (s ApplicationStatus) InAttorneyQueue() bool {
	for _, st := range AttorneyQueueStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// StatusLabel is the human readable label of a status.
func StatusLabel(s ApplicationStatus) string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusSubmitted:
		return "Submitted"
	case StatusUnderReview:
		return "Under Review"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusPatentFiled:
		return "Patent Filed"
	case StatusPublished:
		return "Published"
	}
	panic(fmt.Sprintf("models: unmapped application status %q", string(s)))
}

// StatusColor is the badge colour the presentation layer uses for a status.
func StatusColor(s ApplicationStatus) string {
	switch s {
	case StatusDraft:
		return "gray"
	case StatusSubmitted:
		return "blue"
	case StatusUnderReview:
		return "yellow"
	case StatusApproved:
		return "green"
	case StatusRejected:
		return "red"
	case StatusPatentFiled:
		return "purple"
	case StatusPublished:
		return "emerald"
	}
	panic(fmt.Sprintf("models: unmapped application status %q", string(s)))
}
