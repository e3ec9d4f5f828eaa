package services

import (
	"fmt"

	"github.com/javajoker/ipr-backend/internal/models"
)

// Template is the rendered content of one notification. Templates are pure functions of the
// transition data; callers choose which one to send.
type Template struct {
	Title   string
	Message string
	Type    models.NotificationType
}

// applicationRef formats the "application 0425-101" fragment, dropping the number when the
// application has not been numbered yet.
func applicationRef(number string) string {
	if number == "" {
		return "application"
	}
	return "application " + number
}

func ApplicationSubmittedTemplate(number string) Template {
	return Template{
		Title:   "Application Submitted",
		Message: fmt.Sprintf("Your patent %s has been successfully submitted and is awaiting review.", applicationRef(number)),
		Type:    models.NotificationSuccess,
	}
}

func ApplicationUnderReviewTemplate(number string) Template {
	return Template{
		Title:   "Application Under Review",
		Message: fmt.Sprintf("Your patent %s is now under review by our patent attorney.", applicationRef(number)),
		Type:    models.NotificationInfo,
	}
}

func ApplicationApprovedTemplate(number string) Template {
	return Template{
		Title:   "Application Approved",
		Message: fmt.Sprintf("Congratulations! Your patent %s has been approved for patent filing.", applicationRef(number)),
		Type:    models.NotificationSuccess,
	}
}

func ApplicationRejectedTemplate(number, reason string) Template {
	detail := "Please check the review comments for details."
	if reason != "" {
		detail = "Reason: " + reason
	}
	return Template{
		Title:   "Application Requires Revision",
		Message: fmt.Sprintf("Your patent %s requires revision. %s", applicationRef(number), detail),
		Type:    models.NotificationWarning,
	}
}

func PatentFiledTemplate(number string) Template {
	return Template{
		Title:   "Patent Filed",
		Message: fmt.Sprintf("Your patent %s has been successfully filed with the patent office.", applicationRef(number)),
		Type:    models.NotificationSuccess,
	}
}

func AdminNewSubmissionTemplate(title, applicantName string) Template {
	return Template{
		Title:   "New Application Submitted",
		Message: fmt.Sprintf("%s submitted a new application: %s.", applicantName, title),
		Type:    models.NotificationInfo,
	}
}

func PAAssignmentTemplate(number, title string) Template {
	msg := "A new application"
	if number != "" {
		msg += " (" + number + ")"
	}
	msg += " is assigned for your review"
	if title != "" {
		msg += ": " + title
	}
	return Template{
		Title:   "New Application Assigned",
		Message: msg + ".",
		Type:    models.NotificationInfo,
	}
}

func ApplicationForwardedTemplate() Template {
	return Template{
		Title:   "Application Forwarded",
		Message: "Your application has been forwarded to the Patent Attorney for review.",
		Type:    models.NotificationInfo,
	}
}

func AccountApprovedTemplate() Template {
	return Template{
		Title:   "Account Approved",
		Message: "Your account has been approved! You can now access all IPR Cell features.",
		Type:    models.NotificationSuccess,
	}
}

func AccountRejectedTemplate() Template {
	return Template{
		Title:   "Account Access Revoked",
		Message: "Your account access has been revoked. Please contact the administrator for more information.",
		Type:    models.NotificationError,
	}
}

func ApplicationDeletedTemplate(number, applicantName, title string) Template {
	return Template{
		Title:   "Application Deleted by User",
		Message: fmt.Sprintf("%s deleted their %s: %q.", applicantName, applicationRef(number), title),
		Type:    models.NotificationWarning,
	}
}

func ApplicationPublishedTemplate(number string) Template {
	return Template{
		Title:   "Patent Published",
		Message: fmt.Sprintf("Congratulations! Your patent %s has been published.", applicationRef(number)),
		Type:    models.NotificationSuccess,
	}
}

func PARemarksAvailableTemplate(number string) Template {
	return Template{
		Title:   "Patent Attorney Remarks Available",
		Message: fmt.Sprintf("The Patent Attorney has added remarks to your %s. Please review them.", applicationRef(number)),
		Type:    models.NotificationInfo,
	}
}

// AttorneyDecisionTemplate selects the applicant template for an attorney review outcome.
func AttorneyDecisionTemplate(status models.ApplicationStatus, number, comments string) (Template, bool) {
	switch status {
	case models.StatusUnderReview:
		return ApplicationUnderReviewTemplate(number), true
	case models.StatusApproved:
		return ApplicationApprovedTemplate(number), true
	case models.StatusRejected:
		return ApplicationRejectedTemplate(number, comments), true
	case models.StatusPatentFiled:
		return PatentFiledTemplate(number), true
	}
	return Template{}, false
}
