// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthAccountRevoked     = "auth.account_revoked"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthRegisterSuccess    = "auth.register_success"
	KeyAccessDenied           = "auth.access_denied"

	// Users
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserNotFound       = "user.not_found"
	KeyUserApproved       = "user.approved"
	KeyUserRejected       = "user.rejected"
	KeyUserRoleChanged    = "user.role_changed"

	// Applications
	KeyApplicationCreated           = "application.created"
	KeyApplicationSubmitted         = "application.submitted"
	KeyApplicationDeleted           = "application.deleted"
	KeyApplicationNotFound          = "application.not_found"
	KeyApplicationForwarded         = "application.forwarded"
	KeyApplicationReviewed          = "application.reviewed"
	KeyApplicationPublished         = "application.published"
	KeyApplicationRemarksApproved   = "application.remarks_approved"
	KeyApplicationInvalidTransition = "application.invalid_transition"
	KeyApplicationNumberUnavailable = "application.number_unavailable"

	// Notifications
	KeyNotificationNotFound = "notification.not_found"
	KeyNotificationRead     = "notification.read"

	// Validation
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationConflict = "validation.conflict"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"
	KeyFileTooMany       = "file.too_many"
)
