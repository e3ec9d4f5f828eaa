// internal/utils/response.go
package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipr-backend/internal/i18n"
)

// Context keys shared by the middleware and the handlers.
const (
	LangKey   = "lang"
	UserIDKey = "user_id"
)

// Error codes carried in APIError.Code. Clients switch on these, not on messages.
const (
	CodeBadRequest        = "BAD_REQUEST"
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeNotFound          = "NOT_FOUND"
	CodeConflict          = "CONFLICT"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeRateLimited       = "RATE_LIMITED"
	CodeNumberUnavailable = "NUMBER_UNAVAILABLE"
	CodeInternal          = "INTERNAL_ERROR"
)

// APIResponse is the envelope of every JSON answer. List endpoints put the page in Data and
// the pagination block in Meta.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func SuccessResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func CreatedResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// ErrorResponse writes the error envelope and aborts the chain, so middleware can answer
// without a separate c.Abort.
func ErrorResponse(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status, APIResponse{
		Error: &APIError{Code: code, Message: message, Details: details},
	})
}

// localized returns message, or the catalogue text for key when message is empty.
func localized(c *gin.Context, message, key string, args ...interface{}) string {
	if message != "" {
		return message
	}
	return i18n.T(GetLangFromContext(c), key, args...)
}

func BadRequestResponse(c *gin.Context, message string, details interface{}) {
	ErrorResponse(c, http.StatusBadRequest, CodeBadRequest, localized(c, message, i18n.KeyValidationInvalid, "request"), details)
}

func ValidationErrorResponse(c *gin.Context, fields []ValidationError) {
	ErrorResponse(c, http.StatusBadRequest, CodeValidation, localized(c, "", i18n.KeyValidationInvalid, "input"), fields)
}

func UnauthorizedResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, CodeUnauthorized, localized(c, message, i18n.KeyAuthRequired), nil)
}

func ForbiddenResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, CodeForbidden, localized(c, message, i18n.KeyAccessDenied), nil)
}

// NotFoundResponse names the missing resource, e.g. "application" or "notification".
func NotFoundResponse(c *gin.Context, resource string) {
	ErrorResponse(c, http.StatusNotFound, CodeNotFound, localized(c, "", resource+".not_found"), nil)
}

func ConflictResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusConflict, CodeConflict, localized(c, message, i18n.KeyValidationConflict), nil)
}

// InvalidTransitionResponse reports a workflow move the current status does not allow.
func InvalidTransitionResponse(c *gin.Context, details string) {
	ErrorResponse(c, http.StatusConflict, CodeInvalidTransition, localized(c, "", i18n.KeyApplicationInvalidTransition), details)
}

// ServiceUnavailableResponse is used when no application number could be allocated.
func ServiceUnavailableResponse(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, CodeNumberUnavailable, localized(c, message, i18n.KeyApplicationNumberUnavailable), nil)
}

func InternalErrorResponse(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	ErrorResponse(c, http.StatusInternalServerError, CodeInternal, message, nil)
}

func PaginatedResponse(c *gin.Context, result PaginationResult) {
	result.writeHeaders(c)
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    result.Data,
		Meta:    gin.H{"pagination": result.Pagination},
	})
}

// GetLangFromContext returns the locale chosen by I18nMiddleware.
func GetLangFromContext(c *gin.Context) string {
	if lang := c.GetString(LangKey); lang != "" {
		return lang
	}
	return i18n.DefaultLanguage
}

// GetUserIDFromContext returns the authenticated subject, if any.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	id := c.GetString(UserIDKey)
	return id, id != ""
}
