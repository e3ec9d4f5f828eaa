// internal/handlers/errors.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ipr-backend/internal/i18n"
	"github.com/javajoker/ipr-backend/internal/middleware"
	"github.com/javajoker/ipr-backend/internal/services"
	"github.com/javajoker/ipr-backend/internal/utils"
)

// respondError maps service error kinds onto the response envelope. resource names the
// not-found message, e.g. "application".
func respondError(c *gin.Context, err error, resource string) {
	lang := utils.GetLangFromContext(c)

	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.ValidationErrorResponse(c, verr.Fields)
	case errors.Is(err, services.ErrValidation):
		utils.BadRequestResponse(c, err.Error(), nil)
	case errors.Is(err, services.ErrAccountRevoked):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthAccountRevoked))
	case errors.Is(err, services.ErrUnauthorized):
		utils.UnauthorizedResponse(c, i18n.T(lang, i18n.KeyAuthInvalidCredentials))
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, "")
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, resource)
	case errors.Is(err, services.ErrInvalidTransition):
		utils.InvalidTransitionResponse(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, "")
	case errors.Is(err, services.ErrAllocationFailed):
		utils.ServiceUnavailableResponse(c, "")
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("unhandled service error")
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
	}
}

func principal(c *gin.Context) services.Principal {
	p, _ := middleware.PrincipalFrom(c)
	return p
}

// pathID parses the :id route parameter, answering 404 when it is not a uuid.
func pathID(c *gin.Context, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.NotFoundResponse(c, resource)
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body; a malformed body is a 400.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.BadRequestResponse(c, "", err.Error())
		return false
	}
	return true
}
