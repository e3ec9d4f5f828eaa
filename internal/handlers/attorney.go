// internal/handlers/attorney.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipr-backend/internal/i18n"
	"github.com/javajoker/ipr-backend/internal/services"
	"github.com/javajoker/ipr-backend/internal/utils"
)

// AttorneyHandler serves the patent attorney queue.
type AttorneyHandler struct {
	applicationService *services.ApplicationService
}

func NewAttorneyHandler(applicationService *services.ApplicationService) *AttorneyHandler {
	return &AttorneyHandler{
		applicationService: applicationService,
	}
}

// GET /v1/attorney/applications
func (h *AttorneyHandler) Queue(c *gin.Context) {
	query, params, ok := applicationQuery(c)
	if !ok {
		return
	}

	apps, total, err := h.applicationService.ListAttorneyQueue(c.Request.Context(), principal(c), query)
	if err != nil {
		respondError(c, err, "application")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(apps, total, params))
}

// GET /v1/attorney/applications/:id
func (h *AttorneyHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "application")
	if !ok {
		return
	}

	app, err := h.applicationService.GetForAttorney(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err, "application")
		return
	}
	utils.SuccessResponse(c, app)
}

// POST /v1/attorney/applications/:id/review
func (h *AttorneyHandler) Review(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, "application")
	if !ok {
		return
	}

	var req services.AttorneyReviewInput
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationService.AttorneyReview(c.Request.Context(), principal(c), id, req)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationReviewed),
		"application": app,
	})
}
