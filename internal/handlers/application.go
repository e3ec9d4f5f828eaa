// internal/handlers/application.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipr-backend/internal/i18n"
	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/services"
	"github.com/javajoker/ipr-backend/internal/utils"
)

// ApplicationHandler serves the applicant's side of the workflow.
type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

type createApplicationRequest struct {
	services.ApplicationInput
	Draft bool `json:"draft"`
}

func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		applicationService: applicationService,
	}
}

// POST /v1/applications
func (h *ApplicationHandler) Create(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req createApplicationRequest
	if !bindJSON(c, &req) {
		return
	}

	var (
		app *models.Application
		err error
		key = i18n.KeyApplicationSubmitted
	)
	if req.Draft {
		app, err = h.applicationService.CreateDraft(c.Request.Context(), principal(c), req.ApplicationInput)
		key = i18n.KeyApplicationCreated
	} else {
		app, err = h.applicationService.CreateSubmitted(c.Request.Context(), principal(c), req.ApplicationInput)
	}
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, key),
		"application": app.ApplicantView(),
	})
}

// GET /v1/applications
func (h *ApplicationHandler) List(c *gin.Context) {
	query, params, ok := applicationQuery(c)
	if !ok {
		return
	}

	apps, total, err := h.applicationService.ListOwn(c.Request.Context(), principal(c), query)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(apps, total, params))
}

// GET /v1/applications/:id
func (h *ApplicationHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "application")
	if !ok {
		return
	}

	app, err := h.applicationService.GetOwn(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err, "application")
		return
	}
	utils.SuccessResponse(c, app)
}

// GET /v1/applications/:id/reviews (also mounted under /admin)
func (h *ApplicationHandler) Reviews(c *gin.Context) {
	id, ok := pathID(c, "application")
	if !ok {
		return
	}

	records, err := h.applicationService.Reviews(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err, "application")
		return
	}
	utils.SuccessResponse(c, records)
}

// POST /v1/applications/:id/submit
func (h *ApplicationHandler) Submit(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, "application")
	if !ok {
		return
	}

	// An empty body submits the draft as saved.
	var in *services.ApplicationInput
	if c.Request.ContentLength > 0 {
		in = &services.ApplicationInput{}
		if !bindJSON(c, in) {
			return
		}
	}

	app, err := h.applicationService.SubmitDraft(c.Request.Context(), principal(c), id, in)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationSubmitted),
		"application": app.ApplicantView(),
	})
}

// DELETE /v1/applications/:id
func (h *ApplicationHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, "application")
	if !ok {
		return
	}

	app, err := h.applicationService.Delete(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationDeleted),
		"application": app,
	})
}

// applicationQuery reads page, limit, search and status.
func applicationQuery(c *gin.Context) (services.ApplicationQuery, utils.PaginationParams, bool) {
	params := utils.GetPaginationParams(c)
	q := services.ApplicationQuery{
		Search: params.Search,
		Offset: params.Offset(),
		Limit:  params.Limit,
	}

	if raw := c.Query("status"); raw != "" && raw != "all" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			lang := utils.GetLangFromContext(c)
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "status"), err.Error())
			return q, params, false
		}
		q.Status = &status
	}
	return q, params, true
}
