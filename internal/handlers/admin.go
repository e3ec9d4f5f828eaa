// internal/handlers/admin.go
package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/javajoker/ipr-backend/internal/i18n"
	"github.com/javajoker/ipr-backend/internal/models"
	"github.com/javajoker/ipr-backend/internal/services"
	"github.com/javajoker/ipr-backend/internal/utils"
)

type AdminHandler struct {
	adminService       *services.AdminService
	applicationService *services.ApplicationService
	userService        *services.UserService
}

func NewAdminHandler(adminService *services.AdminService, applicationService *services.ApplicationService, userService *services.UserService) *AdminHandler {
	return &AdminHandler{
		adminService:       adminService,
		applicationService: applicationService,
		userService:        userService,
	}
}

// GET /v1/admin/dashboard/stats
func (h *AdminHandler) GetDashboardStats(c *gin.Context) {
	stats, err := h.adminService.GetDashboardStats(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err, "application")
		return
	}
	utils.SuccessResponse(c, stats)
}

// GET /v1/admin/applications
func (h *AdminHandler) ListApplications(c *gin.Context) {
	query, params, ok := applicationQuery(c)
	if !ok {
		return
	}

	apps, total, err := h.applicationService.ListAll(c.Request.Context(), principal(c), query)
	if err != nil {
		respondError(c, err, "application")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(apps, total, params))
}

// GET /v1/admin/applications/:id
func (h *AdminHandler) GetApplication(c *gin.Context) {
	id, ok := pathID(c, "application")
	if !ok {
		return
	}

	app, err := h.applicationService.GetForAdmin(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err, "application")
		return
	}
	utils.SuccessResponse(c, app)
}

// POST /v1/admin/applications/:id/forward
func (h *AdminHandler) ForwardApplication(c *gin.Context) {
	h.transition(c, i18n.KeyApplicationForwarded, h.applicationService.Forward)
}

// POST /v1/admin/applications/:id/approve-remarks
func (h *AdminHandler) ApproveRemarks(c *gin.Context) {
	h.transition(c, i18n.KeyApplicationRemarksApproved, h.applicationService.ApprovePARemarks)
}

// POST /v1/admin/applications/:id/publish
func (h *AdminHandler) PublishApplication(c *gin.Context) {
	h.transition(c, i18n.KeyApplicationPublished, h.applicationService.MarkPublished)
}

// POST /v1/admin/applications/:id/review
func (h *AdminHandler) ReviewApplication(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, "application")
	if !ok {
		return
	}

	var req services.AdminReviewInput
	if !bindJSON(c, &req) {
		return
	}

	app, err := h.applicationService.AdminReview(c.Request.Context(), principal(c), id, req)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyApplicationReviewed),
		"application": app,
	})
}

// transitionFunc is an admin action that only needs the application id.
type transitionFunc func(ctx context.Context, p services.Principal, id uuid.UUID) (*models.Application, error)

func (h *AdminHandler) transition(c *gin.Context, key string, action transitionFunc) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, "application")
	if !ok {
		return
	}

	app, err := action(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err, "application")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, key),
		"application": app,
	})
}

// GET /v1/admin/users
func (h *AdminHandler) GetUsers(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	params := utils.GetPaginationParams(c)
	q := services.UserQuery{
		Search: params.Search,
		Offset: params.Offset(),
		Limit:  params.Limit,
	}

	if raw := c.Query("role"); raw != "" {
		role := models.UserRole(raw)
		if !role.Valid() {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "role"), nil)
			return
		}
		q.Role = &role
	}
	if raw := c.Query("approved"); raw != "" {
		approved, err := strconv.ParseBool(raw)
		if err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "approved"), err.Error())
			return
		}
		q.Approved = &approved
	}

	users, total, err := h.userService.List(c.Request.Context(), principal(c), q)
	if err != nil {
		respondError(c, err, "user")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(users, total, params))
}

// PUT /v1/admin/users/:id/approve
func (h *AdminHandler) ApproveUser(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, "user")
	if !ok {
		return
	}

	user, err := h.userService.Approve(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err, "user")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyUserApproved), "user": user})
}

// PUT /v1/admin/users/:id/reject
func (h *AdminHandler) RejectUser(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, "user")
	if !ok {
		return
	}

	user, err := h.userService.Reject(c.Request.Context(), principal(c), id)
	if err != nil {
		respondError(c, err, "user")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyUserRejected), "user": user})
}

// PUT /v1/admin/users/:id/role
func (h *AdminHandler) ChangeUserRole(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, "user")
	if !ok {
		return
	}

	var req services.ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.ChangeRole(c.Request.Context(), principal(c), id, &req)
	if err != nil {
		respondError(c, err, "user")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyUserRoleChanged), "user": user})
}
