// internal/handlers/notification.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipr-backend/internal/i18n"
	"github.com/javajoker/ipr-backend/internal/services"
	"github.com/javajoker/ipr-backend/internal/utils"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// GET /v1/notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))

	items, total, err := h.notificationService.List(c.Request.Context(), principal(c), unreadOnly, params.Offset(), params.Limit)
	if err != nil {
		respondError(c, err, "notification")
		return
	}
	utils.PaginatedResponse(c, utils.CreatePaginationResult(items, total, params))
}

// GET /v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.notificationService.UnreadCount(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err, "notification")
		return
	}
	utils.SuccessResponse(c, gin.H{"unread": n})
}

// PUT /v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	id, ok := pathID(c, "notification")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err, "notification")
		return
	}
	utils.SuccessResponse(c, gin.H{"message": i18n.T(lang, i18n.KeyNotificationRead)})
}

// PUT /v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	n, err := h.notificationService.MarkAllRead(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err, "notification")
		return
	}
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyNotificationRead),
		"updated": n,
	})
}
