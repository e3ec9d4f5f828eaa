// internal/handlers/upload.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipr-backend/internal/i18n"
	"github.com/javajoker/ipr-backend/internal/services"
	"github.com/javajoker/ipr-backend/internal/utils"
)

// multipart bodies above this are spooled to disk by net/http
const uploadMemory = 32 << 20

type UploadHandler struct {
	storageService *services.StorageService
}

func NewUploadHandler(storageService *services.StorageService) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
	}
}

// POST /v1/uploads (multipart field "files")
func (h *UploadHandler) UploadAttachments(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	if err := c.Request.ParseMultipartForm(uploadMemory); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}
	form := c.Request.MultipartForm
	if form == nil || len(form.File["files"]) == 0 {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), "no files provided")
		return
	}

	attachments, err := h.storageService.UploadAttachments(c.Request.Context(), principal(c), form.File["files"])
	if err != nil {
		respondError(c, err, "file")
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyFileUploadSuccess),
		"attachments": attachments,
	})
}
