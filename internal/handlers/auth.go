// internal/handlers/auth.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ipr-backend/internal/i18n"
	"github.com/javajoker/ipr-backend/internal/services"
	"github.com/javajoker/ipr-backend/internal/utils"
)

// AuthHandler serves sign-up, sign-in and the caller's own account.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAuthUserExists))
			return
		}
		respondError(c, err, "user")
		return
	}

	utils.CreatedResponse(c, tokenBody(authResponse, i18n.T(lang, i18n.KeyAuthRegisterSuccess)))
}

// POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.SuccessResponse(c, tokenBody(authResponse, i18n.T(lang, i18n.KeyAuthLoginSuccess)))
}

// POST /v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}

	authResponse, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.SuccessResponse(c, tokenBody(authResponse, ""))
}

// GET /v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err, "user")
		return
	}
	utils.SuccessResponse(c, user)
}

// PUT /v1/users/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateUserProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), principal(c), &req)
	if err != nil {
		respondError(c, err, "user")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(utils.GetLangFromContext(c), i18n.KeyUserProfileUpdated),
		"user":    user,
	})
}

func tokenBody(r *services.AuthResponse, message string) gin.H {
	body := gin.H{
		"user":          r.User,
		"token":         r.AccessToken,
		"refresh_token": r.RefreshToken,
		"token_type":    r.TokenType,
		"expires_in":    r.ExpiresIn,
	}
	if message != "" {
		body["message"] = message
	}
	return body
}
