package handler

import (
	"net/http"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/service"
	"document-memory-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, login and session refresh
type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	user, err := h.authService.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	tokens, err := h.authService.Login(req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, tokens)
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	tokens, err := h.authService.Refresh(req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, tokens)
}

// GetProfile handles GET /api/auth/me
func (h *AuthHandler) GetProfile(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	user, err := h.authService.GetProfile(info)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// ChangePassword handles POST /api/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	info := auth.FromContext(c.Request.Context())
	if err := h.authService.ChangePassword(info, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "Password changed")
}
