package handler

import (
	"net/http"
	"strconv"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/service"
	"document-memory-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves superuser-only user and token management
type AdminHandler struct {
	authService *service.AuthService
	catService  *service.CATService
	patService  *service.PATService
}

func NewAdminHandler(
	authService *service.AuthService,
	catService *service.CATService,
	patService *service.PATService,
) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		catService:  catService,
		patService:  patService,
	}
}

// ListUsers handles GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, err := h.authService.ListUsers(info, c.Query("q"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, users)
}

// GetUser handles GET /api/admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	user, err := h.authService.GetUser(info, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// UpdateUser handles PUT /api/admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	info := auth.FromContext(c.Request.Context())
	user, err := h.authService.UpdateUser(info, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, user)
}

// DeleteUser handles DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	if err := h.authService.DeleteUser(info, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "User deleted")
}

// ListCATs handles GET /api/admin/tokens/collection
func (h *AdminHandler) ListCATs(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	cats, err := h.catService.ListAllCATs(info, userFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, cats)
}

// ListPATs handles GET /api/admin/tokens/personal
func (h *AdminHandler) ListPATs(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	pats, err := h.patService.ListAllPATs(info, userFilter(c))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, pats)
}

func userFilter(c *gin.Context) *string {
	if userID := c.Query("user_id"); userID != "" {
		return &userID
	}
	return nil
}
