package handler

import (
	"net/http"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/service"
	"document-memory-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CATHandler serves the collection access token lifecycle
type CATHandler struct {
	catService *service.CATService
}

func NewCATHandler(catService *service.CATService) *CATHandler {
	return &CATHandler{catService: catService}
}

type createCATRequest struct {
	Label         string `json:"label" binding:"required,max=100"`
	CollectionID  string `json:"collection_id" binding:"required"`
	Permission    string `json:"permission"`
	ExpiresInDays *int   `json:"expires_in_days"`
}

// Create handles POST /api/tokens/collection
func (h *CATHandler) Create(c *gin.Context) {
	var req createCATRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if req.Permission == "" {
		req.Permission = string(auth.PermissionReadWrite)
	}

	info := auth.FromContext(c.Request.Context())
	cat, err := h.catService.CreateCAT(info, service.CreateCATRequest{
		Label:         req.Label,
		CollectionID:  req.CollectionID,
		Permission:    req.Permission,
		ExpiresInDays: req.ExpiresInDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, cat)
}

// List handles GET /api/tokens/collection
func (h *CATHandler) List(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	cats, err := h.catService.ListCATs(info, c.Query("collection_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, cats)
}

// Revoke handles DELETE /api/tokens/collection/:id
func (h *CATHandler) Revoke(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	if err := h.catService.RevokeCAT(info, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "Token revoked")
}

// Rotate handles POST /api/tokens/collection/:id/rotate
func (h *CATHandler) Rotate(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	cat, err := h.catService.RotateCAT(info, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, cat)
}
