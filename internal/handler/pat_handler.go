package handler

import (
	"net/http"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/service"
	"document-memory-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PATHandler serves the personal access token lifecycle
type PATHandler struct {
	patService *service.PATService
}

func NewPATHandler(patService *service.PATService) *PATHandler {
	return &PATHandler{patService: patService}
}

type createPATRequest struct {
	Label         string   `json:"label" binding:"required,max=100"`
	Scopes        []string `json:"scopes"`
	ExpiresInDays *int     `json:"expires_in_days"`
}

// Create handles POST /api/tokens/personal
func (h *PATHandler) Create(c *gin.Context) {
	var req createPATRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	info := auth.FromContext(c.Request.Context())
	pat, err := h.patService.CreatePAT(info, service.CreatePATRequest{
		Label:         req.Label,
		Scopes:        req.Scopes,
		ExpiresInDays: req.ExpiresInDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, pat)
}

// List handles GET /api/tokens/personal
func (h *PATHandler) List(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	pats, err := h.patService.ListPATs(info)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, pats)
}

// Revoke handles DELETE /api/tokens/personal/:id
func (h *PATHandler) Revoke(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	if err := h.patService.RevokePAT(info, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "Token revoked")
}

// Rotate handles POST /api/tokens/personal/:id/rotate
func (h *PATHandler) Rotate(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	pat, err := h.patService.RotatePAT(info, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, pat)
}
