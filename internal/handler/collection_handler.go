package handler

import (
	"net/http"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/service"
	"document-memory-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CollectionHandler serves collection management
type CollectionHandler struct {
	collectionService *service.CollectionService
}

func NewCollectionHandler(collectionService *service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

type collectionNameRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// Create handles POST /api/collections
func (h *CollectionHandler) Create(c *gin.Context) {
	var req collectionNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	info := auth.FromContext(c.Request.Context())
	collection, err := h.collectionService.CreateCollection(info, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, collection)
}

// List handles GET /api/collections
func (h *CollectionHandler) List(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	collections, err := h.collectionService.ListCollections(info)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, collections)
}

// Get handles GET /api/collections/:id
func (h *CollectionHandler) Get(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	collection, err := h.collectionService.GetCollection(info, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, collection)
}

// Rename handles PUT /api/collections/:id
func (h *CollectionHandler) Rename(c *gin.Context) {
	var req collectionNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	info := auth.FromContext(c.Request.Context())
	collection, err := h.collectionService.RenameCollection(info, c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, collection)
}

// Delete handles DELETE /api/collections/:id
func (h *CollectionHandler) Delete(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	if err := h.collectionService.DeleteCollection(c.Request.Context(), info, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "Collection deleted")
}
