package handler

import (
	"net/http"
	"strconv"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/service"
	"document-memory-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DocumentHandler serves document storage and semantic search
type DocumentHandler struct {
	documentService *service.DocumentService
}

func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

type storeDocumentRequest struct {
	CollectionID string         `json:"collection_id"`
	Title        string         `json:"title" binding:"required,max=500"`
	Content      string         `json:"content" binding:"required"`
	DocumentType string         `json:"document_type"`
	Metadata     map[string]any `json:"metadata"`
}

// Store handles POST /api/documents
func (h *DocumentHandler) Store(c *gin.Context) {
	var req storeDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	info := auth.FromContext(c.Request.Context())
	result, err := h.documentService.StoreDocument(c.Request.Context(), info, service.StoreDocumentRequest{
		CollectionID: req.CollectionID,
		Title:        req.Title,
		Content:      req.Content,
		DocumentType: req.DocumentType,
		Metadata:     req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if result.Created {
		utils.CreatedResponse(c, result)
		return
	}
	utils.SuccessResponse(c, result)
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// Search handles POST /api/documents/search
func (h *DocumentHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	info := auth.FromContext(c.Request.Context())
	results, err := h.documentService.SearchDocuments(c.Request.Context(), info, req.Query, req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, results)
}

// Get handles GET /api/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	doc, err := h.documentService.GetDocument(info, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, doc)
}

// List handles GET /api/documents
func (h *DocumentHandler) List(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	docs, err := h.documentService.ListDocuments(info, c.Query("collection_id"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, docs)
}

type updateDocumentRequest struct {
	Title        string         `json:"title" binding:"required,max=500"`
	Content      string         `json:"content" binding:"required"`
	DocumentType string         `json:"document_type"`
	Metadata     map[string]any `json:"metadata"`
}

// Update handles PUT /api/documents/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	var req updateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	info := auth.FromContext(c.Request.Context())
	doc, err := h.documentService.UpdateDocument(c.Request.Context(), info, c.Param("id"), service.UpdateDocumentRequest{
		Title:        req.Title,
		Content:      req.Content,
		DocumentType: req.DocumentType,
		Metadata:     req.Metadata,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, doc)
}

// Delete handles DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	info := auth.FromContext(c.Request.Context())

	if err := h.documentService.DeleteDocument(c.Request.Context(), info, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "Document deleted")
}
