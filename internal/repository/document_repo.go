package repository

import (
	"errors"
	"fmt"
	"strings"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/models"
	"document-memory-backend/pkg/utils"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepo(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// CreateDocument persists a new document. When a document with the same
// content hash already exists in the collection, the existing row is
// returned instead of creating a duplicate.
func (r *DocumentRepository) CreateDocument(doc *models.Document) (*models.Document, bool, error) {
	doc.ContentHash = utils.ComputeContentHash(doc.Content)

	var existing models.Document
	err := r.db.Where("content_hash = ? AND collection_id = ?", doc.ContentHash, doc.CollectionID).
		First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := r.db.Create(doc).Error; err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// GetDocumentByID retrieves a document, optionally scoped to one
// collection. An id outside the scope resolves to NotFound.
func (r *DocumentRepository) GetDocumentByID(docID string, collectionID string) (*models.Document, error) {
	var doc models.Document
	query := r.db.Where("id = ?", docID)
	if collectionID != "" {
		query = query.Where("collection_id = ?", collectionID)
	}
	err := query.First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: document", auth.ErrNotFound)
		}
		return nil, err
	}
	return &doc, nil
}

// ListDocuments retrieves a page of documents in a collection
func (r *DocumentRepository) ListDocuments(collectionID string, limit, offset int) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.Where("collection_id = ?", collectionID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&docs).Error
	return docs, err
}

// ListDocumentsByUser retrieves a page of documents across every
// collection owned by a user
func (r *DocumentRepository) ListDocumentsByUser(userID string, limit, offset int) ([]models.Document, error) {
	var docs []models.Document
	err := r.db.Joins("JOIN collections ON collections.id = documents.collection_id").
		Where("collections.user_id = ?", userID).
		Order("documents.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&docs).Error
	return docs, err
}

// UpdateDocument replaces a document's content fields, recomputing the
// content hash
func (r *DocumentRepository) UpdateDocument(docID, collectionID, title, content, documentType string, metadata map[string]any) (*models.Document, error) {
	doc, err := r.GetDocumentByID(docID, collectionID)
	if err != nil {
		return nil, err
	}

	doc.Title = title
	doc.Content = content
	doc.ContentHash = utils.ComputeContentHash(content)
	doc.DocumentType = documentType
	doc.Metadata = metadata

	if err := r.db.Save(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteDocument removes a document, optionally scoped to one collection
func (r *DocumentRepository) DeleteDocument(docID string, collectionID string) (*models.Document, error) {
	doc, err := r.GetDocumentByID(docID, collectionID)
	if err != nil {
		return nil, err
	}
	if err := r.db.Delete(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdatePointIDs records the vector point ids written for a document's
// chunks
func (r *DocumentRepository) UpdatePointIDs(docID string, pointIDs []string) error {
	return r.db.Model(&models.Document{}).
		Where("id = ?", docID).
		Update("qdrant_point_ids", strings.Join(pointIDs, ",")).Error
}

// PointIDs parses the stored comma-joined vector point ids
func PointIDs(doc *models.Document) []string {
	if doc.QdrantPointIDs == "" {
		return nil
	}
	return strings.Split(doc.QdrantPointIDs, ",")
}
