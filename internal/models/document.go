package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document represents the documents table. A document belongs to exactly
// one collection; ownership is always per-collection, never per-token.
type Document struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	CollectionID string         `gorm:"not null;index;size:36" json:"collection_id"`
	Title        string         `gorm:"not null;size:500" json:"title"`
	Content      string         `gorm:"type:longtext;not null" json:"content"`
	ContentHash  string         `gorm:"not null;index;size:64" json:"-"`
	DocumentType string         `gorm:"size:20;default:markdown" json:"document_type"`
	Metadata     map[string]any `gorm:"serializer:json" json:"metadata"`
	// QdrantPointIDs holds the comma-joined vector point ids written for
	// this document's chunks
	QdrantPointIDs string    `gorm:"column:qdrant_point_ids;size:4096" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	Collection Collection `gorm:"foreignKey:CollectionID" json:"-"`
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}

// BeforeCreate assigns a uuid primary key
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	return nil
}

// DocumentResponse is the client representation of a document
type DocumentResponse struct {
	ID           string         `json:"id"`
	CollectionID string         `json:"collection_id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	DocumentType string         `json:"document_type"`
	Metadata     map[string]any `json:"metadata"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ToResponse converts a Document to its client representation
func (d *Document) ToResponse() DocumentResponse {
	metadata := d.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return DocumentResponse{
		ID:           d.ID,
		CollectionID: d.CollectionID,
		Title:        d.Title,
		Content:      d.Content,
		DocumentType: d.DocumentType,
		Metadata:     metadata,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
