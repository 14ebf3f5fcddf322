package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collection represents the collections table. Each collection maps 1:1
// to a vector-index namespace (QdrantCollection). The namespace is a
// separate opaque identifier so it never changes when the collection is
// renamed or re-keyed.
type Collection struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	Name             string    `gorm:"not null;size:100" json:"name"`
	QdrantCollection string    `gorm:"column:qdrant_collection;not null;size:100" json:"-"`
	UserID           string    `gorm:"not null;index;size:36" json:"user_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relationships
	User      User                    `gorm:"foreignKey:UserID" json:"-"`
	CATs      []CollectionAccessToken `gorm:"foreignKey:CollectionID" json:"-"`
	Documents []Document              `gorm:"foreignKey:CollectionID" json:"-"`
}

// TableName specifies the table name for Collection model
func (Collection) TableName() string {
	return "collections"
}

// BeforeCreate assigns a uuid primary key and a fresh vector namespace
func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.QdrantCollection == "" {
		c.QdrantCollection = uuid.New().String()
	}
	return nil
}

// CollectionResponse is the detailed client representation
type CollectionResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	DocumentCount int64     `json:"document_count"`
	CATCount      int64     `json:"cat_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// CollectionListItem is the compact list representation
type CollectionListItem struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
