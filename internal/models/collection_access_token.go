package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CollectionAccessToken (CAT) is a bearer credential scoped to exactly
// one collection. Only the SHA-256 digest of the raw token is stored;
// the raw value is shown to the caller once, at creation or rotation.
type CollectionAccessToken struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	KeyHash      string     `gorm:"column:key_hash;uniqueIndex;not null;size:64" json:"-"`
	Label        string     `gorm:"not null;size:100" json:"label"`
	CollectionID string     `gorm:"not null;index;size:36" json:"collection_id"`
	Permission   string     `gorm:"not null;size:20;default:read_write" json:"permission"`
	UserID       *string    `gorm:"index;size:36" json:"user_id"`
	ExpiresAt    *time.Time `json:"expires_at"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastUsed     *time.Time `json:"last_used"`
	CreatedAt    time.Time  `json:"created_at"`

	// Relationships
	Collection Collection `gorm:"foreignKey:CollectionID" json:"-"`
	User       *User      `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for CollectionAccessToken model
func (CollectionAccessToken) TableName() string {
	return "collection_access_tokens"
}

// BeforeCreate assigns a uuid primary key
func (t *CollectionAccessToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// IsExpired reports whether the token is past its expiry. A nil
// expires_at never expires; a non-nil one is invalid from that instant
// inclusive.
func (t *CollectionAccessToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// CATResponse is returned when a CAT is created or rotated.
// Token carries the raw value and is populated exactly once.
type CATResponse struct {
	ID             string     `json:"id"`
	Label          string     `json:"label"`
	Token          string     `json:"token,omitempty"`
	CollectionID   string     `json:"collection_id"`
	CollectionName string     `json:"collection_name"`
	Permission     string     `json:"permission"`
	CreatedAt      time.Time  `json:"created_at"`
	ExpiresAt      *time.Time `json:"expires_at"`
	IsActive       bool       `json:"is_active"`
	LastUsed       *time.Time `json:"last_used"`
}
