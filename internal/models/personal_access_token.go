package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PersonalAccessToken (PAT) is a bearer credential scoped to one user,
// usable across that user's full collection set. Scopes are stored as a
// comma-joined string and parsed to a validated set on read. Only the
// SHA-256 digest of the raw token is stored.
type PersonalAccessToken struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	TokenHash string     `gorm:"column:token_hash;uniqueIndex;not null;size:64" json:"-"`
	Label     string     `gorm:"not null;size:100" json:"label"`
	UserID    string     `gorm:"not null;index;size:36" json:"user_id"`
	Scopes    string     `gorm:"not null;size:100" json:"scopes"`
	ExpiresAt *time.Time `json:"expires_at"`
	IsActive  bool       `gorm:"default:true" json:"is_active"`
	LastUsed  *time.Time `json:"last_used"`
	CreatedAt time.Time  `json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name for PersonalAccessToken model
func (PersonalAccessToken) TableName() string {
	return "personal_access_tokens"
}

// BeforeCreate assigns a uuid primary key
func (t *PersonalAccessToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// IsExpired reports whether the token is past its expiry
func (t *PersonalAccessToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}

// PATResponse is returned when a PAT is created or rotated.
// Token carries the raw value and is populated exactly once.
type PATResponse struct {
	ID        string     `json:"id"`
	Label     string     `json:"label"`
	Token     string     `json:"token,omitempty"`
	UserID    string     `json:"user_id"`
	Scopes    []string   `json:"scopes"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	IsActive  bool       `json:"is_active"`
	LastUsed  *time.Time `json:"last_used"`
}
