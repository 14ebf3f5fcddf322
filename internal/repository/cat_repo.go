package repository

import (
	"errors"
	"fmt"
	"time"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/models"
	"document-memory-backend/pkg/utils"

	"gorm.io/gorm"
)

// createRetries bounds the token regeneration attempts after a hash
// uniqueness collision
const createRetries = 3

type CATRepository struct {
	db *gorm.DB
}

func NewCATRepo(db *gorm.DB) *CATRepository {
	return &CATRepository{db: db}
}

// CreateCAT generates a raw token, persists only its hash and returns
// the raw value. This is the only time the raw token leaves the store.
func (r *CATRepository) CreateCAT(label, collectionID string, userID *string, permission auth.Permission, expiresAt *time.Time) (*models.CollectionAccessToken, string, error) {
	for attempt := 0; attempt < createRetries; attempt++ {
		raw, err := utils.GenerateCATToken()
		if err != nil {
			return nil, "", err
		}

		cat := &models.CollectionAccessToken{
			KeyHash:      utils.HashToken(raw),
			Label:        label,
			CollectionID: collectionID,
			UserID:       userID,
			Permission:   string(permission),
			ExpiresAt:    expiresAt,
			IsActive:     true,
		}

		err = r.db.Create(cat).Error
		if err == nil {
			return cat, raw, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", err
		}
		// Hash collision: regenerate and retry
	}
	return nil, "", fmt.Errorf("%w: failed to create access token", auth.ErrConflict)
}

// GetCATByID retrieves a CAT with its collection by primary key
func (r *CATRepository) GetCATByID(catID string) (*models.CollectionAccessToken, error) {
	var cat models.CollectionAccessToken
	err := r.db.Preload("Collection").Where("id = ?", catID).First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: access token", auth.ErrNotFound)
		}
		return nil, err
	}
	return &cat, nil
}

// ValidateCAT resolves a raw token to its authorization context. The
// lookup goes through the unique key_hash index. Inactive and expired
// tokens resolve to nil. A successful validation touches last_used as a
// best-effort side effect.
func (r *CATRepository) ValidateCAT(rawToken string) (*auth.CATInfo, error) {
	var cat models.CollectionAccessToken
	err := r.db.Preload("Collection").
		Where("key_hash = ? AND is_active = ?", utils.HashToken(rawToken), true).
		First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if cat.IsExpired(time.Now().UTC()) {
		return nil, nil
	}

	now := time.Now().UTC()
	_ = r.db.Model(&models.CollectionAccessToken{}).
		Where("id = ?", cat.ID).
		Update("last_used", now).Error

	return &auth.CATInfo{
		TokenID:          cat.ID,
		UserID:           cat.UserID,
		CollectionID:     cat.CollectionID,
		CollectionName:   cat.Collection.Name,
		QdrantCollection: cat.Collection.QdrantCollection,
		Permission:       auth.Permission(cat.Permission),
	}, nil
}

// ListCATsByUser retrieves all CATs owned by a user
func (r *CATRepository) ListCATsByUser(userID string) ([]models.CollectionAccessToken, error) {
	var cats []models.CollectionAccessToken
	err := r.db.Preload("Collection").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&cats).Error
	return cats, err
}

// ListAllCATs retrieves every CAT, optionally filtered to one user.
// Privilege gating is the caller's responsibility.
func (r *CATRepository) ListAllCATs(userID *string) ([]models.CollectionAccessToken, error) {
	var cats []models.CollectionAccessToken
	query := r.db.Preload("Collection").Order("created_at DESC")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	err := query.Find(&cats).Error
	return cats, err
}

// RevokeCAT deactivates a CAT. Revoking an already-revoked token still
// succeeds; only a missing id fails.
func (r *CATRepository) RevokeCAT(catID string) error {
	return revokeToken(r.db, &models.CollectionAccessToken{}, catID)
}

// RotateCAT atomically deactivates a CAT and issues a replacement with
// the same label, collection, owner and expiry under a new id. The
// deactivation is a compare-and-swap on is_active, so a concurrent
// rotate on the same id loses with NotFound and can never produce two
// simultaneously valid tokens.
func (r *CATRepository) RotateCAT(catID string) (*models.CollectionAccessToken, string, error) {
	var newCAT *models.CollectionAccessToken
	var rawToken string

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var old models.CollectionAccessToken
		if err := tx.Where("id = ?", catID).First(&old).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: access token", auth.ErrNotFound)
			}
			return err
		}

		result := tx.Model(&models.CollectionAccessToken{}).
			Where("id = ? AND is_active = ?", catID, true).
			Update("is_active", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Already revoked or rotated by a concurrent caller
			return fmt.Errorf("%w: access token", auth.ErrNotFound)
		}

		raw, err := utils.GenerateCATToken()
		if err != nil {
			return err
		}

		replacement := &models.CollectionAccessToken{
			KeyHash:      utils.HashToken(raw),
			Label:        old.Label,
			CollectionID: old.CollectionID,
			UserID:       old.UserID,
			Permission:   old.Permission,
			ExpiresAt:    old.ExpiresAt,
			IsActive:     true,
		}
		if err := tx.Create(replacement).Error; err != nil {
			return err
		}

		newCAT = replacement
		rawToken = raw
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return newCAT, rawToken, nil
}

// DeactivateExpiredCATs flips is_active off for every CAT whose expiry
// has passed, returning the number of rows swept
func (r *CATRepository) DeactivateExpiredCATs(now time.Time) (int64, error) {
	result := r.db.Model(&models.CollectionAccessToken{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// revokeToken deactivates a credential row of the given model type.
// Shared by CAT and PAT stores, which have identical lifecycle shapes.
func revokeToken(db *gorm.DB, model interface{}, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(model).Where("id = ?", id).Update("is_active", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Distinguish a missing row from an unchanged one: some
			// drivers report zero affected rows for a no-op update
			var count int64
			if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return fmt.Errorf("%w: access token", auth.ErrNotFound)
			}
		}
		return nil
	})
}
