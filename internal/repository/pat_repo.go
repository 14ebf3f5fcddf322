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

type PATRepository struct {
	db *gorm.DB
}

func NewPATRepo(db *gorm.DB) *PATRepository {
	return &PATRepository{db: db}
}

// CreatePAT generates a raw token, persists only its hash and returns
// the raw value once. Scopes are stored in canonical comma-joined form.
func (r *PATRepository) CreatePAT(label, userID string, scopes []auth.Scope, expiresAt *time.Time) (*models.PersonalAccessToken, string, error) {
	for attempt := 0; attempt < createRetries; attempt++ {
		raw, err := utils.GeneratePATToken()
		if err != nil {
			return nil, "", err
		}

		pat := &models.PersonalAccessToken{
			TokenHash: utils.HashToken(raw),
			Label:     label,
			UserID:    userID,
			Scopes:    auth.ScopesToString(scopes),
			ExpiresAt: expiresAt,
			IsActive:  true,
		}

		err = r.db.Create(pat).Error
		if err == nil {
			return pat, raw, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", err
		}
		// Hash collision: regenerate and retry
	}
	return nil, "", fmt.Errorf("%w: failed to create access token", auth.ErrConflict)
}

// GetPATByID retrieves a PAT by primary key
func (r *PATRepository) GetPATByID(patID string) (*models.PersonalAccessToken, error) {
	var pat models.PersonalAccessToken
	err := r.db.Where("id = ?", patID).First(&pat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: access token", auth.ErrNotFound)
		}
		return nil, err
	}
	return &pat, nil
}

// ValidatePAT resolves a raw token to its authorization context. The
// token must be active and unexpired and its owning user still active.
// A successful validation touches last_used as a best-effort side
// effect.
func (r *PATRepository) ValidatePAT(rawToken string) (*auth.PATInfo, error) {
	var pat models.PersonalAccessToken
	err := r.db.Preload("User").
		Where("token_hash = ? AND is_active = ?", utils.HashToken(rawToken), true).
		First(&pat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if pat.IsExpired(time.Now().UTC()) {
		return nil, nil
	}
	if !pat.User.IsActive {
		return nil, nil
	}

	scopes, err := auth.ParseScopes(pat.Scopes)
	if err != nil {
		return nil, fmt.Errorf("stored scopes for token %s are invalid: %w", pat.ID, err)
	}

	now := time.Now().UTC()
	_ = r.db.Model(&models.PersonalAccessToken{}).
		Where("id = ?", pat.ID).
		Update("last_used", now).Error

	return &auth.PATInfo{
		TokenID:     pat.ID,
		UserID:      pat.UserID,
		Username:    pat.User.Username,
		Email:       pat.User.Email,
		IsSuperuser: pat.User.IsSuperuser,
		Scopes:      scopes,
	}, nil
}

// ListPATsByUser retrieves all PATs owned by a user
func (r *PATRepository) ListPATsByUser(userID string) ([]models.PersonalAccessToken, error) {
	var pats []models.PersonalAccessToken
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&pats).Error
	return pats, err
}

// ListAllPATs retrieves every PAT, optionally filtered to one user.
// Privilege gating is the caller's responsibility.
func (r *PATRepository) ListAllPATs(userID *string) ([]models.PersonalAccessToken, error) {
	var pats []models.PersonalAccessToken
	query := r.db.Order("created_at DESC")
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	err := query.Find(&pats).Error
	return pats, err
}

// RevokePAT deactivates a PAT. Idempotent for existing rows.
func (r *PATRepository) RevokePAT(patID string) error {
	return revokeToken(r.db, &models.PersonalAccessToken{}, patID)
}

// DeactivateExpiredPATs flips is_active off for every PAT whose expiry
// has passed, returning the number of rows swept
func (r *PATRepository) DeactivateExpiredPATs(now time.Time) (int64, error) {
	result := r.db.Model(&models.PersonalAccessToken{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

// RotatePAT atomically deactivates a PAT and issues a replacement with
// the same label, owner, scopes and expiry under a new id, with the
// same compare-and-swap guarantees as CAT rotation.
func (r *PATRepository) RotatePAT(patID string) (*models.PersonalAccessToken, string, error) {
	var newPAT *models.PersonalAccessToken
	var rawToken string

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var old models.PersonalAccessToken
		if err := tx.Where("id = ?", patID).First(&old).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: access token", auth.ErrNotFound)
			}
			return err
		}

		result := tx.Model(&models.PersonalAccessToken{}).
			Where("id = ? AND is_active = ?", patID, true).
			Update("is_active", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: access token", auth.ErrNotFound)
		}

		raw, err := utils.GeneratePATToken()
		if err != nil {
			return err
		}

		replacement := &models.PersonalAccessToken{
			TokenHash: utils.HashToken(raw),
			Label:     old.Label,
			UserID:    old.UserID,
			Scopes:    old.Scopes,
			ExpiresAt: old.ExpiresAt,
			IsActive:  true,
		}
		if err := tx.Create(replacement).Error; err != nil {
			return err
		}

		newPAT = replacement
		rawToken = raw
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return newPAT, rawToken, nil
}
