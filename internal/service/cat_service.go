package service

import (
	"fmt"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/config"
	"document-memory-backend/internal/models"
	"document-memory-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// CATService manages the Collection Access Token lifecycle. Out-of-scope
// token and collection ids are reported as NotFound, never Forbidden, so
// existence is not confirmed to unauthorized callers.
type CATService struct {
	catRepo        *repository.CATRepository
	collectionRepo *repository.CollectionRepository
	tokenCfg       config.TokenConfig
}

func NewCATService(
	catRepo *repository.CATRepository,
	collectionRepo *repository.CollectionRepository,
	tokenCfg config.TokenConfig,
) *CATService {
	return &CATService{
		catRepo:        catRepo,
		collectionRepo: collectionRepo,
		tokenCfg:       tokenCfg,
	}
}

// CreateCATRequest carries validated-at-the-boundary creation input
type CreateCATRequest struct {
	Label         string
	CollectionID  string
	Permission    string
	ExpiresInDays *int
}

// CreateCAT issues a new CAT on a collection the caller can access.
// The response carries the raw token; it is never retrievable again.
func (s *CATService) CreateCAT(info *auth.Info, req CreateCATRequest) (*models.CATResponse, error) {
	if !info.IsAuthenticated() {
		return nil, auth.ErrUnauthenticated
	}

	permission, err := auth.ParsePermission(req.Permission)
	if err != nil {
		return nil, err
	}

	expiresAt, err := computeExpiry(req.ExpiresInDays, s.tokenCfg.CATDefaultExpiryDays, s.tokenCfg.CATMaxExpiryDays)
	if err != nil {
		return nil, err
	}

	collection, err := s.collectionRepo.GetCollectionByID(req.CollectionID)
	if err != nil {
		return nil, err
	}
	if !info.CanAccessCollection(collection.ID, collection.UserID) {
		return nil, fmt.Errorf("%w: collection", auth.ErrNotFound)
	}

	var ownerID *string
	if userID, ok := info.ActingUserID(); ok {
		ownerID = &userID
	}

	cat, rawToken, err := s.catRepo.CreateCAT(req.Label, collection.ID, ownerID, permission, expiresAt)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"cat_id":        cat.ID,
		"collection_id": collection.ID,
	}).Info("CAT created")

	return &models.CATResponse{
		ID:             cat.ID,
		Label:          cat.Label,
		Token:          rawToken,
		CollectionID:   cat.CollectionID,
		CollectionName: collection.Name,
		Permission:     cat.Permission,
		CreatedAt:      cat.CreatedAt,
		ExpiresAt:      cat.ExpiresAt,
		IsActive:       cat.IsActive,
	}, nil
}

// ListCATs returns the caller's CATs, optionally filtered by collection
func (s *CATService) ListCATs(info *auth.Info, collectionID string) ([]models.CATResponse, error) {
	userID, ok := info.ActingUserID()
	if !ok {
		return nil, auth.ErrUnauthenticated
	}

	cats, err := s.catRepo.ListCATsByUser(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.CATResponse, 0, len(cats))
	for _, cat := range cats {
		if collectionID != "" && cat.CollectionID != collectionID {
			continue
		}
		responses = append(responses, catToResponse(&cat))
	}
	return responses, nil
}

// ListAllCATs returns every CAT, optionally filtered to one user.
// Admin only; userID nil means all users.
func (s *CATService) ListAllCATs(info *auth.Info, userID *string) ([]models.CATResponse, error) {
	if err := info.RequireAdmin(); err != nil {
		return nil, err
	}

	cats, err := s.catRepo.ListAllCATs(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.CATResponse, 0, len(cats))
	for _, cat := range cats {
		responses = append(responses, catToResponse(&cat))
	}
	return responses, nil
}

// RevokeCAT deactivates a CAT owned by the caller. Already-revoked
// tokens revoke successfully again.
func (s *CATService) RevokeCAT(info *auth.Info, catID string) error {
	if _, err := s.ownedCAT(info, catID); err != nil {
		return err
	}

	if err := s.catRepo.RevokeCAT(catID); err != nil {
		return err
	}

	logrus.WithField("cat_id", catID).Info("CAT revoked")
	return nil
}

// RotateCAT atomically replaces the secret of a CAT owned by the
// caller, returning the new raw token once
func (s *CATService) RotateCAT(info *auth.Info, catID string) (*models.CATResponse, error) {
	old, err := s.ownedCAT(info, catID)
	if err != nil {
		return nil, err
	}

	newCAT, rawToken, err := s.catRepo.RotateCAT(catID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"old_cat_id": catID,
		"new_cat_id": newCAT.ID,
	}).Info("CAT rotated")

	return &models.CATResponse{
		ID:             newCAT.ID,
		Label:          newCAT.Label,
		Token:          rawToken,
		CollectionID:   newCAT.CollectionID,
		CollectionName: old.Collection.Name,
		Permission:     newCAT.Permission,
		CreatedAt:      newCAT.CreatedAt,
		ExpiresAt:      newCAT.ExpiresAt,
		IsActive:       newCAT.IsActive,
	}, nil
}

// ownedCAT loads a CAT and checks the caller may manage it. Service
// tokens with no owner are manageable only by admins.
func (s *CATService) ownedCAT(info *auth.Info, catID string) (*models.CollectionAccessToken, error) {
	if !info.IsAuthenticated() {
		return nil, auth.ErrUnauthenticated
	}

	cat, err := s.catRepo.GetCATByID(catID)
	if err != nil {
		return nil, err
	}

	if info.IsAdmin() {
		return cat, nil
	}
	userID, ok := info.ActingUserID()
	if !ok || cat.UserID == nil || *cat.UserID != userID {
		return nil, fmt.Errorf("%w: access token", auth.ErrNotFound)
	}
	return cat, nil
}

func catToResponse(cat *models.CollectionAccessToken) models.CATResponse {
	return models.CATResponse{
		ID:             cat.ID,
		Label:          cat.Label,
		CollectionID:   cat.CollectionID,
		CollectionName: cat.Collection.Name,
		Permission:     cat.Permission,
		CreatedAt:      cat.CreatedAt,
		ExpiresAt:      cat.ExpiresAt,
		IsActive:       cat.IsActive,
		LastUsed:       cat.LastUsed,
	}
}
