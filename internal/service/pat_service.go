package service

import (
	"fmt"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/config"
	"document-memory-backend/internal/models"
	"document-memory-backend/internal/repository"

	"github.com/sirupsen/logrus"
)

// PATService manages the Personal Access Token lifecycle
type PATService struct {
	patRepo  *repository.PATRepository
	userRepo *repository.UserRepository
	tokenCfg config.TokenConfig
}

func NewPATService(
	patRepo *repository.PATRepository,
	userRepo *repository.UserRepository,
	tokenCfg config.TokenConfig,
) *PATService {
	return &PATService{
		patRepo:  patRepo,
		userRepo: userRepo,
		tokenCfg: tokenCfg,
	}
}

// CreatePATRequest carries creation input. Scopes left empty inherit
// the issuing caller's scopes at this moment; they stay frozen on the
// token afterwards.
type CreatePATRequest struct {
	Label         string
	Scopes        []string
	ExpiresInDays *int
}

// CreatePAT issues a new PAT for the calling user. The response carries
// the raw token; it is never retrievable again.
func (s *PATService) CreatePAT(info *auth.Info, req CreatePATRequest) (*models.PATResponse, error) {
	userID, ok := info.ActingUserID()
	if !ok {
		return nil, auth.ErrUnauthenticated
	}

	scopes, err := s.resolveScopes(info, req.Scopes)
	if err != nil {
		return nil, err
	}

	expiresAt, err := computeExpiry(req.ExpiresInDays, s.tokenCfg.PATDefaultExpiryDays, s.tokenCfg.PATMaxExpiryDays)
	if err != nil {
		return nil, err
	}

	// The owning user must still exist and be active
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, auth.ErrUnauthenticated
	}

	pat, rawToken, err := s.patRepo.CreatePAT(req.Label, userID, scopes, expiresAt)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"pat_id":  pat.ID,
		"user_id": userID,
	}).Info("PAT created")

	return &models.PATResponse{
		ID:        pat.ID,
		Label:     pat.Label,
		Token:     rawToken,
		UserID:    pat.UserID,
		Scopes:    auth.ScopeStrings(scopes),
		CreatedAt: pat.CreatedAt,
		ExpiresAt: pat.ExpiresAt,
		IsActive:  pat.IsActive,
	}, nil
}

// ListPATs returns the caller's PATs
func (s *PATService) ListPATs(info *auth.Info) ([]models.PATResponse, error) {
	userID, ok := info.ActingUserID()
	if !ok {
		return nil, auth.ErrUnauthenticated
	}

	pats, err := s.patRepo.ListPATsByUser(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.PATResponse, 0, len(pats))
	for _, pat := range pats {
		resp, err := patToResponse(&pat)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// ListAllPATs returns every PAT, optionally filtered to one user.
// Admin only; userID nil means all users.
func (s *PATService) ListAllPATs(info *auth.Info, userID *string) ([]models.PATResponse, error) {
	if err := info.RequireAdmin(); err != nil {
		return nil, err
	}

	pats, err := s.patRepo.ListAllPATs(userID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.PATResponse, 0, len(pats))
	for _, pat := range pats {
		resp, err := patToResponse(&pat)
		if err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// RevokePAT deactivates a PAT owned by the caller
func (s *PATService) RevokePAT(info *auth.Info, patID string) error {
	if err := s.checkOwnership(info, patID); err != nil {
		return err
	}

	if err := s.patRepo.RevokePAT(patID); err != nil {
		return err
	}

	logrus.WithField("pat_id", patID).Info("PAT revoked")
	return nil
}

// RotatePAT atomically replaces the secret of a PAT owned by the
// caller, returning the new raw token once
func (s *PATService) RotatePAT(info *auth.Info, patID string) (*models.PATResponse, error) {
	if err := s.checkOwnership(info, patID); err != nil {
		return nil, err
	}

	newPAT, rawToken, err := s.patRepo.RotatePAT(patID)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"old_pat_id": patID,
		"new_pat_id": newPAT.ID,
	}).Info("PAT rotated")

	resp, err := patToResponse(newPAT)
	if err != nil {
		return nil, err
	}
	resp.Token = rawToken
	return &resp, nil
}

// resolveScopes freezes the token's scopes at issuance. Explicit scopes
// are validated strictly and may not exceed the issuer's own; empty
// input inherits the issuer's scopes.
func (s *PATService) resolveScopes(info *auth.Info, requested []string) ([]auth.Scope, error) {
	if len(requested) == 0 {
		switch info.Kind() {
		case auth.KindUser:
			return info.User().Scopes, nil
		case auth.KindPAT:
			return info.PAT().Scopes, nil
		default:
			return []auth.Scope{auth.ScopeRead}, nil
		}
	}

	scopes, err := auth.ParseScopeList(requested)
	if err != nil {
		return nil, err
	}
	for _, scope := range scopes {
		if !info.HasScope(scope) {
			return nil, fmt.Errorf("%w: cannot grant scope %q beyond your own", auth.ErrForbidden, scope)
		}
	}
	return scopes, nil
}

func (s *PATService) checkOwnership(info *auth.Info, patID string) error {
	if !info.IsAuthenticated() {
		return auth.ErrUnauthenticated
	}

	pat, err := s.patRepo.GetPATByID(patID)
	if err != nil {
		return err
	}
	if info.IsAdmin() {
		return nil
	}
	userID, ok := info.ActingUserID()
	if !ok || pat.UserID != userID {
		return fmt.Errorf("%w: access token", auth.ErrNotFound)
	}
	return nil
}

func patToResponse(pat *models.PersonalAccessToken) (models.PATResponse, error) {
	scopes, err := auth.ParseScopes(pat.Scopes)
	if err != nil {
		return models.PATResponse{}, fmt.Errorf("stored scopes for token %s are invalid: %w", pat.ID, err)
	}
	return models.PATResponse{
		ID:        pat.ID,
		Label:     pat.Label,
		UserID:    pat.UserID,
		Scopes:    auth.ScopeStrings(scopes),
		CreatedAt: pat.CreatedAt,
		ExpiresAt: pat.ExpiresAt,
		IsActive:  pat.IsActive,
		LastUsed:  pat.LastUsed,
	}, nil
}
