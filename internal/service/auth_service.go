package service

import (
	"fmt"
	"strings"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/models"
	"document-memory-backend/internal/repository"
	"document-memory-backend/pkg/utils"

	"github.com/sirupsen/logrus"
)

// AuthService handles user registration, session issuance and the
// admin-facing user management operations
type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService(userRepo *repository.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=100"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenPair is the session response: a short-lived access token and a
// longer-lived refresh token
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Register creates a new user account
func (s *AuthService) Register(req RegisterRequest) (*models.UserResponse, error) {
	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: passwordHash,
		IsActive:     true,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User registered")

	resp := user.ToResponse()
	return &resp, nil
}

// Login verifies credentials and issues a session token pair. Unknown
// usernames, wrong passwords and deactivated accounts all fail the
// same way.
func (s *AuthService) Login(req LoginRequest) (*TokenPair, error) {
	user, err := s.userRepo.GetUserByUsername(req.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: incorrect username or password", auth.ErrUnauthenticated)
	}

	if !utils.ComparePassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: incorrect username or password", auth.ErrUnauthenticated)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: incorrect username or password", auth.ErrUnauthenticated)
	}

	return s.issueTokenPair(user)
}

// Refresh exchanges a valid refresh token for a fresh token pair. The
// user's current flags and scopes are re-read so deactivation and
// privilege changes take effect at refresh time.
func (s *AuthService) Refresh(req RefreshRequest) (*TokenPair, error) {
	claims, err := utils.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", auth.ErrUnauthenticated)
	}

	user, err := s.userRepo.GetUserByID(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", auth.ErrUnauthenticated)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: invalid refresh token", auth.ErrUnauthenticated)
	}

	return s.issueTokenPair(user)
}

// GetProfile returns the calling user's own record
func (s *AuthService) GetProfile(info *auth.Info) (*models.UserResponse, error) {
	if info.Kind() != auth.KindUser {
		return nil, auth.ErrUnauthenticated
	}

	user, err := s.userRepo.GetUserByID(info.User().UserID)
	if err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

// ChangePassword updates the calling user's password after verifying
// the current one
func (s *AuthService) ChangePassword(info *auth.Info, currentPassword, newPassword string) error {
	if info.Kind() != auth.KindUser {
		return auth.ErrUnauthenticated
	}
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", auth.ErrValidation)
	}

	user, err := s.userRepo.GetUserByID(info.User().UserID)
	if err != nil {
		return err
	}
	if !utils.ComparePassword(user.PasswordHash, currentPassword) {
		return fmt.Errorf("%w: incorrect password", auth.ErrUnauthenticated)
	}

	passwordHash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = passwordHash

	if err := s.userRepo.SaveUser(user); err != nil {
		return err
	}

	logrus.WithField("user_id", user.ID).Info("Password changed")
	return nil
}

// ListUsers returns a page of users. Admin only.
func (s *AuthService) ListUsers(info *auth.Info, query string, limit, offset int) ([]models.UserResponse, error) {
	if err := info.RequireAdmin(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var (
		users []models.User
		err   error
	)
	if query != "" {
		users, err = s.userRepo.SearchUsers(query, limit, offset)
	} else {
		users, err = s.userRepo.ListUsers(limit, offset)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, nil
}

// GetUser returns one user by id. Admin only.
func (s *AuthService) GetUser(info *auth.Info, userID string) (*models.UserResponse, error) {
	if err := info.RequireAdmin(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

// UpdateUserRequest carries the admin-editable user flags
type UpdateUserRequest struct {
	IsActive    *bool `json:"is_active"`
	IsSuperuser *bool `json:"is_superuser"`
}

// UpdateUser changes a user's active and superuser flags. Admin only.
// An admin cannot strip its own superuser flag.
func (s *AuthService) UpdateUser(info *auth.Info, userID string, req UpdateUserRequest) (*models.UserResponse, error) {
	if err := info.RequireAdmin(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	if actingID, ok := info.ActingUserID(); ok && actingID == userID {
		if req.IsSuperuser != nil && !*req.IsSuperuser {
			return nil, fmt.Errorf("%w: cannot remove your own superuser flag", auth.ErrValidation)
		}
		if req.IsActive != nil && !*req.IsActive {
			return nil, fmt.Errorf("%w: cannot deactivate your own account", auth.ErrValidation)
		}
	}

	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}

	if err := s.userRepo.SaveUser(user); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":      user.ID,
		"is_active":    user.IsActive,
		"is_superuser": user.IsSuperuser,
	}).Info("User updated")

	resp := user.ToResponse()
	return &resp, nil
}

// DeleteUser removes a user and everything the user owns. Admin only;
// self-deletion is rejected.
func (s *AuthService) DeleteUser(info *auth.Info, userID string) error {
	if err := info.RequireAdmin(); err != nil {
		return err
	}
	if actingID, ok := info.ActingUserID(); ok && actingID == userID {
		return fmt.Errorf("%w: cannot delete your own account", auth.ErrValidation)
	}

	if err := s.userRepo.DeleteUser(userID); err != nil {
		return err
	}

	logrus.WithField("user_id", userID).Info("User deleted")
	return nil
}

// issueTokenPair signs access and refresh tokens for a user. Session
// scopes follow the account flags: read and write for everyone, admin
// added for superusers.
func (s *AuthService) issueTokenPair(user *models.User) (*TokenPair, error) {
	scopes := sessionScopes(user)

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, user.Email, user.IsSuperuser, scopes)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    utils.GetAccessTokenExpiry(),
	}, nil
}

func sessionScopes(user *models.User) []string {
	scopes := []string{string(auth.ScopeRead), string(auth.ScopeWrite)}
	if user.IsSuperuser {
		scopes = append(scopes, string(auth.ScopeAdmin))
	}
	return scopes
}
