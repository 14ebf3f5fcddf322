package repository

import (
	"errors"
	"fmt"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser persists a new user
func (r *UserRepository) CreateUser(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: email or username already registered", auth.ErrConflict)
		}
		return err
	}
	return nil
}

// GetUserByID retrieves a user by primary key
func (r *UserRepository) GetUserByID(userID string) (*models.User, error) {
	var user models.User
	err := r.db.Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", auth.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", auth.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", auth.ErrNotFound)
		}
		return nil, err
	}
	return &user, nil
}

// SaveUser persists changes to an existing user
func (r *UserRepository) SaveUser(user *models.User) error {
	if err := r.db.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: email or username already registered", auth.ErrConflict)
		}
		return err
	}
	return nil
}

// DeleteUser removes a user and all dependent rows: PATs, collections,
// their CATs and their documents, in one transaction
func (r *UserRepository) DeleteUser(userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user", auth.ErrNotFound)
			}
			return err
		}

		var collectionIDs []string
		if err := tx.Model(&models.Collection{}).
			Where("user_id = ?", userID).
			Pluck("id", &collectionIDs).Error; err != nil {
			return err
		}

		if len(collectionIDs) > 0 {
			if err := tx.Where("collection_id IN ?", collectionIDs).
				Delete(&models.Document{}).Error; err != nil {
				return err
			}
			if err := tx.Where("collection_id IN ?", collectionIDs).
				Delete(&models.CollectionAccessToken{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).
				Delete(&models.Collection{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", userID).
			Delete(&models.PersonalAccessToken{}).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}

// ListUsers retrieves a page of users
func (r *UserRepository) ListUsers(limit, offset int) ([]models.User, error) {
	var users []models.User
	err := r.db.Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&users).Error
	return users, err
}

// SearchUsers finds users whose username or email matches the query
func (r *UserRepository) SearchUsers(query string, limit, offset int) ([]models.User, error) {
	var users []models.User
	pattern := "%" + query + "%"
	err := r.db.Where("username LIKE ? OR email LIKE ?", pattern, pattern).
		Limit(limit).Offset(offset).
		Find(&users).Error
	return users, err
}
