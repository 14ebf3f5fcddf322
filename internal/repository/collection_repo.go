package repository

import (
	"errors"
	"fmt"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/models"

	"gorm.io/gorm"
)

type CollectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepo(db *gorm.DB) *CollectionRepository {
	return &CollectionRepository{db: db}
}

// CreateCollection persists a new collection. The vector namespace is
// assigned by the model's create hook.
func (r *CollectionRepository) CreateCollection(collection *models.Collection) error {
	return r.db.Create(collection).Error
}

// GetCollectionByID retrieves a collection by primary key
func (r *CollectionRepository) GetCollectionByID(collectionID string) (*models.Collection, error) {
	var collection models.Collection
	err := r.db.Where("id = ?", collectionID).First(&collection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: collection", auth.ErrNotFound)
		}
		return nil, err
	}
	return &collection, nil
}

// ListCollectionsByUser retrieves all collections owned by a user
func (r *CollectionRepository) ListCollectionsByUser(userID string) ([]models.Collection, error) {
	var collections []models.Collection
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&collections).Error
	return collections, err
}

// ListCollectionIDsByUser retrieves the id set of a user's collections,
// used to resolve a PAT's reachable collections at authentication time
func (r *CollectionRepository) ListCollectionIDsByUser(userID string) ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Collection{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	return ids, err
}

// RenameCollection updates the collection name. The vector namespace is
// intentionally left unchanged.
func (r *CollectionRepository) RenameCollection(collectionID, name string) (*models.Collection, error) {
	collection, err := r.GetCollectionByID(collectionID)
	if err != nil {
		return nil, err
	}
	collection.Name = name
	if err := r.db.Save(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

// DeleteCollection removes a collection with its documents and inactive
// CATs. Deletion is refused while any active CAT still references the
// collection.
func (r *CollectionRepository) DeleteCollection(collectionID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var collection models.Collection
		if err := tx.Where("id = ?", collectionID).First(&collection).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: collection", auth.ErrNotFound)
			}
			return err
		}

		var activeCATs int64
		if err := tx.Model(&models.CollectionAccessToken{}).
			Where("collection_id = ? AND is_active = ?", collectionID, true).
			Count(&activeCATs).Error; err != nil {
			return err
		}
		if activeCATs > 0 {
			return fmt.Errorf("%w: collection has %d active access tokens", auth.ErrConflict, activeCATs)
		}

		if err := tx.Where("collection_id = ?", collectionID).
			Delete(&models.Document{}).Error; err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", collectionID).
			Delete(&models.CollectionAccessToken{}).Error; err != nil {
			return err
		}

		return tx.Delete(&collection).Error
	})
}

// CountDocuments returns the number of documents in a collection
func (r *CollectionRepository) CountDocuments(collectionID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Document{}).
		Where("collection_id = ?", collectionID).
		Count(&count).Error
	return count, err
}

// CountActiveCATs returns the number of active CATs bound to a collection
func (r *CollectionRepository) CountActiveCATs(collectionID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.CollectionAccessToken{}).
		Where("collection_id = ? AND is_active = ?", collectionID, true).
		Count(&count).Error
	return count, err
}
