package service

import (
	"context"
	"fmt"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/models"
	"document-memory-backend/internal/repository"
	"document-memory-backend/internal/vectorstore"

	"github.com/sirupsen/logrus"
)

// CollectionService manages collections and keeps their vector
// namespaces in sync
type CollectionService struct {
	collectionRepo *repository.CollectionRepository
	vectorStore    *vectorstore.Store
}

func NewCollectionService(
	collectionRepo *repository.CollectionRepository,
	vectorStore *vectorstore.Store,
) *CollectionService {
	return &CollectionService{
		collectionRepo: collectionRepo,
		vectorStore:    vectorStore,
	}
}

// CreateCollection creates a collection for the calling user. A fresh
// vector namespace is assigned; the qdrant side is created lazily on
// first upsert.
func (s *CollectionService) CreateCollection(info *auth.Info, name string) (*models.CollectionResponse, error) {
	userID, ok := info.ActingUserID()
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is required", auth.ErrValidation)
	}

	collection := &models.Collection{
		Name:   name,
		UserID: userID,
	}
	if err := s.collectionRepo.CreateCollection(collection); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"collection_id": collection.ID,
		"user_id":       userID,
	}).Info("Collection created")

	return &models.CollectionResponse{
		ID:        collection.ID,
		Name:      collection.Name,
		CreatedAt: collection.CreatedAt,
	}, nil
}

// ListCollections returns the collections reachable by the caller. A
// CAT sees exactly its bound collection.
func (s *CollectionService) ListCollections(info *auth.Info) ([]models.CollectionListItem, error) {
	switch info.Kind() {
	case auth.KindCAT:
		cat := info.CAT()
		if cat.IsAdmin {
			return nil, fmt.Errorf("%w: service context has no collection list", auth.ErrValidation)
		}
		collection, err := s.collectionRepo.GetCollectionByID(cat.CollectionID)
		if err != nil {
			return nil, err
		}
		return []models.CollectionListItem{{
			ID:        collection.ID,
			Name:      collection.Name,
			CreatedAt: collection.CreatedAt,
		}}, nil
	case auth.KindUser, auth.KindPAT:
		userID, _ := info.ActingUserID()
		collections, err := s.collectionRepo.ListCollectionsByUser(userID)
		if err != nil {
			return nil, err
		}
		items := make([]models.CollectionListItem, len(collections))
		for i, c := range collections {
			items[i] = models.CollectionListItem{
				ID:        c.ID,
				Name:      c.Name,
				CreatedAt: c.CreatedAt,
			}
		}
		return items, nil
	default:
		return nil, auth.ErrUnauthenticated
	}
}

// GetCollection returns one collection with its document and token
// counts. Out-of-scope ids resolve to NotFound.
func (s *CollectionService) GetCollection(info *auth.Info, collectionID string) (*models.CollectionResponse, error) {
	collection, err := s.accessibleCollection(info, collectionID)
	if err != nil {
		return nil, err
	}

	docCount, err := s.collectionRepo.CountDocuments(collection.ID)
	if err != nil {
		return nil, err
	}
	catCount, err := s.collectionRepo.CountActiveCATs(collection.ID)
	if err != nil {
		return nil, err
	}

	return &models.CollectionResponse{
		ID:            collection.ID,
		Name:          collection.Name,
		DocumentCount: docCount,
		CATCount:      catCount,
		CreatedAt:     collection.CreatedAt,
	}, nil
}

// RenameCollection changes a collection's display name. The vector
// namespace stays stable across renames, so nothing is re-indexed.
func (s *CollectionService) RenameCollection(info *auth.Info, collectionID, name string) (*models.CollectionResponse, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: collection name is required", auth.ErrValidation)
	}
	if _, err := s.ownedCollection(info, collectionID); err != nil {
		return nil, err
	}

	collection, err := s.collectionRepo.RenameCollection(collectionID, name)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"collection_id": collection.ID,
		"name":          name,
	}).Info("Collection renamed")

	return &models.CollectionResponse{
		ID:        collection.ID,
		Name:      collection.Name,
		CreatedAt: collection.CreatedAt,
	}, nil
}

// DeleteCollection removes a collection, its documents and its vector
// namespace. Deletion is refused while active CATs still reference the
// collection, so tokens cannot be orphaned silently.
func (s *CollectionService) DeleteCollection(ctx context.Context, info *auth.Info, collectionID string) error {
	collection, err := s.ownedCollection(info, collectionID)
	if err != nil {
		return err
	}

	if err := s.collectionRepo.DeleteCollection(collectionID); err != nil {
		return err
	}

	if err := s.vectorStore.DropNamespace(ctx, collection.QdrantCollection); err != nil {
		// Relational rows are already gone; the orphaned namespace is
		// logged rather than failing the request
		logrus.WithError(err).WithField("namespace", collection.QdrantCollection).
			Warn("Failed to drop vector namespace")
	}

	logrus.WithField("collection_id", collectionID).Info("Collection deleted")
	return nil
}

// accessibleCollection loads a collection any credential kind may read
func (s *CollectionService) accessibleCollection(info *auth.Info, collectionID string) (*models.Collection, error) {
	if !info.IsAuthenticated() {
		return nil, auth.ErrUnauthenticated
	}
	collection, err := s.collectionRepo.GetCollectionByID(collectionID)
	if err != nil {
		return nil, err
	}
	if !info.CanAccessCollection(collection.ID, collection.UserID) {
		return nil, fmt.Errorf("%w: collection", auth.ErrNotFound)
	}
	return collection, nil
}

// ownedCollection loads a collection for a management operation. CATs
// can read their bound collection but never rename or delete it.
func (s *CollectionService) ownedCollection(info *auth.Info, collectionID string) (*models.Collection, error) {
	if info.Kind() == auth.KindCAT && !info.CAT().IsAdmin {
		return nil, auth.ErrForbidden
	}
	return s.accessibleCollection(info, collectionID)
}
