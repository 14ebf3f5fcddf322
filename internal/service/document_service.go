package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"document-memory-backend/internal/auth"
	"document-memory-backend/internal/chunking"
	"document-memory-backend/internal/config"
	"document-memory-backend/internal/embedding"
	"document-memory-backend/internal/models"
	"document-memory-backend/internal/repository"
	"document-memory-backend/internal/vectorstore"

	"github.com/sirupsen/logrus"
)

// DocumentService stores, indexes and searches documents. Writes run
// the chunk, embed, upsert pipeline; reads merge vector hits across
// every namespace the caller may reach.
type DocumentService struct {
	documentRepo   *repository.DocumentRepository
	collectionRepo *repository.CollectionRepository
	chunker        *chunking.Chunker
	embedder       embedding.Embedder
	vectorStore    *vectorstore.Store
	searchCfg      config.SearchConfig
}

func NewDocumentService(
	documentRepo *repository.DocumentRepository,
	collectionRepo *repository.CollectionRepository,
	chunker *chunking.Chunker,
	embedder embedding.Embedder,
	vectorStore *vectorstore.Store,
	searchCfg config.SearchConfig,
) *DocumentService {
	return &DocumentService{
		documentRepo:   documentRepo,
		collectionRepo: collectionRepo,
		chunker:        chunker,
		embedder:       embedder,
		vectorStore:    vectorStore,
		searchCfg:      searchCfg,
	}
}

// StoreDocumentRequest carries document creation input. CollectionID is
// optional for CAT callers, whose target is always the bound collection.
type StoreDocumentRequest struct {
	CollectionID string
	Title        string
	Content      string
	DocumentType string
	Metadata     map[string]any
}

// StoreDocumentResult reports the stored document and whether it was
// newly created or deduplicated against existing content
type StoreDocumentResult struct {
	Document models.DocumentResponse `json:"document"`
	Created  bool                    `json:"created"`
	Chunks   int                     `json:"chunks"`
}

// StoreDocument persists a document and indexes its chunks. Identical
// content in the same collection is deduplicated and not re-embedded.
func (s *DocumentService) StoreDocument(ctx context.Context, info *auth.Info, req StoreDocumentRequest) (*StoreDocumentResult, error) {
	if err := info.RequireDocumentMutation(); err != nil {
		return nil, err
	}
	if req.Title == "" || req.Content == "" {
		return nil, fmt.Errorf("%w: title and content are required", auth.ErrValidation)
	}

	collection, err := s.targetCollection(info, req.CollectionID)
	if err != nil {
		return nil, err
	}

	docType := req.DocumentType
	if docType == "" {
		docType = "markdown"
	}

	doc, created, err := s.documentRepo.CreateDocument(&models.Document{
		CollectionID: collection.ID,
		Title:        req.Title,
		Content:      req.Content,
		DocumentType: docType,
		Metadata:     req.Metadata,
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return &StoreDocumentResult{
			Document: doc.ToResponse(),
			Created:  false,
			Chunks:   len(repository.PointIDs(doc)),
		}, nil
	}

	chunkCount, err := s.indexDocument(ctx, collection.QdrantCollection, doc)
	if err != nil {
		// The relational row stays; indexing can be retried by updating
		// the document
		logrus.WithError(err).WithField("document_id", doc.ID).
			Error("Failed to index document")
		return nil, fmt.Errorf("failed to index document: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"document_id":   doc.ID,
		"collection_id": collection.ID,
		"chunks":        chunkCount,
	}).Info("Document stored")

	return &StoreDocumentResult{
		Document: doc.ToResponse(),
		Created:  true,
		Chunks:   chunkCount,
	}, nil
}

// SearchResult is one scored document chunk, annotated with the
// collection it came from
type SearchResult struct {
	DocumentID     string  `json:"document_id"`
	CollectionID   string  `json:"collection_id"`
	CollectionName string  `json:"collection_name"`
	Title          string  `json:"title"`
	ChunkIndex     int     `json:"chunk_index"`
	Content        string  `json:"content"`
	Score          float32 `json:"score"`
}

// SearchDocuments runs a semantic search across every collection the
// caller can reach, merging hits by score. Results are cut off at the
// configured token budget so responses stay consumable by an LLM.
func (s *DocumentService) SearchDocuments(ctx context.Context, info *auth.Info, query string, limit int) ([]SearchResult, error) {
	if !info.IsAuthenticated() {
		return nil, auth.ErrUnauthenticated
	}
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", auth.ErrValidation)
	}
	if limit <= 0 || limit > s.searchCfg.MaxResults {
		limit = s.searchCfg.MaxResults
	}

	collections, err := s.reachableCollections(info)
	if err != nil {
		return nil, err
	}
	if len(collections) == 0 {
		return []SearchResult{}, nil
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	byNamespace := make(map[string]*models.Collection, len(collections))
	var hits []vectorstore.SearchHit
	for i := range collections {
		c := &collections[i]
		byNamespace[c.QdrantCollection] = c
		namespaceHits, err := s.vectorStore.Search(ctx, c.QdrantCollection, vector, limit)
		if err != nil {
			return nil, err
		}
		hits = append(hits, namespaceHits...)
	}

	sort.Slice(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}

	results := make([]SearchResult, 0, len(hits))
	tokenBudget := s.searchCfg.MaxTokens
	for _, hit := range hits {
		cost := s.chunker.CountTokens(hit.Content)
		if len(results) > 0 && tokenBudget-cost < 0 {
			break
		}
		tokenBudget -= cost

		collection := byNamespace[hit.Namespace]
		results = append(results, SearchResult{
			DocumentID:     hit.DocumentID,
			CollectionID:   collection.ID,
			CollectionName: collection.Name,
			Title:          hit.Title,
			ChunkIndex:     hit.ChunkIndex,
			Content:        hit.Content,
			Score:          hit.Score,
		})
	}
	return results, nil
}

// GetDocument returns one document reachable by the caller
func (s *DocumentService) GetDocument(info *auth.Info, documentID string) (*models.DocumentResponse, error) {
	doc, _, err := s.reachableDocument(info, documentID)
	if err != nil {
		return nil, err
	}
	resp := doc.ToResponse()
	return &resp, nil
}

// ListDocuments returns a page of documents. A collection id narrows
// the listing; without one the caller's full reachable set is paged.
func (s *DocumentService) ListDocuments(info *auth.Info, collectionID string, limit, offset int) ([]models.DocumentResponse, error) {
	if !info.IsAuthenticated() {
		return nil, auth.ErrUnauthenticated
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var (
		docs []models.Document
		err  error
	)
	switch {
	case collectionID != "":
		if _, err := s.targetableRead(info, collectionID); err != nil {
			return nil, err
		}
		docs, err = s.documentRepo.ListDocuments(collectionID, limit, offset)
	case info.Kind() == auth.KindCAT:
		cat := info.CAT()
		if cat.IsAdmin {
			return nil, fmt.Errorf("%w: collection_id is required", auth.ErrValidation)
		}
		docs, err = s.documentRepo.ListDocuments(cat.CollectionID, limit, offset)
	default:
		userID, ok := info.ActingUserID()
		if !ok {
			return nil, fmt.Errorf("%w: collection_id is required", auth.ErrValidation)
		}
		docs, err = s.documentRepo.ListDocumentsByUser(userID, limit, offset)
	}
	if err != nil {
		return nil, err
	}

	responses := make([]models.DocumentResponse, len(docs))
	for i, doc := range docs {
		responses[i] = doc.ToResponse()
	}
	return responses, nil
}

// UpdateDocumentRequest carries document update input
type UpdateDocumentRequest struct {
	Title        string
	Content      string
	DocumentType string
	Metadata     map[string]any
}

// UpdateDocument replaces a document's content and re-indexes it. The
// old vector points are removed before the new chunks are written.
func (s *DocumentService) UpdateDocument(ctx context.Context, info *auth.Info, documentID string, req UpdateDocumentRequest) (*models.DocumentResponse, error) {
	if err := info.RequireDocumentMutation(); err != nil {
		return nil, err
	}
	if req.Title == "" || req.Content == "" {
		return nil, fmt.Errorf("%w: title and content are required", auth.ErrValidation)
	}

	doc, collection, err := s.reachableDocument(info, documentID)
	if err != nil {
		return nil, err
	}

	oldPointIDs := repository.PointIDs(doc)

	docType := req.DocumentType
	if docType == "" {
		docType = doc.DocumentType
	}
	doc, err = s.documentRepo.UpdateDocument(doc.ID, doc.CollectionID, req.Title, req.Content, docType, req.Metadata)
	if err != nil {
		return nil, err
	}

	if err := s.vectorStore.DeletePoints(ctx, collection.QdrantCollection, oldPointIDs); err != nil {
		logrus.WithError(err).WithField("document_id", doc.ID).
			Warn("Failed to delete stale vector points")
	}
	if _, err := s.indexDocument(ctx, collection.QdrantCollection, doc); err != nil {
		return nil, fmt.Errorf("failed to re-index document: %w", err)
	}

	logrus.WithField("document_id", doc.ID).Info("Document updated")

	resp := doc.ToResponse()
	return &resp, nil
}

// DeleteDocument removes a document and its vector points
func (s *DocumentService) DeleteDocument(ctx context.Context, info *auth.Info, documentID string) error {
	if err := info.RequireDocumentMutation(); err != nil {
		return err
	}

	doc, collection, err := s.reachableDocument(info, documentID)
	if err != nil {
		return err
	}

	doc, err = s.documentRepo.DeleteDocument(doc.ID, doc.CollectionID)
	if err != nil {
		return err
	}

	if err := s.vectorStore.DeletePoints(ctx, collection.QdrantCollection, repository.PointIDs(doc)); err != nil {
		logrus.WithError(err).WithField("document_id", doc.ID).
			Warn("Failed to delete vector points")
	}

	logrus.WithField("document_id", doc.ID).Info("Document deleted")
	return nil
}

// indexDocument chunks, embeds and upserts a document's content,
// recording the written point ids on the row
func (s *DocumentService) indexDocument(ctx context.Context, namespace string, doc *models.Document) (int, error) {
	chunks := s.chunker.Split(doc.Content, doc.Title)
	if len(chunks) == 0 {
		return 0, s.documentRepo.UpdatePointIDs(doc.ID, nil)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, err
	}

	pointIDs, err := s.vectorStore.UpsertChunks(ctx, namespace, doc.ID, chunks, vectors)
	if err != nil {
		return 0, err
	}
	if err := s.documentRepo.UpdatePointIDs(doc.ID, pointIDs); err != nil {
		return 0, err
	}
	doc.QdrantPointIDs = strings.Join(pointIDs, ",")
	return len(chunks), nil
}

// targetCollection resolves the collection a write lands in. A CAT
// always writes to its bound collection and may not name another one.
func (s *DocumentService) targetCollection(info *auth.Info, collectionID string) (*models.Collection, error) {
	if info.Kind() == auth.KindCAT && !info.CAT().IsAdmin {
		cat := info.CAT()
		if collectionID != "" && collectionID != cat.CollectionID {
			return nil, fmt.Errorf("%w: collection", auth.ErrNotFound)
		}
		collectionID = cat.CollectionID
	}
	if collectionID == "" {
		return nil, fmt.Errorf("%w: collection_id is required", auth.ErrValidation)
	}
	return s.targetableRead(info, collectionID)
}

// targetableRead loads a collection and checks reachability, mapping
// out-of-scope ids to NotFound
func (s *DocumentService) targetableRead(info *auth.Info, collectionID string) (*models.Collection, error) {
	collection, err := s.collectionRepo.GetCollectionByID(collectionID)
	if err != nil {
		return nil, err
	}
	if !info.CanAccessCollection(collection.ID, collection.UserID) {
		return nil, fmt.Errorf("%w: collection", auth.ErrNotFound)
	}
	return collection, nil
}

// reachableDocument loads a document together with its collection,
// enforcing the caller's collection scope
func (s *DocumentService) reachableDocument(info *auth.Info, documentID string) (*models.Document, *models.Collection, error) {
	if !info.IsAuthenticated() {
		return nil, nil, auth.ErrUnauthenticated
	}

	scope := ""
	if info.Kind() == auth.KindCAT && !info.CAT().IsAdmin {
		scope = info.CAT().CollectionID
	}

	doc, err := s.documentRepo.GetDocumentByID(documentID, scope)
	if err != nil {
		return nil, nil, err
	}
	collection, err := s.targetableRead(info, doc.CollectionID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: document", auth.ErrNotFound)
	}
	return doc, collection, nil
}

// reachableCollections resolves the collection set a search spans
func (s *DocumentService) reachableCollections(info *auth.Info) ([]models.Collection, error) {
	switch info.Kind() {
	case auth.KindCAT:
		cat := info.CAT()
		if cat.IsAdmin {
			return nil, fmt.Errorf("%w: service context cannot search", auth.ErrValidation)
		}
		collection, err := s.collectionRepo.GetCollectionByID(cat.CollectionID)
		if err != nil {
			return nil, err
		}
		return []models.Collection{*collection}, nil
	case auth.KindUser, auth.KindPAT:
		userID, _ := info.ActingUserID()
		return s.collectionRepo.ListCollectionsByUser(userID)
	default:
		return nil, auth.ErrUnauthenticated
	}
}
