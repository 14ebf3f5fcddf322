package vectorstore

import (
	"context"
	"fmt"

	"document-memory-backend/internal/chunking"
	"document-memory-backend/internal/config"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/sirupsen/logrus"
)

// Store wraps the qdrant client. Every collection in the relational
// store maps to one qdrant collection named by its vector namespace;
// callers always pass the resolved namespace, never the collection's
// own id.
type Store struct {
	client     *qdrant.Client
	dimensions uint64
}

// SearchHit is one scored chunk returned from a vector search
type SearchHit struct {
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
	Namespace  string  `json:"-"`
}

func New(cfg config.QdrantConfig, dimensions int) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &Store{
		client:     client,
		dimensions: uint64(dimensions),
	}, nil
}

// EnsureNamespace creates the qdrant collection for a namespace if it
// does not exist yet
func (s *Store) EnsureNamespace(ctx context.Context, namespace string) error {
	exists, err := s.client.CollectionExists(ctx, namespace)
	if err != nil {
		return fmt.Errorf("failed to check qdrant collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: namespace,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimensions,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create qdrant collection: %w", err)
	}

	logrus.WithField("namespace", namespace).Info("Created vector namespace")
	return nil
}

// UpsertChunks writes embedded chunks into a namespace and returns the
// generated point ids
func (s *Store) UpsertChunks(ctx context.Context, namespace, documentID string, chunks []chunking.Chunk, vectors [][]float32) ([]string, error) {
	if len(chunks) != len(vectors) {
		return nil, fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	if err := s.EnsureNamespace(ctx, namespace); err != nil {
		return nil, err
	}

	pointIDs := make([]string, len(chunks))
	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		pointIDs[i] = uuid.New().String()
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(pointIDs[i]),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"document_id": documentID,
				"title":       chunk.Title,
				"chunk_index": int64(chunk.Index),
				"content":     chunk.Content,
			}),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: namespace,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert points: %w", err)
	}

	return pointIDs, nil
}

// Search runs a vector similarity query within one namespace
func (s *Store) Search(ctx context.Context, namespace string, vector []float32, limit int) ([]SearchHit, error) {
	exists, err := s.client.CollectionExists(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to check qdrant collection: %w", err)
	}
	if !exists {
		return nil, nil
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: namespace,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	hits := make([]SearchHit, 0, len(points))
	for _, point := range points {
		payload := point.GetPayload()
		hits = append(hits, SearchHit{
			DocumentID: payload["document_id"].GetStringValue(),
			Title:      payload["title"].GetStringValue(),
			ChunkIndex: int(payload["chunk_index"].GetIntegerValue()),
			Content:    payload["content"].GetStringValue(),
			Score:      point.GetScore(),
			Namespace:  namespace,
		})
	}
	return hits, nil
}

// DeletePoints removes chunk points from a namespace
func (s *Store) DeletePoints(ctx context.Context, namespace string, pointIDs []string) error {
	if len(pointIDs) == 0 {
		return nil
	}

	ids := make([]*qdrant.PointId, len(pointIDs))
	for i, id := range pointIDs {
		ids[i] = qdrant.NewIDUUID(id)
	}

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: namespace,
		Points:         qdrant.NewPointsSelector(ids...),
	})
	if err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}
	return nil
}

// DropNamespace removes the entire qdrant collection for a namespace
func (s *Store) DropNamespace(ctx context.Context, namespace string) error {
	exists, err := s.client.CollectionExists(ctx, namespace)
	if err != nil {
		return fmt.Errorf("failed to check qdrant collection: %w", err)
	}
	if !exists {
		return nil
	}
	if err := s.client.DeleteCollection(ctx, namespace); err != nil {
		return fmt.Errorf("failed to delete qdrant collection: %w", err)
	}
	return nil
}

// Close releases the underlying grpc connection
func (s *Store) Close() error {
	return s.client.Close()
}
