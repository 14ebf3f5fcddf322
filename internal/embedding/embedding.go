package embedding

import (
	"context"

	"document-memory-backend/internal/config"
)

// Embedder generates dense vectors for document chunks and queries
type Embedder interface {
	// EmbedTexts generates embedding vectors for a batch of texts
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery generates an embedding vector for a search query
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// New selects the embedder implementation from config
func New(cfg config.EmbeddingConfig) Embedder {
	if cfg.UseMock {
		return NewMockEmbedder(cfg.Dimensions)
	}
	return NewOpenAIEmbedder(cfg)
}
