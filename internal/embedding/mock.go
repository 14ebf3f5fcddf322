package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// MockEmbedder produces deterministic hash-based vectors, letting the
// service run and be tested without an external embedding API
type MockEmbedder struct {
	dimensions int
}

func NewMockEmbedder(dimensions int) *MockEmbedder {
	return &MockEmbedder{dimensions: dimensions}
}

// EmbedTexts generates deterministic vectors for a batch of texts
func (e *MockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vectorFor(text)
	}
	return vectors, nil
}

// EmbedQuery generates a deterministic vector for a search query
func (e *MockEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return e.vectorFor(query), nil
}

// vectorFor derives a unit vector from repeated hashing of the text
func (e *MockEmbedder) vectorFor(text string) []float32 {
	vector := make([]float32, e.dimensions)
	seed := sha256.Sum256([]byte(text))

	var norm float64
	digest := seed
	for i := 0; i < e.dimensions; i++ {
		if i%4 == 0 && i > 0 {
			digest = sha256.Sum256(digest[:])
		}
		bits := binary.BigEndian.Uint64(digest[(i%4)*8 : (i%4)*8+8])
		v := float32(int64(bits%2000)-1000) / 1000.0
		vector[i] = v
		norm += float64(v) * float64(v)
	}

	// Normalize so cosine scores stay in a sane range
	if norm > 0 {
		scale := float32(1.0 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector
}
