package chunking

import (
	"fmt"
	"strings"

	"document-memory-backend/internal/config"

	"github.com/pkoukk/tiktoken-go"
)

// Chunk is one indexable slice of a document
type Chunk struct {
	Index      int
	Content    string
	TokenCount int
	Title      string
}

// Chunker splits document content into token-bounded chunks with
// overlap between consecutive chunks
type Chunker struct {
	maxTokens     int
	overlapTokens int
	tokenizer     *tiktoken.Tiktoken
}

func NewChunker(cfg config.ChunkingConfig) (*Chunker, error) {
	// cl100k_base matches the embedding models in use
	tokenizer, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}
	return &Chunker{
		maxTokens:     cfg.MaxTokens,
		overlapTokens: cfg.OverlapTokens,
		tokenizer:     tokenizer,
	}, nil
}

// Split breaks content into chunks of at most maxTokens tokens, sliding
// by maxTokens-overlapTokens so adjacent chunks share context
func (c *Chunker) Split(content, title string) []Chunk {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	tokens := c.tokenizer.Encode(content, nil, nil)
	step := c.maxTokens - c.overlapTokens
	if step <= 0 {
		step = c.maxTokens
	}

	var chunks []Chunk
	for start := 0; start < len(tokens); start += step {
		end := start + c.maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}

		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			Content:    c.tokenizer.Decode(tokens[start:end]),
			TokenCount: end - start,
			Title:      title,
		})

		if end == len(tokens) {
			break
		}
	}

	return chunks
}

// CountTokens returns the token count of a text
func (c *Chunker) CountTokens(text string) int {
	return len(c.tokenizer.Encode(text, nil, nil))
}
