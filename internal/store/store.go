package store

import (
	"context"

	"portfolio-rag/internal/models"
)

// VectorStore is a persistent collection of chunks supporting nearest-neighbor
// retrieval. Inserts are not deduplicated: ingesting the same document twice
// stores its chunks twice.
type VectorStore interface {
	// Add inserts chunks with precomputed embeddings.
	Add(ctx context.Context, chunks []models.Chunk) error

	// Search embeds the query and returns up to k chunks, nearest first.
	Search(ctx context.Context, query string, k int) ([]models.ScoredChunk, error)

	// Count reports the total number of stored chunks.
	Count(ctx context.Context) (int, error)

	Close() error
}
