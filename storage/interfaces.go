package storage

import (
	"context"

	"github.com/poiesic/sentsim/core"
)

// SentenceRepository persists the reference corpus.
// Implementations must be thread-safe and support concurrent access.
type SentenceRepository interface {
	// LoadSentences returns the persisted sentences in registration order.
	// Returns an empty slice when nothing has been saved.
	LoadSentences(ctx context.Context) ([]string, error)

	// SaveSentences replaces the persisted corpus with sentences, atomically.
	SaveSentences(ctx context.Context, sentences []string) error

	// Close releases resources held by the repository.
	Close() error
}

// EmbeddingCache stores computed sentence vectors.
type EmbeddingCache interface {
	// GetEmbedding returns the vector stored under key.
	// Returns ErrNotFound if there is none.
	GetEmbedding(ctx context.Context, key core.ID) ([]float32, error)

	// PutEmbedding stores vector under key, replacing any previous value.
	PutEmbedding(ctx context.Context, key core.ID, vector []float32) error

	// PurgeEmbeddings removes every cached vector and returns how many were removed.
	PurgeEmbeddings(ctx context.Context) (int, error)
}
