package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/embedding"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

var _ ai.Embedder = (*Embedder)(nil)

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config, logger *slog.Logger) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Local servers accept any token; "none" is the configured default.
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.APIToken),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}
	return NewEmbedderWithClient(client, logger)
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config, nil)
}

// NewEmbedderWithClient wraps any langchaingo embedding client.
// A nil logger selects slog.Default().
func NewEmbedderWithClient(client embeddings.EmbedderClient, logger *slog.Logger) (*Embedder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}
	return &Embedder{
		embedder: embedder,
		logger:   logger.With("component", "openai-embedder"),
	}, nil
}

// EmbedText generates a unit-length vector for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts generates unit-length vectors for texts in one request.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrInferenceFailure, err)
	}
	if len(vectors) != len(texts) {
		e.logger.Warn("embedder returned wrong number of vectors", "want", len(texts), "got", len(vectors))
		return nil, fmt.Errorf("%w: expected %d vectors, got %d", core.ErrInferenceFailure, len(texts), len(vectors))
	}

	for i, vec := range vectors {
		if len(vec) == 0 {
			return nil, fmt.Errorf("%w: empty vector for text %d", core.ErrInferenceFailure, i)
		}
		vectors[i] = embedding.Normalize(vec)
	}
	return vectors, nil
}
