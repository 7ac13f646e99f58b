package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/storage"
)

// CachedEmbedder serves embeddings from a cache before calling the wrapped embedder.
// Cache failures are logged and never fail an embedding.
type CachedEmbedder struct {
	inner     ai.Embedder
	cache     storage.EmbeddingCache
	namespace string
	logger    *slog.Logger
}

var _ ai.Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner. namespace separates vectors that are not
// interchangeable, such as those of different models; see CacheNamespace.
func NewCachedEmbedder(inner ai.Embedder, cache storage.EmbeddingCache, namespace string, opts ...Option) (*CachedEmbedder, error) {
	if inner == nil {
		return nil, ErrEmbedderRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}
	s, err := applyOptions("embedding-cache", opts)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{
		inner:     inner,
		cache:     cache,
		namespace: namespace,
		logger:    s.logger,
	}, nil
}

// CacheNamespace names the vectors produced by modelID when inputs are
// truncated to maxLength tokens. A maxLength of zero means no truncation.
func CacheNamespace(modelID string, maxLength int) string {
	return fmt.Sprintf("%s@%d", modelID, maxLength)
}

// CacheKey returns the cache key of text under namespace.
func CacheKey(namespace, text string) core.ID {
	return core.IDFromContent(namespace + "|" + text)
}

// EmbedText returns the cached vector for text, computing and storing it on a miss.
func (c *CachedEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.lookup(ctx, text); ok {
		return vec, nil
	}
	vec, err := c.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	c.store(ctx, text, vec)
	return vec, nil
}

// EmbedTexts serves hits from the cache and embeds all misses with a
// single call to the wrapped embedder.
func (c *CachedEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missing []string
	var missingAt []int
	for i, text := range texts {
		vec, ok := c.lookup(ctx, text)
		if ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, text)
		missingAt = append(missingAt, i)
	}
	if len(missing) == 0 {
		return vectors, nil
	}

	c.logger.Debug("embedding cache misses", "hits", len(texts)-len(missing), "misses", len(missing))
	computed, err := c.inner.EmbedTexts(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(missing) {
		return nil, fmt.Errorf("%w: expected %d vectors, got %d", core.ErrInferenceFailure, len(missing), len(computed))
	}
	for j, vec := range computed {
		vectors[missingAt[j]] = vec
		c.store(ctx, missing[j], vec)
	}
	return vectors, nil
}

func (c *CachedEmbedder) lookup(ctx context.Context, text string) ([]float32, bool) {
	key := CacheKey(c.namespace, text)
	vec, err := c.cache.GetEmbedding(ctx, key)
	if err == nil {
		c.logger.Debug("cache hit", "key", key)
		return vec, true
	}
	if !errors.Is(err, storage.ErrNotFound) {
		c.logger.Warn("cache read failed", "key", key, "err", err)
	}
	return nil, false
}

func (c *CachedEmbedder) store(ctx context.Context, text string, vec []float32) {
	key := CacheKey(c.namespace, text)
	if err := c.cache.PutEmbedding(ctx, key, vec); err != nil {
		c.logger.Warn("cache write failed", "key", key, "err", err)
	}
}
