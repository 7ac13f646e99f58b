package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/sentsim/ai/mock"
	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/storage"
	"github.com/poiesic/sentsim/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingCache rejects every operation.
type failingCache struct{}

func (failingCache) GetEmbedding(context.Context, core.ID) ([]float32, error) {
	return nil, errors.New("disk on fire")
}

func (failingCache) PutEmbedding(context.Context, core.ID, []float32) error {
	return errors.New("disk on fire")
}

func (failingCache) PurgeEmbeddings(context.Context) (int, error) {
	return 0, errors.New("disk on fire")
}

var _ storage.EmbeddingCache = failingCache{}

func TestNewCachedEmbedder(t *testing.T) {
	_, err := NewCachedEmbedder(nil, failingCache{}, "m")
	assert.Equal(t, ErrEmbedderRequired, err)

	_, err = NewCachedEmbedder(mock.NewMockEmbedder(), nil, "m")
	assert.Equal(t, ErrCacheRequired, err)
}

func TestCachedEmbedder(t *testing.T) {
	ctx := context.Background()
	sentences, cache, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		sentences.Close()
		backend.Close()
	}()

	t.Run("hit skips the wrapped embedder", func(t *testing.T) {
		inner := mock.NewMockEmbedder()
		cached, err := NewCachedEmbedder(inner, cache, "model-a")
		require.NoError(t, err)

		first, err := cached.EmbedText(ctx, "I love cats")
		require.NoError(t, err)
		second, err := cached.EmbedText(ctx, "I love cats")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, inner.CallCount())
	})

	t.Run("models do not share entries", func(t *testing.T) {
		inner := mock.NewMockEmbedder()
		cached, err := NewCachedEmbedder(inner, cache, "model-b")
		require.NoError(t, err)

		_, err = cached.EmbedTexts(ctx, []string{"I love cats", "I love dogs"})
		require.NoError(t, err)
		assert.Equal(t, 2, inner.CallCount())
		assert.NotEqual(t, CacheKey("model-a", "x"), CacheKey("model-b", "x"))
	})

	t.Run("errors are not cached", func(t *testing.T) {
		inner := mock.NewMockEmbedder()
		inner.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, core.ErrInferenceFailure
		}
		cached, err := NewCachedEmbedder(inner, cache, "model-c")
		require.NoError(t, err)

		_, err = cached.EmbedText(ctx, "Stock market crashed")
		assert.ErrorIs(t, err, core.ErrInferenceFailure)

		_, err = cache.GetEmbedding(ctx, CacheKey("model-c", "Stock market crashed"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("misses are embedded in one batch", func(t *testing.T) {
		var batches [][]string
		inner := mock.NewMockEmbedder()
		inner.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
			batches = append(batches, append([]string(nil), texts...))
			out := make([][]float32, len(texts))
			for i := range out {
				out[i] = []float32{float32(len(texts[i])), 0}
			}
			return out, nil
		}
		cached, err := NewCachedEmbedder(inner, cache, "model-e")
		require.NoError(t, err)

		_, err = cached.EmbedTexts(ctx, []string{"I love cats"})
		require.NoError(t, err)

		vecs, err := cached.EmbedTexts(ctx, []string{"query", "I love cats", "I love dogs", "the market crashed"})
		require.NoError(t, err)
		require.Len(t, vecs, 4)
		assert.Equal(t, []float32{5, 0}, vecs[0])
		assert.Equal(t, []float32{11, 0}, vecs[1])
		assert.Equal(t, []float32{18, 0}, vecs[3])

		assert.Equal(t, [][]string{
			{"I love cats"},
			{"query", "I love dogs", "the market crashed"},
		}, batches)

		_, err = cached.EmbedTexts(ctx, []string{"query", "I love dogs"})
		require.NoError(t, err)
		assert.Len(t, batches, 2)
	})

	t.Run("short batch is an inference failure", func(t *testing.T) {
		inner := mock.NewMockEmbedder()
		inner.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}
		cached, err := NewCachedEmbedder(inner, cache, "model-f")
		require.NoError(t, err)

		_, err = cached.EmbedTexts(ctx, []string{"a", "b"})
		assert.ErrorIs(t, err, core.ErrInferenceFailure)
	})

	t.Run("cache failures fall through", func(t *testing.T) {
		inner := mock.NewMockEmbedder()
		cached, err := NewCachedEmbedder(inner, failingCache{}, "model-d")
		require.NoError(t, err)

		vec, err := cached.EmbedText(ctx, "I love cats")
		require.NoError(t, err)
		assert.Len(t, vec, 384)
	})
}

func TestCacheNamespace(t *testing.T) {
	assert.Equal(t, CacheNamespace("model.onnx", 128), CacheNamespace("model.onnx", 128))
	assert.NotEqual(t, CacheNamespace("model.onnx", 128), CacheNamespace("model.onnx", 64))
	assert.NotEqual(t, CacheNamespace("model.onnx", 0), CacheNamespace("other.onnx", 0))
	assert.NotEqual(t,
		CacheKey(CacheNamespace("model.onnx", 128), "I love cats"),
		CacheKey(CacheNamespace("model.onnx", 64), "I love cats"))
}
