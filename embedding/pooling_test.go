package embedding

import (
	"math"
	"math/rand"
	"testing"

	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func l2(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestMeanPool(t *testing.T) {
	t.Run("ignores masked tokens", func(t *testing.T) {
		out := &ai.TokenEmbeddings{
			Tokens: 3,
			Hidden: 2,
			Values: []float32{1, 2, 3, 4, 100, 100},
		}
		pooled, err := MeanPool(out, []int64{1, 1, 0})
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float32{2, 3}, pooled, 1e-6)
	})

	t.Run("all masked yields zero vector", func(t *testing.T) {
		out := &ai.TokenEmbeddings{Tokens: 2, Hidden: 2, Values: []float32{5, 5, 5, 5}}
		pooled, err := MeanPool(out, []int64{0, 0})
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 0}, pooled)
	})

	t.Run("no output", func(t *testing.T) {
		_, err := MeanPool(nil, []int64{1})
		assert.ErrorIs(t, err, core.ErrInferenceFailure)

		_, err = MeanPool(&ai.TokenEmbeddings{Tokens: 1, Hidden: 4}, []int64{1})
		assert.ErrorIs(t, err, core.ErrInferenceFailure)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		out := &ai.TokenEmbeddings{Tokens: 2, Hidden: 2, Values: []float32{1, 2, 3, 4}}
		_, err := MeanPool(out, []int64{1, 1, 1})
		assert.ErrorIs(t, err, core.ErrInferenceFailure)

		out = &ai.TokenEmbeddings{Tokens: 2, Hidden: 2, Values: []float32{1, 2, 3}}
		_, err = MeanPool(out, []int64{1, 1})
		assert.ErrorIs(t, err, core.ErrInferenceFailure)
	})
}

func TestNormalize(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	t.Run("unit length", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			v := make([]float32, 1+rng.Intn(512))
			for j := range v {
				v[j] = float32(rng.NormFloat64() * 10)
			}
			assert.InDelta(t, 1.0, l2(Normalize(v)), 1e-5)
		}
	})

	t.Run("does not modify input", func(t *testing.T) {
		v := []float32{3, 4}
		out := Normalize(v)
		assert.Equal(t, []float32{3, 4}, v)
		assert.InDeltaSlice(t, []float32{0.6, 0.8}, out, 1e-6)
	})

	t.Run("zero vector", func(t *testing.T) {
		assert.Equal(t, []float32{0, 0, 0}, Normalize([]float32{0, 0, 0}))
	})
}
