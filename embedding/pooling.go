package embedding

import (
	"fmt"
	"math"

	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/core"
)

// minMaskSum bounds the pooling divisor away from zero.
const minMaskSum = 1e-9

// MeanPool averages the token vectors of out whose mask value is non-zero.
// The divisor is max(sum(mask), 1e-9).
func MeanPool(out *ai.TokenEmbeddings, mask []int64) ([]float32, error) {
	if out == nil || len(out.Values) == 0 || out.Hidden <= 0 {
		return nil, fmt.Errorf("%w: backend returned no output", core.ErrInferenceFailure)
	}
	if out.Tokens != len(mask) || len(out.Values) != out.Tokens*out.Hidden {
		return nil, fmt.Errorf("%w: output shape [1,%d,%d] with %d values does not match %d tokens",
			core.ErrInferenceFailure, out.Tokens, out.Hidden, len(out.Values), len(mask))
	}

	summed := make([]float64, out.Hidden)
	var maskSum float64
	for i, m := range mask {
		if m == 0 {
			continue
		}
		weight := float64(m)
		maskSum += weight
		for j, v := range out.Token(i) {
			summed[j] += float64(v) * weight
		}
	}

	divisor := math.Max(maskSum, minMaskSum)
	pooled := make([]float32, out.Hidden)
	for j, v := range summed {
		pooled[j] = float32(v / divisor)
	}
	return pooled, nil
}

// Normalize returns v scaled to unit Euclidean length.
// A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	if sumSquares == 0 {
		copy(out, v)
		return out
	}
	norm := math.Sqrt(sumSquares)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
