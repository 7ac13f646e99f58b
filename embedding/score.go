package embedding

import (
	"fmt"

	"github.com/poiesic/sentsim/core"
)

// Dot returns the dot product of a and b. For unit vectors this is the
// cosine similarity. Vectors of different lengths come from different
// models and are rejected with core.ErrInferenceFailure.
func Dot(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %w: %d vs %d", core.ErrInferenceFailure, ErrDimensionMismatch, len(a), len(b))
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum), nil
}

// ScoreMatrix multiplies the 1xH query by the HxM matrix whose columns are
// candidates. Each entry uses the same accumulation as Dot, so
// ScoreMatrix(q, c)[i] == Dot(q, c[i]) exactly.
func ScoreMatrix(query []float32, candidates [][]float32) ([]float32, error) {
	scores := make([]float32, len(candidates))
	for i, column := range candidates {
		score, err := Dot(query, column)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		scores[i] = score
	}
	return scores, nil
}
