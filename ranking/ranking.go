// Package ranking blends keyword weight with semantic similarity and gates
// the result on a threshold.
package ranking

import (
	"fmt"
	"sort"

	"github.com/poiesic/sentsim/core"
)

const (
	DefaultAlpha     = 0.15
	DefaultThreshold = 0.7
)

// Candidate is a sentence with its accumulated keyword weight and raw similarity.
type Candidate struct {
	Sentence   string
	Weight     float64
	Similarity float32
}

// Combine normalizes weights and similarities by their maxima within
// candidates and mixes them as accuracy*(1-alpha) + weight*alpha.
// Results are sorted by descending score; equal scores keep input order.
// Scores are relative to this batch, not absolute similarities.
func Combine(candidates []Candidate, alpha float64) []core.SimilarityResult {
	var maxWeight, maxAccuracy float64
	for i, c := range candidates {
		if i == 0 || c.Weight > maxWeight {
			maxWeight = c.Weight
		}
		if i == 0 || float64(c.Similarity) > maxAccuracy {
			maxAccuracy = float64(c.Similarity)
		}
	}

	results := make([]core.SimilarityResult, len(candidates))
	for i, c := range candidates {
		var normWeight, normAccuracy float64
		if maxWeight > 0 {
			normWeight = c.Weight / maxWeight
		}
		if maxAccuracy > 0 {
			normAccuracy = max(float64(c.Similarity)/maxAccuracy, 0)
		}
		results[i] = core.SimilarityResult{
			Sentence: c.Sentence,
			Accuracy: normAccuracy*(1-alpha) + normWeight*alpha,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Accuracy > results[j].Accuracy
	})
	return results
}

// Gate returns core.ErrThresholdNotMet unless the top result reaches threshold.
// results must already be sorted.
func Gate(results []core.SimilarityResult, threshold float64) error {
	if len(results) == 0 {
		return fmt.Errorf("%w: no candidates", core.ErrThresholdNotMet)
	}
	if top := results[0].Accuracy; top < threshold {
		return fmt.Errorf("%w: best score %.4f below %.4f", core.ErrThresholdNotMet, top, threshold)
	}
	return nil
}

// ValidateAlpha checks that alpha lies in [0, 1].
func ValidateAlpha(alpha float64) error {
	return validateUnit("alpha", alpha)
}

// ValidateThreshold checks that threshold lies in [0, 1].
func ValidateThreshold(threshold float64) error {
	return validateUnit("threshold", threshold)
}

func validateUnit(name string, v float64) error {
	if !(v >= 0 && v <= 1) {
		return fmt.Errorf("%w: %s must be in [0, 1], got %v", core.ErrValidation, name, v)
	}
	return nil
}
