package measure

import (
	"slices"
	"strings"

	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/ranking"
)

// selectCandidates returns the corpus sentences containing at least one
// keyword phrase, case-insensitively, in corpus order. A sentence's weight
// is the sum of the scores of all phrases it contains. When nothing matches
// every sentence is a candidate with weight 0.
func selectCandidates(corpus []string, keywords map[string]float64) []ranking.Candidate {
	folded := make([]string, len(corpus))
	for i, sentence := range corpus {
		folded[i] = core.FoldText(sentence)
	}

	// Sorted so weight sums do not depend on map order.
	phrases := make([]string, 0, len(keywords))
	for phrase := range keywords {
		phrases = append(phrases, phrase)
	}
	slices.Sort(phrases)

	weights := make([]float64, len(corpus))
	matched := make([]bool, len(corpus))
	found := false
	for _, phrase := range phrases {
		needle := core.FoldText(phrase)
		if needle == "" {
			continue
		}
		for i, text := range folded {
			if strings.Contains(text, needle) {
				weights[i] += keywords[phrase]
				matched[i] = true
				found = true
			}
		}
	}

	candidates := make([]ranking.Candidate, 0, len(corpus))
	for i, sentence := range corpus {
		if found && !matched[i] {
			continue
		}
		candidates = append(candidates, ranking.Candidate{Sentence: sentence, Weight: weights[i]})
	}
	return candidates
}
