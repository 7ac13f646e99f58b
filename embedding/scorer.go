package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/sentsim/ai"
)

// Scorer scores candidates against a query with one embedder.
// Candidates are embedded strictly one after another.
type Scorer struct {
	embedder ai.Embedder
	logger   *slog.Logger
}

var _ ai.Scorer = (*Scorer)(nil)

// NewScorer creates a scorer over embedder.
func NewScorer(embedder ai.Embedder, opts ...Option) (*Scorer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	s, err := applyOptions("scorer", opts)
	if err != nil {
		return nil, err
	}
	return &Scorer{embedder: embedder, logger: s.logger}, nil
}

// ScoreAll embeds the query once, then embeds each candidate in order and
// scores them all against the query.
func (s *Scorer) ScoreAll(ctx context.Context, query string, candidates []string) ([]float32, error) {
	queryVec, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	vectors := make([][]float32, len(candidates))
	for i, candidate := range candidates {
		vec, err := s.embedder.EmbedText(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("embedding candidate %d: %w", i, err)
		}
		vectors[i] = vec
	}

	scores, err := ScoreMatrix(queryVec, vectors)
	if err != nil {
		s.logger.Error("scoring failed", "err", err)
		return nil, err
	}
	s.logger.Debug("scored candidates", "count", len(candidates))
	return scores, nil
}
