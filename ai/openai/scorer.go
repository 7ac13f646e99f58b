package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/embedding"
)

// Scorer embeds the query together with all candidates in a single batch.
type Scorer struct {
	embedder ai.Embedder
	logger   *slog.Logger
}

var _ ai.Scorer = (*Scorer)(nil)

// NewScorer creates a batch scorer over embedder.
// A nil logger selects slog.Default().
func NewScorer(embedder ai.Embedder, logger *slog.Logger) *Scorer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{
		embedder: embedder,
		logger:   logger.With("component", "openai-scorer"),
	}
}

// ScoreAll returns the similarity of each candidate to query.
func (s *Scorer) ScoreAll(ctx context.Context, query string, candidates []string) ([]float32, error) {
	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, query)
	texts = append(texts, candidates...)

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}

	scores, err := embedding.ScoreMatrix(vectors[0], vectors[1:])
	if err != nil {
		s.logger.Error("scoring failed", "err", err)
		return nil, err
	}
	s.logger.Debug("scored candidates", "count", len(candidates))
	return scores, nil
}
