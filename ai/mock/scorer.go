package mock

import (
	"context"
	"sync"

	"github.com/poiesic/sentsim/ai"
)

// MockScorer is a test double for ai.Scorer.
type MockScorer struct {
	// ScoreAllFunc is called by ScoreAll if set.
	// If nil, candidates are scored by dot product of Embedder vectors.
	ScoreAllFunc func(ctx context.Context, query string, candidates []string) ([]float32, error)

	Embedder ai.Embedder

	mu        sync.Mutex
	callCount int
	lastBatch []string
}

var _ ai.Scorer = (*MockScorer)(nil)

// NewMockScorer creates a scorer over embedder.
func NewMockScorer(embedder ai.Embedder) *MockScorer {
	return &MockScorer{Embedder: embedder}
}

// ScoreAll scores candidates against query.
func (m *MockScorer) ScoreAll(ctx context.Context, query string, candidates []string) ([]float32, error) {
	m.mu.Lock()
	m.callCount++
	m.lastBatch = append([]string(nil), candidates...)
	fn := m.ScoreAllFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, query, candidates)
	}

	q, err := m.Embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, err
	}
	scores := make([]float32, len(candidates))
	for i, candidate := range candidates {
		v, err := m.Embedder.EmbedText(ctx, candidate)
		if err != nil {
			return nil, err
		}
		var sum float32
		for j := range min(len(q), len(v)) {
			sum += q[j] * v[j]
		}
		scores[i] = sum
	}
	return scores, nil
}

// CallCount returns the number of ScoreAll calls.
func (m *MockScorer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastCandidates returns the candidates passed to the most recent ScoreAll call.
func (m *MockScorer) LastCandidates() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBatch
}
