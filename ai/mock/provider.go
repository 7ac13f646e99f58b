package mock

import (
	"sync"

	"github.com/poiesic/sentsim/ai"
)

// MockProvider is a test double for ai.Provider.
type MockProvider struct {
	embedder ai.Embedder
	scorer   ai.Scorer
	modelID  string

	mu     sync.Mutex
	closed bool
}

// NewMockProvider creates a provider with a default MockEmbedder and MockScorer.
func NewMockProvider() ai.Provider {
	embedder := NewMockEmbedder()
	return &MockProvider{
		embedder: embedder,
		scorer:   NewMockScorer(embedder),
		modelID:  "mock",
	}
}

// NewMockProviderWithServices creates a provider with injected services.
// Note: Returns concrete type so tests can check Closed.
func NewMockProviderWithServices(embedder ai.Embedder, scorer ai.Scorer) *MockProvider {
	return &MockProvider{
		embedder: embedder,
		scorer:   scorer,
		modelID:  "mock",
	}
}

// Embedder returns the embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Scorer returns the scorer.
func (p *MockProvider) Scorer() ai.Scorer {
	return p.scorer
}

// ModelID returns "mock".
func (p *MockProvider) ModelID() string {
	return p.modelID
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// Closed reports whether Close was called.
func (p *MockProvider) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
