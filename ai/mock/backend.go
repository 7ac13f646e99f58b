package mock

import (
	"context"
	"sync"

	"github.com/poiesic/sentsim/ai"
)

// MockBackend is a test double for ai.InferenceBackend.
// By default token id t maps to the unit vector on dimension t mod Hidden,
// so mean-pooled sentences behave like normalized bags of tokens.
type MockBackend struct {
	// InferFunc is called by Infer if set.
	InferFunc func(ctx context.Context, input ai.ModelInput) (*ai.TokenEmbeddings, error)

	Hidden int

	mu        sync.Mutex
	callCount int
	closed    bool
}

var _ ai.InferenceBackend = (*MockBackend)(nil)

// NewMockBackend creates a backend producing hidden-wide one-hot token vectors.
// Note: Returns concrete type so tests can inspect call counts.
func NewMockBackend(hidden int) *MockBackend {
	return &MockBackend{Hidden: hidden}
}

// Infer returns per-token vectors for input.
func (m *MockBackend) Infer(ctx context.Context, input ai.ModelInput) (*ai.TokenEmbeddings, error) {
	m.mu.Lock()
	m.callCount++
	fn := m.InferFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, input)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n := input.Len()
	out := &ai.TokenEmbeddings{
		Tokens: n,
		Hidden: m.Hidden,
		Values: make([]float32, n*m.Hidden),
	}
	for i, id := range input.InputIDs {
		out.Values[i*m.Hidden+int(id%int64(m.Hidden))] = 1
	}
	return out, nil
}

// Close marks the backend closed.
func (m *MockBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockBackend) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// CallCount returns the number of Infer calls.
func (m *MockBackend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
