// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.InferenceBackend,
// ai.Embedder, ai.Scorer and ai.Provider for use in unit tests. The mocks
// allow tests to run without a model file or an embedding server and give
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	vec, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	backend := mock.NewMockBackend(16)
//	backend.InferFunc = func(ctx context.Context, in ai.ModelInput) (*ai.TokenEmbeddings, error) {
//	    return nil, nil // simulate a graph that produced no output
//	}
//
//	// Check call counts
//	count := backend.CallCount()
//
// # Default Behavior
//
//   - MockBackend: one-hot token vectors, dimension id mod hidden size
//   - MockEmbedder: deterministic unit vectors derived from a text hash
//   - MockScorer: dot products of MockEmbedder vectors
//   - MockProvider: aggregates an embedder and a scorer
package mock
