package ai

import "context"

// InferenceBackend runs the sentence-encoder graph.
// Implementations must release every per-call resource before Infer returns.
type InferenceBackend interface {
	// Infer submits one tokenized sequence and waits for the per-token
	// embeddings. Returns an error wrapping core.ErrInferenceFailure when the
	// graph produces no output.
	Infer(ctx context.Context, input ModelInput) (*TokenEmbeddings, error)

	// Close releases the graph and any runtime state held by the backend.
	Close() error
}

// Embedder generates unit-length vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Scorer computes the raw similarity of each candidate to a query.
type Scorer interface {
	// ScoreAll returns one similarity per candidate, aligned by index.
	ScoreAll(ctx context.Context, query string, candidates []string) ([]float32, error)
}

// Provider aggregates the embedding services backed by one model.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Scorer returns the similarity scoring service.
	Scorer() Scorer

	// ModelID identifies the model, used to namespace cached embeddings.
	ModelID() string

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}

// ModelInput holds the named integer tensors fed to the encoder graph.
// All three slices have the same length N.
type ModelInput struct {
	InputIDs      []int64
	AttentionMask []int64
	SegmentIDs    []int64
}

// Len returns the sequence length.
func (m ModelInput) Len() int {
	return len(m.InputIDs)
}

// TokenEmbeddings is the encoder output for a batch of one: shape [1, Tokens, Hidden],
// stored row-major in Values.
type TokenEmbeddings struct {
	Tokens int
	Hidden int
	Values []float32
}

// Token returns the vector of token i.
func (t *TokenEmbeddings) Token(i int) []float32 {
	return t.Values[i*t.Hidden : (i+1)*t.Hidden]
}
