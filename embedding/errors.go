package embedding

import "errors"

var (
	// ErrTokenizerRequired is returned when a tokenizer is not provided.
	ErrTokenizerRequired = errors.New("tokenizer required")

	// ErrBackendRequired is returned when an inference backend is not provided.
	ErrBackendRequired = errors.New("inference backend required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCacheRequired is returned when an embedding cache is not provided.
	ErrCacheRequired = errors.New("embedding cache required")

	// ErrDimensionMismatch is returned when two vectors have different lengths.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
