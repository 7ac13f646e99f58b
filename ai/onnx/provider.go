package onnx

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/embedding"
	"github.com/poiesic/sentsim/storage"
	"github.com/poiesic/sentsim/tokenizer"
)

// Provider implements ai.Provider with a local tokenizer and inference backend.
type Provider struct {
	config   *ai.Config
	backend  ai.InferenceBackend
	embedder ai.Embedder
	scorer   *embedding.Scorer
	logger   *slog.Logger
}

type providerOptions struct {
	cache  storage.EmbeddingCache
	logger *slog.Logger
}

// Option configures a Provider.
type Option func(*providerOptions)

// WithCache serves repeated texts from cache.
func WithCache(cache storage.EmbeddingCache) Option {
	return func(o *providerOptions) {
		o.cache = cache
	}
}

// WithLogger sets the logger used by the provider and its pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(o *providerOptions) {
		o.logger = logger
	}
}

// NewProvider loads the vocabulary and model named by config.
//
// Returns ai.Provider interface to enforce abstraction.
func NewProvider(config *ai.Config, opts ...Option) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	tok, err := loadTokenizer(config)
	if err != nil {
		return nil, err
	}
	o := collectOptions(opts)
	backend, err := NewBackend(config, o.logger)
	if err != nil {
		return nil, err
	}
	provider, err := newProvider(config, tok, backend, o)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return provider, nil
}

// NewProviderWithBackend builds a provider around an existing backend.
// The provider takes ownership of backend and closes it on Close.
func NewProviderWithBackend(config *ai.Config, backend ai.InferenceBackend, opts ...Option) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	tok, err := loadTokenizer(config)
	if err != nil {
		return nil, err
	}
	return newProvider(config, tok, backend, collectOptions(opts))
}

func loadTokenizer(config *ai.Config) (*tokenizer.Tokenizer, error) {
	vocab, err := tokenizer.LoadVocabularyFile(config.VocabularyPath)
	if err != nil {
		return nil, err
	}
	return tokenizer.New(vocab, tokenizer.WithMaxLength(config.MaxSequenceLength))
}

func collectOptions(opts []Option) *providerOptions {
	o := &providerOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

func newProvider(config *ai.Config, tok *tokenizer.Tokenizer, backend ai.InferenceBackend, o *providerOptions) (*Provider, error) {
	logger := o.logger.With("component", "onnx-provider")

	pipeline, err := embedding.NewPipeline(tok, backend, embedding.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	var embedder ai.Embedder = pipeline
	if o.cache != nil {
		cached, err := embedding.NewCachedEmbedder(pipeline, o.cache,
			embedding.CacheNamespace(config.ModelID, tok.MaxLength()),
			embedding.WithLogger(o.logger))
		if err != nil {
			return nil, fmt.Errorf("wrapping embedder: %w", err)
		}
		embedder = cached
	}

	scorer, err := embedding.NewScorer(embedder, embedding.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	logger.Info("provider ready",
		"model", config.ModelID,
		"max_length", tok.MaxLength(),
		"cached", o.cache != nil)

	return &Provider{
		config:   config,
		backend:  backend,
		embedder: embedder,
		scorer:   scorer,
		logger:   logger,
	}, nil
}

// Embedder returns the sentence embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Scorer returns the sequential query-versus-candidates scorer.
func (p *Provider) Scorer() ai.Scorer {
	return p.scorer
}

// ModelID identifies the loaded model.
func (p *Provider) ModelID() string {
	return p.config.ModelID
}

// Close releases the inference backend.
func (p *Provider) Close() error {
	p.logger.Debug("closing onnx provider")
	return p.backend.Close()
}
