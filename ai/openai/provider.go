// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"log/slog"

	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/embedding"
	"github.com/poiesic/sentsim/storage"
)

// Provider implements ai.Provider using OpenAI-compatible services.
type Provider struct {
	config   *ai.Config
	embedder ai.Embedder
	scorer   *Scorer
	logger   *slog.Logger
}

type providerOptions struct {
	cache  storage.EmbeddingCache
	logger *slog.Logger
}

// Option configures a Provider.
type Option func(*providerOptions)

// WithCache serves repeated texts from cache before calling the remote service.
func WithCache(cache storage.EmbeddingCache) Option {
	return func(o *providerOptions) {
		o.cache = cache
	}
}

// WithLogger sets the logger used by the provider, its embedder and scorer.
func WithLogger(logger *slog.Logger) Option {
	return func(o *providerOptions) {
		o.logger = logger
	}
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

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, opts ...Option) (ai.Provider, error) {
	o := collectOptions(opts)
	embedder, err := newEmbedder(config, o.logger)
	if err != nil {
		return nil, err
	}
	return newProvider(config, embedder, o)
}

func newProvider(config *ai.Config, embedder ai.Embedder, o *providerOptions) (*Provider, error) {
	p := &Provider{
		config:   config,
		embedder: embedder,
		logger:   o.logger.With("component", "openai-provider"),
	}
	if o.cache != nil {
		// The server owns truncation, so the model alone scopes the cache.
		cached, err := embedding.NewCachedEmbedder(embedder, o.cache,
			embedding.CacheNamespace(config.ModelID, 0),
			embedding.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		p.embedder = cached
	}
	p.scorer = NewScorer(p.embedder, o.logger)
	return p, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Scorer returns the batch scorer.
func (p *Provider) Scorer() ai.Scorer {
	return p.scorer
}

// ModelID identifies the remote embedding model.
func (p *Provider) ModelID() string {
	return p.config.ModelID
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
