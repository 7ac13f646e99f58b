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


// Package sentsim ranks a small corpus of reference sentences by similarity
// to a query, blending sentence-embedding similarity with RAKE keyword
// relevance.
//
// Engine wires the pieces together: a BadgerDB-backed sentence store, an
// embedding provider (local ONNX or a remote OpenAI-compatible service) and
// the measurement service.
package sentsim

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/ai/onnx"
	"github.com/poiesic/sentsim/ai/openai"
	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/corpus"
	"github.com/poiesic/sentsim/keyword"
	"github.com/poiesic/sentsim/measure"
	"github.com/poiesic/sentsim/storage"
	"github.com/poiesic/sentsim/storage/badger"
	"github.com/poiesic/sentsim/warmup"
)

type Engine struct {
	config    *Config
	backend   *badger.Backend
	cache     storage.EmbeddingCache
	store     *corpus.Store
	provider  ai.Provider
	extractor *keyword.Extractor
	service   *measure.Service
	logger    *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	provider ai.Provider
	observer measure.Observer
	logger   *slog.Logger
}

// WithProvider uses provider instead of building one from the AI config.
// The engine takes ownership and closes it.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithObserver receives measurement and corpus events.
func WithObserver(observer measure.Observer) EngineOption {
	return func(o *engineOptions) {
		o.observer = observer
	}
}

// WithLogger sets the logger passed to every component.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

func New(ctx context.Context, config *Config, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	backend, err := badger.OpenBackend(config.DBPath, config.InMemory)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config:  config,
		backend: backend,
		cache:   badger.NewEmbeddingCache(backend),
		logger:  options.logger.With("component", "engine"),
	}

	e.store, err = corpus.NewStore(ctx, badger.NewSentenceRepository(backend),
		corpus.WithCapacity(config.Capacity),
		corpus.WithLogger(options.logger))
	if err != nil {
		backend.Close()
		return nil, err
	}

	e.provider = options.provider
	if e.provider == nil {
		e.provider, err = e.newProvider(options.logger)
		if err != nil {
			e.store.Close()
			backend.Close()
			return nil, err
		}
	}

	e.extractor, err = newExtractor(config, options.logger)
	if err == nil {
		e.service, err = measure.NewService(e.store, e.provider,
			measure.WithLogger(options.logger),
			measure.WithObserver(options.observer),
			measure.WithAlpha(config.Alpha),
			measure.WithThreshold(config.Threshold),
			measure.WithExtractor(e.extractor))
	}
	if err != nil {
		e.provider.Close()
		e.store.Close()
		backend.Close()
		return nil, err
	}

	return e, nil
}

func (e *Engine) newProvider(logger *slog.Logger) (ai.Provider, error) {
	switch e.config.AI.Backend {
	case ai.BackendOpenAI:
		opts := []openai.Option{openai.WithLogger(logger)}
		if e.config.CacheEmbeddings {
			opts = append(opts, openai.WithCache(e.cache))
		}
		return openai.NewProvider(&e.config.AI, opts...)
	default:
		opts := []onnx.Option{onnx.WithLogger(logger)}
		if e.config.CacheEmbeddings {
			opts = append(opts, onnx.WithCache(e.cache))
		}
		return onnx.NewProvider(&e.config.AI, opts...)
	}
}

func newExtractor(config *Config, logger *slog.Logger) (*keyword.Extractor, error) {
	opts := []keyword.Option{
		keyword.WithMinCharLength(config.MinCharLength),
		keyword.WithMaxWordsLength(config.MaxWordsLength),
		keyword.WithLogger(logger),
	}
	if config.StopListPath != "" {
		list, err := keyword.LoadStopListFile(config.StopListPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, keyword.WithStopList(list))
	}
	return keyword.NewExtractor(opts...)
}

// Close waits for an in-flight measurement, flushes the store and releases
// the provider and database.
func (e *Engine) Close() error {
	var errs []error
	if err := e.service.Close(); err != nil {
		e.logger.Error("error closing measurement service", "err", err)
		errs = append(errs, err)
	}
	if err := e.store.Close(); err != nil {
		e.logger.Error("error flushing sentence store", "err", err)
		errs = append(errs, err)
	}
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
		errs = append(errs, err)
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Measure starts an asynchronous measurement; see measure.Service.Measure.
func (e *Engine) Measure(ctx context.Context, query string) error {
	return e.service.Measure(ctx, query)
}

// MeasureSync measures query and returns the ranked sentences.
func (e *Engine) MeasureSync(ctx context.Context, query string) ([]core.SimilarityResult, error) {
	return e.service.MeasureSync(ctx, query)
}

func (e *Engine) Register(ctx context.Context, sentence string) error {
	return e.service.Register(ctx, sentence)
}

func (e *Engine) Delete(ctx context.Context, sentence string) error {
	return e.service.Delete(ctx, sentence)
}

func (e *Engine) Sentences() []string {
	return e.store.Sentences()
}

// Flush waits until every registered change is persisted.
func (e *Engine) Flush() error {
	return e.store.Flush()
}

// Keywords returns the negation-stripped text and its ranked key phrases,
// as a measurement would see them.
func (e *Engine) Keywords(text string) (string, []core.KeywordScore) {
	stripped := keyword.StripNegations(text)
	return stripped, e.extractor.Keywords(stripped)
}

// Warm embeds every registered sentence so measurements hit the cache.
func (e *Engine) Warm(ctx context.Context, opts ...warmup.Option) (int, error) {
	w, err := warmup.NewWarmer(e.provider.Embedder(), opts...)
	if err != nil {
		return 0, err
	}
	defer w.Release()
	return w.Run(ctx, e.store.Sentences())
}

// PurgeCache removes every cached embedding.
func (e *Engine) PurgeCache(ctx context.Context) (int, error) {
	return e.cache.PurgeEmbeddings(ctx)
}

func (e *Engine) State() measure.State {
	return e.service.State()
}

func (e *Engine) Provider() ai.Provider {
	return e.provider
}
