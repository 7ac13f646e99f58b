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


package ai

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// BackendKind selects the embedding backend.
type BackendKind string

const (
	// BackendONNX runs the encoder locally with ONNX Runtime.
	BackendONNX BackendKind = "onnx"

	// BackendOpenAI calls an OpenAI-compatible embedding service.
	BackendOpenAI BackendKind = "openai"
)

// Config holds configuration for embedding providers.
type Config struct {
	// Backend selects the provider implementation.
	// Default: "onnx"
	Backend BackendKind `yaml:"backend"`

	// ModelPath is the ONNX sentence-encoder graph.
	ModelPath string `yaml:"model_path"`

	// VocabularyPath is the newline-delimited WordPiece vocabulary of the model.
	VocabularyPath string `yaml:"vocabulary_path"`

	// RuntimeLibraryPath points at the onnxruntime shared library.
	// Empty uses the platform default search path.
	RuntimeLibraryPath string `yaml:"runtime_library_path"`

	// OutputName is the graph output holding per-token embeddings.
	// Default: "last_hidden_state"
	OutputName string `yaml:"output_name"`

	// HiddenSize is the width H of each token embedding.
	// Default: 384
	HiddenSize int `yaml:"hidden_size"`

	// MaxSequenceLength is the fixed tokenizer length; 0 selects the
	// unbounded tokenizer that drops unmatched words.
	// Default: 128
	MaxSequenceLength int `yaml:"max_sequence_length"`

	// EmbeddingHost is the base URL for the remote embedding service API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	EmbeddingHost string `yaml:"embedding_host"`

	// EmbeddingModel is the remote model identifier.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string `yaml:"embedding_model"`

	// APIToken is sent to the remote service. Local servers accept "none".
	APIToken string `yaml:"api_token"`

	// ModelID namespaces cached embeddings. Derived from the model when empty.
	ModelID string `yaml:"model_id"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithBackend selects the backend.
func WithBackend(kind BackendKind) ConfigOption {
	return func(c *Config) {
		c.Backend = kind
	}
}

// WithModelPath sets the ONNX graph path.
func WithModelPath(path string) ConfigOption {
	return func(c *Config) {
		c.ModelPath = path
	}
}

// WithVocabularyPath sets the vocabulary path.
func WithVocabularyPath(path string) ConfigOption {
	return func(c *Config) {
		c.VocabularyPath = path
	}
}

// WithRuntimeLibraryPath sets the onnxruntime shared library path.
func WithRuntimeLibraryPath(path string) ConfigOption {
	return func(c *Config) {
		c.RuntimeLibraryPath = path
	}
}

// WithOutputName sets the graph output name.
func WithOutputName(name string) ConfigOption {
	return func(c *Config) {
		c.OutputName = name
	}
}

// WithHiddenSize sets the token embedding width.
func WithHiddenSize(size int) ConfigOption {
	return func(c *Config) {
		c.HiddenSize = size
	}
}

// WithMaxSequenceLength sets the tokenizer length. Zero selects unbounded mode.
func WithMaxSequenceLength(n int) ConfigOption {
	return func(c *Config) {
		c.MaxSequenceLength = n
	}
}

// WithEmbeddingHost sets the remote embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the remote embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithAPIToken sets the token sent to the remote service.
func WithAPIToken(token string) ConfigOption {
	return func(c *Config) {
		c.APIToken = token
	}
}

// WithModelID sets the cache namespace explicitly.
func WithModelID(id string) ConfigOption {
	return func(c *Config) {
		c.ModelID = id
	}
}

// DefaultConfig returns a Config for a local all-MiniLM-L6-v2 export.
func DefaultConfig() *Config {
	return &Config{
		Backend:           BackendONNX,
		ModelPath:         "models/all-MiniLM-L6-v2/model.onnx",
		VocabularyPath:    "models/all-MiniLM-L6-v2/vocab.txt",
		OutputName:        "last_hidden_state",
		HiddenSize:        384,
		MaxSequenceLength: 128,
		EmbeddingHost:     "http://localhost:11434/v1",
		EmbeddingModel:    "all-minilm",
		APIToken:          "none",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithBackend(BackendOpenAI),
//	    WithEmbeddingHost("http://localhost:11434"),
//	    WithEmbeddingModel("all-minilm"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// The remote host gets a /v1 suffix, which OpenAI-compatible servers
// (Ollama, LocalAI, vLLM) expect, and ModelID is derived when empty.
func (c *Config) Normalize() {
	c.Backend = BackendKind(strings.ToLower(string(c.Backend)))
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
	if c.ModelID == "" {
		switch c.Backend {
		case BackendONNX:
			if c.ModelPath != "" {
				c.ModelID = filepath.Base(c.ModelPath)
			}
		case BackendOpenAI:
			c.ModelID = c.EmbeddingModel
		}
	}
}

// Validate checks that the configuration is complete for the selected backend.
// It normalizes the configuration first.
func (c *Config) Validate() error {
	c.Normalize()

	if c.MaxSequenceLength < 0 || c.MaxSequenceLength == 1 {
		return errors.New("ai config: MaxSequenceLength must be 0 or at least 2")
	}

	switch c.Backend {
	case BackendONNX:
		if c.ModelPath == "" {
			return errors.New("ai config: ModelPath is required")
		}
		if c.VocabularyPath == "" {
			return errors.New("ai config: VocabularyPath is required")
		}
		if c.OutputName == "" {
			return errors.New("ai config: OutputName is required")
		}
		if c.HiddenSize <= 0 {
			return errors.New("ai config: HiddenSize must be positive")
		}
	case BackendOpenAI:
		if c.EmbeddingHost == "" {
			return errors.New("ai config: EmbeddingHost is required")
		}
		if c.EmbeddingModel == "" {
			return errors.New("ai config: EmbeddingModel is required")
		}
	default:
		return fmt.Errorf("ai config: unknown backend %q", c.Backend)
	}
	return nil
}
