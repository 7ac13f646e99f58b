package sentsim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/sentsim/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 100, cfg.Capacity)
	assert.Equal(t, 0.15, cfg.Alpha)
	assert.Equal(t, 0.7, cfg.Threshold)
	assert.Equal(t, ai.BackendONNX, cfg.AI.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	t.Run("overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sentsim.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
db: /var/lib/sentsim
threshold: 0.5
ai:
  backend: openai
  embedding_host: http://embeddings:8080
  embedding_model: nomic-embed-text
`), 0o644))

		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/sentsim", cfg.DBPath)
		assert.Equal(t, 0.5, cfg.Threshold)
		assert.Equal(t, 0.15, cfg.Alpha)
		assert.Equal(t, 100, cfg.Capacity)
		assert.Equal(t, ai.BackendOpenAI, cfg.AI.Backend)
		assert.Equal(t, "none", cfg.AI.APIToken)

		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://embeddings:8080/v1", cfg.AI.EmbeddingHost)
		assert.Equal(t, "nomic-embed-text", cfg.AI.ModelID)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("capacity: [1, 2"), 0o644))
		_, err := LoadConfig(path)
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no db path", func(c *Config) { c.DBPath = "" }},
		{"zero capacity", func(c *Config) { c.Capacity = 0 }},
		{"alpha above one", func(c *Config) { c.Alpha = 1.5 }},
		{"negative threshold", func(c *Config) { c.Threshold = -0.1 }},
		{"negative min chars", func(c *Config) { c.MinCharLength = -1 }},
		{"zero max words", func(c *Config) { c.MaxWordsLength = 0 }},
		{"unknown backend", func(c *Config) { c.AI.Backend = "tpu" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
