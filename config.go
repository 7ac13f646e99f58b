package sentsim

import (
	"errors"
	"fmt"
	"os"

	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/corpus"
	"github.com/poiesic/sentsim/keyword"
	"github.com/poiesic/sentsim/ranking"
	"gopkg.in/yaml.v3"
)

// Config holds everything needed to open an Engine.
type Config struct {
	// DBPath is the BadgerDB directory. Ignored when InMemory is set.
	DBPath   string `yaml:"db"`
	InMemory bool   `yaml:"in_memory"`

	// Capacity is the maximum number of registered sentences.
	Capacity int `yaml:"capacity"`

	// Alpha is the keyword share of the combined score.
	Alpha float64 `yaml:"alpha"`

	// Threshold is the minimum combined score of the best sentence.
	Threshold float64 `yaml:"threshold"`

	// StopListPath overrides the built-in SMART stop list.
	StopListPath   string `yaml:"stoplist"`
	MinCharLength  int    `yaml:"min_char_length"`
	MaxWordsLength int    `yaml:"max_words_length"`

	// CacheEmbeddings stores computed vectors in the database.
	CacheEmbeddings bool `yaml:"cache_embeddings"`

	AI ai.Config `yaml:"ai"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DBPath:          "sentsim.db",
		Capacity:        corpus.DefaultCapacity,
		Alpha:           ranking.DefaultAlpha,
		Threshold:       ranking.DefaultThreshold,
		MinCharLength:   keyword.DefaultMinCharLength,
		MaxWordsLength:  keyword.DefaultMaxWordsLength,
		CacheEmbeddings: true,
		AI:              *ai.DefaultConfig(),
	}
}

// LoadConfig reads a YAML file over DefaultConfig. Keys absent from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration, normalizing the AI section.
func (c *Config) Validate() error {
	if !c.InMemory && c.DBPath == "" {
		return errors.New("config: db path is required unless in_memory is set")
	}
	if c.Capacity < 1 {
		return corpus.ErrInvalidCapacity
	}
	if err := ranking.ValidateAlpha(c.Alpha); err != nil {
		return err
	}
	if err := ranking.ValidateThreshold(c.Threshold); err != nil {
		return err
	}
	if c.MinCharLength < 0 {
		return keyword.ErrInvalidCharLength
	}
	if c.MaxWordsLength < 1 {
		return keyword.ErrInvalidWordsLimit
	}
	return c.AI.Validate()
}
