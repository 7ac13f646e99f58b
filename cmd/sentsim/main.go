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


package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/poiesic/sentsim"
	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/keyword"
	"github.com/poiesic/sentsim/warmup"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "sentsim",
		Usage: "Rank reference sentences by similarity to a query",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file; flags override its values",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "measure",
				Usage:     "Rank registered sentences against a query",
				ArgsUsage: "QUERY",
				Action:    measureCommand,
				Flags:     engineFlags(),
			},
			{
				Name:      "register",
				Usage:     "Register reference sentences",
				ArgsUsage: "SENTENCE...",
				Action:    registerCommand,
				Flags:     engineFlags(),
			},
			{
				Name:      "delete",
				Usage:     "Delete reference sentences",
				ArgsUsage: "SENTENCE...",
				Action:    deleteCommand,
				Flags:     engineFlags(),
			},
			{
				Name:   "list",
				Usage:  "List registered sentences",
				Action: listCommand,
				Flags:  engineFlags(),
			},
			{
				Name:      "keywords",
				Usage:     "Show negation-stripped text and its RAKE key phrases",
				ArgsUsage: "TEXT",
				Action:    keywordsCommand,
				Flags:     keywordFlags(),
			},
			{
				Name:      "import",
				Usage:     "Register sentences from newline-delimited files",
				ArgsUsage: "PATTERN...",
				Action:    importCommand,
				Flags: append(engineFlags(),
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N sentences",
						Value: 10,
					},
				),
			},
			{
				Name:      "export",
				Usage:     "Write registered sentences to a newline-delimited file (- for stdout)",
				ArgsUsage: "FILE",
				Action:    exportCommand,
				Flags:     engineFlags(),
			},
			{
				Name:   "warm",
				Usage:  "Precompute cached embeddings for every registered sentence",
				Action: warmCommand,
				Flags: append(engineFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of sentences to embed per call",
						Value: warmup.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of batches embedded concurrently",
						Value: warmup.DefaultWorkers,
					},
				),
			},
		},
	}
}

func keywordFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "stoplist",
			Usage: "Stop word file overriding the built-in SMART list",
		},
		&cli.IntFlag{
			Name:  "min-char-length",
			Usage: "Drop key phrases shorter than this many characters",
			Value: keyword.DefaultMinCharLength,
		},
		&cli.IntFlag{
			Name:  "max-words-length",
			Usage: "Drop key phrases with more words than this",
			Value: keyword.DefaultMaxWordsLength,
		},
	}
}

func engineFlags() []cli.Flag {
	return append(keywordFlags(),
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   "sentsim.db",
		},
		&cli.BoolFlag{
			Name:  "in-memory",
			Usage: "Use a throwaway in-memory database",
		},
		&cli.StringFlag{
			Name:  "backend",
			Usage: "Embedding backend (onnx, openai)",
			Value: string(ai.BackendONNX),
		},
		&cli.StringFlag{
			Name:  "model",
			Usage: "ONNX sentence encoder path",
		},
		&cli.StringFlag{
			Name:  "vocab",
			Usage: "WordPiece vocabulary path",
		},
		&cli.StringFlag{
			Name:  "ort-lib",
			Usage: "onnxruntime shared library path",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "all-minilm",
		},
		&cli.IntFlag{
			Name:  "capacity",
			Usage: "Maximum number of registered sentences",
			Value: 100,
		},
		&cli.Float64Flag{
			Name:  "alpha",
			Usage: "Keyword share of the combined score",
			Value: 0.15,
		},
		&cli.Float64Flag{
			Name:  "threshold",
			Usage: "Minimum combined score of the best sentence",
			Value: 0.7,
		},
	)
}

// loadConfig reads --config when given, then applies explicitly set flags.
func loadConfig(c *cli.Context) (*sentsim.Config, error) {
	cfg := sentsim.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = sentsim.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("in-memory") {
		cfg.InMemory = c.Bool("in-memory")
	}
	if c.IsSet("stoplist") {
		cfg.StopListPath = c.String("stoplist")
	}
	if c.IsSet("min-char-length") {
		cfg.MinCharLength = c.Int("min-char-length")
	}
	if c.IsSet("max-words-length") {
		cfg.MaxWordsLength = c.Int("max-words-length")
	}
	if c.IsSet("capacity") {
		cfg.Capacity = c.Int("capacity")
	}
	if c.IsSet("alpha") {
		cfg.Alpha = c.Float64("alpha")
	}
	if c.IsSet("threshold") {
		cfg.Threshold = c.Float64("threshold")
	}
	if c.IsSet("backend") {
		cfg.AI.Backend = ai.BackendKind(c.String("backend"))
	}
	if c.IsSet("model") {
		cfg.AI.ModelPath = c.String("model")
	}
	if c.IsSet("vocab") {
		cfg.AI.VocabularyPath = c.String("vocab")
	}
	if c.IsSet("ort-lib") {
		cfg.AI.RuntimeLibraryPath = c.String("ort-lib")
	}
	if c.IsSet("embedding-host") {
		cfg.AI.EmbeddingHost = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		cfg.AI.EmbeddingModel = c.String("embedding-model")
	}
	return cfg, nil
}

func openEngine(c *cli.Context) (*sentsim.Engine, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return sentsim.New(c.Context, cfg)
}

func measureCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}

	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	results, err := engine.MeasureSync(c.Context, query)
	if err != nil {
		return err
	}
	for i, r := range results {
		fmt.Fprintf(c.App.Writer, "%2d. %.4f  %s\n", i+1, r.Accuracy, r.Sentence)
	}
	return nil
}

func registerCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one sentence is required")
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	var errs []error
	for _, sentence := range c.Args().Slice() {
		if err := engine.Register(c.Context, sentence); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "registered: %s\n", sentence)
	}
	return errors.Join(errs...)
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one sentence is required")
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	var errs []error
	for _, sentence := range c.Args().Slice() {
		if err := engine.Delete(c.Context, sentence); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(c.App.Writer, "deleted: %s\n", sentence)
	}
	return errors.Join(errs...)
}

func listCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	for i, sentence := range engine.Sentences() {
		fmt.Fprintf(c.App.Writer, "%3d  %s\n", i+1, sentence)
	}
	return nil
}

func keywordsCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	opts := []keyword.Option{
		keyword.WithMinCharLength(cfg.MinCharLength),
		keyword.WithMaxWordsLength(cfg.MaxWordsLength),
	}
	if cfg.StopListPath != "" {
		list, err := keyword.LoadStopListFile(cfg.StopListPath)
		if err != nil {
			return err
		}
		opts = append(opts, keyword.WithStopList(list))
	}
	extractor, err := keyword.NewExtractor(opts...)
	if err != nil {
		return err
	}

	stripped := keyword.StripNegations(text)
	fmt.Fprintf(c.App.Writer, "text: %s\n", stripped)
	for _, k := range extractor.Keywords(stripped) {
		fmt.Fprintf(c.App.Writer, "%8.3f  %s\n", k.Score, k.Phrase)
	}
	return nil
}

func importCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file pattern is required")
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	stats, err := importSentences(c.Context, engine, c.Args().Slice(), os.Stderr, c.Int("report-interval"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "imported %d sentences from %d files (%d skipped)\n",
		stats.imported, stats.files, stats.skipped)
	return nil
}

type registrar interface {
	Register(ctx context.Context, sentence string) error
}

type importStats struct {
	files    int
	imported int
	skipped  int
}

// importSentences registers every non-blank line of the files matching
// patterns. Duplicates are skipped; a full store ends the import.
func importSentences(ctx context.Context, r registrar, patterns []string, progress io.Writer, interval int) (importStats, error) {
	var stats importStats
	var sentences []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return stats, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			slog.Warn("pattern matched no files", "pattern", pattern)
		}
		for _, path := range matches {
			lines, err := readSentenceFile(path)
			if err != nil {
				return stats, err
			}
			stats.files++
			sentences = append(sentences, lines...)
		}
	}

	tracker := warmup.NewProgressTracker(progress, len(sentences), interval, "sentences")
	tracker.Start()
	defer tracker.Finish()

	for _, sentence := range sentences {
		err := r.Register(ctx, sentence)
		switch {
		case err == nil:
			stats.imported++
		case errors.Is(err, core.ErrDuplicateSentence):
			stats.skipped++
		default:
			return stats, err
		}
		tracker.Increment(1)
	}
	return stats, nil
}

func readSentenceFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

func exportCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one output file is required")
	}
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	path := c.Args().First()
	if path == "-" {
		return writeSentences(c.App.Writer, engine.Sentences())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeSentences(f, engine.Sentences()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeSentences(w io.Writer, sentences []string) error {
	bw := bufio.NewWriter(w)
	for _, sentence := range sentences {
		if _, err := fmt.Fprintln(bw, sentence); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func warmCommand(c *cli.Context) error {
	engine, err := openEngine(c)
	if err != nil {
		return err
	}
	defer engine.Close()

	n, err := engine.Warm(c.Context,
		warmup.WithBatchSize(c.Int("batch-size")),
		warmup.WithWorkers(c.Int("workers")),
		warmup.WithProgress(os.Stderr))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "warmed %d sentences\n", n)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
