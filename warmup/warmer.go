package warmup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/core"
)

const (
	DefaultBatchSize = 16
	DefaultWorkers   = 1
)

// ErrEmbedderRequired is returned when an embedder is not provided.
var ErrEmbedderRequired = errors.New("embedder required")

// Warmer embeds sentences ahead of time.
type Warmer struct {
	embedder  ai.Embedder
	batchSize int
	workers   int
	progress  io.Writer
	logger    *slog.Logger
	pool      *ants.Pool
}

// Option configures a Warmer.
type Option func(*Warmer) error

// WithBatchSize sets how many sentences are embedded per call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(w *Warmer) error {
		if size < 1 {
			size = 1
		}
		w.batchSize = size
		return nil
	}
}

// WithWorkers sets how many batches are embedded concurrently.
// Default is DefaultWorkers, which keeps one embedding in flight.
func WithWorkers(n int) Option {
	return func(w *Warmer) error {
		if n < 1 {
			n = 1
		}
		w.workers = n
		return nil
	}
}

// WithProgress writes progress lines to writer.
func WithProgress(writer io.Writer) Option {
	return func(w *Warmer) error {
		w.progress = writer
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(w *Warmer) error {
		if logger == nil {
			logger = slog.Default()
		}
		w.logger = logger
		return nil
	}
}

// NewWarmer creates a warmer. embedder should be cache-backed, otherwise
// the work is discarded.
func NewWarmer(embedder ai.Embedder, opts ...Option) (*Warmer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	w := &Warmer{
		embedder:  embedder,
		batchSize: DefaultBatchSize,
		workers:   DefaultWorkers,
		progress:  io.Discard,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(w); err != nil {
			return nil, err
		}
	}
	w.logger = w.logger.With("component", "warmup")

	pool, err := ants.NewPool(w.workers, ants.WithLogger(core.PrintfLogger{Logger: w.logger}))
	if err != nil {
		return nil, err
	}
	w.pool = pool
	return w, nil
}

// Run embeds sentences batch by batch and returns how many were embedded.
// Remaining batches are skipped after the first failure or when ctx is done.
func (w *Warmer) Run(ctx context.Context, sentences []string) (int, error) {
	tracker := NewProgressTracker(w.progress, len(sentences), w.batchSize, "sentences")
	tracker.Start()
	defer tracker.Finish()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	for start := 0; start < len(sentences); start += w.batchSize {
		if ctx.Err() != nil {
			break
		}
		batch := sentences[start:min(start+w.batchSize, len(sentences))]
		wg.Add(1)
		err := w.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			if _, err := w.embedder.EmbedTexts(ctx, batch); err != nil {
				w.logger.Error("batch failed", "size", len(batch), "err", err)
				fail(fmt.Errorf("embedding batch at %d: %w", start, err))
				return
			}
			tracker.Increment(len(batch))
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	done := tracker.Current()
	if firstErr == nil && done < len(sentences) {
		firstErr = ctx.Err()
	}
	w.logger.Info("warmup finished", "embedded", done, "total", len(sentences), "elapsed", tracker.Elapsed())
	return done, firstErr
}

// Release stops the worker pool.
func (w *Warmer) Release() {
	w.pool.Release()
}
