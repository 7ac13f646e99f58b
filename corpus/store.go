package corpus

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/storage"
)

// DefaultCapacity is the maximum number of sentences a Store holds unless configured.
const DefaultCapacity = 100

// Store is the in-memory sentence corpus. It is safe for concurrent use.
type Store struct {
	repo     storage.SentenceRepository
	capacity int
	logger   *slog.Logger

	mu        sync.RWMutex
	sentences []string
	closed    bool

	savePool  *ants.Pool
	saves     sync.WaitGroup
	saveMu    sync.Mutex
	version   uint64
	persisted uint64
	saveErr   error
}

// Option configures a Store.
type Option func(*Store) error

// WithCapacity sets the maximum number of sentences.
// Default is DefaultCapacity.
func WithCapacity(capacity int) Option {
	return func(s *Store) error {
		if capacity < 1 {
			return ErrInvalidCapacity
		}
		s.capacity = capacity
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewStore loads the persisted corpus from repo. Blank and duplicate
// sentences are skipped and anything beyond capacity is dropped, each with
// a warning.
func NewStore(ctx context.Context, repo storage.SentenceRepository, opts ...Option) (*Store, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Store{
		repo:     repo,
		capacity: DefaultCapacity,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "sentence-store")

	loaded, err := repo.LoadSentences(ctx)
	if err != nil {
		return nil, err
	}
	s.sentences = make([]string, 0, min(len(loaded), s.capacity))
	for _, sentence := range loaded {
		switch {
		case core.ValidateSentence(sentence) != nil:
			s.logger.Warn("skipping blank persisted sentence")
		case slices.Contains(s.sentences, sentence):
			s.logger.Warn("skipping duplicate persisted sentence", "sentence", sentence)
		case len(s.sentences) >= s.capacity:
			s.logger.Warn("dropping persisted sentence beyond capacity", "sentence", sentence, "capacity", s.capacity)
		default:
			s.sentences = append(s.sentences, sentence)
		}
	}

	// Single worker keeps saves ordered.
	pool, err := ants.NewPool(1, ants.WithLogger(core.PrintfLogger{Logger: s.logger}))
	if err != nil {
		return nil, err
	}
	s.savePool = pool

	s.logger.Info("sentence store loaded", "count", len(s.sentences), "capacity", s.capacity)
	return s, nil
}

// Sentences returns a copy of the corpus in registration order.
func (s *Store) Sentences() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.sentences)
}

// Len returns the number of sentences.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sentences)
}

// Capacity returns the maximum number of sentences.
func (s *Store) Capacity() int {
	return s.capacity
}

// Contains reports whether sentence is registered. Comparison is exact.
func (s *Store) Contains(sentence string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.sentences, sentence)
}

// Register appends sentence to the corpus exactly as given.
// The store is left unchanged on error.
func (s *Store) Register(ctx context.Context, sentence string) error {
	if err := core.ValidateSentence(sentence); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if slices.Contains(s.sentences, sentence) {
		s.mu.Unlock()
		return core.StoreError(core.ErrDuplicateSentence, sentence)
	}
	if len(s.sentences) >= s.capacity {
		s.mu.Unlock()
		return core.StoreError(core.ErrStoreFull, sentence)
	}
	s.sentences = append(s.sentences, sentence)
	s.mu.Unlock()

	s.logger.Debug("sentence registered", "sentence", sentence)
	s.scheduleSave(ctx)
	return nil
}

// Delete removes the entry equal to sentence. The store is left unchanged on error.
func (s *Store) Delete(ctx context.Context, sentence string) error {
	if err := core.ValidateSentence(sentence); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	i := slices.Index(s.sentences, sentence)
	if i < 0 {
		s.mu.Unlock()
		return core.StoreError(core.ErrSentenceNotFound, sentence)
	}
	s.sentences = slices.Delete(s.sentences, i, i+1)
	s.mu.Unlock()

	s.logger.Debug("sentence deleted", "sentence", sentence)
	s.scheduleSave(ctx)
	return nil
}

func (s *Store) scheduleSave(ctx context.Context) {
	s.saveMu.Lock()
	s.version++
	s.saveMu.Unlock()

	ctx = context.WithoutCancel(ctx)
	s.saves.Add(1)
	if err := s.savePool.Submit(func() {
		defer s.saves.Done()
		s.save(ctx)
	}); err != nil {
		s.saves.Done()
		s.logger.Error("failed to schedule save", "err", err)
		s.recordSaveError(err)
	}
}

// save writes the current corpus unless a newer or equal version was already written.
func (s *Store) save(ctx context.Context) {
	s.saveMu.Lock()
	version := s.version
	if version == s.persisted {
		s.saveMu.Unlock()
		return
	}
	s.saveMu.Unlock()

	snapshot := s.Sentences()
	if err := s.repo.SaveSentences(ctx, snapshot); err != nil {
		s.logger.Error("failed to save sentences", "count", len(snapshot), "err", err)
		s.recordSaveError(err)
		return
	}

	s.saveMu.Lock()
	s.persisted = max(s.persisted, version)
	s.saveMu.Unlock()
	s.logger.Debug("sentences saved", "count", len(snapshot))
}

func (s *Store) recordSaveError(err error) {
	s.saveMu.Lock()
	s.saveErr = errors.Join(s.saveErr, err)
	s.saveMu.Unlock()
}

// Flush waits for pending saves and returns any save errors since the last Flush.
func (s *Store) Flush() error {
	s.saves.Wait()
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	err := s.saveErr
	s.saveErr = nil
	return err
}

// Close flushes pending saves and stops the save worker. The repository is not closed.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.Flush()
	s.savePool.Release()
	return err
}
