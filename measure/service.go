package measure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/corpus"
	"github.com/poiesic/sentsim/keyword"
	"github.com/poiesic/sentsim/ranking"
)

// Service measures queries against a sentence store.
type Service struct {
	store     *corpus.Store
	scorer    ai.Scorer
	extractor *keyword.Extractor
	observer  Observer
	alpha     float64
	threshold float64
	logger    *slog.Logger

	busy atomic.Bool
	pool *ants.Pool
	runs sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithObserver sets the event observer.
func WithObserver(observer Observer) Option {
	return func(s *Service) error {
		if observer == nil {
			observer = &noopObserver{}
		}
		s.observer = observer
		return nil
	}
}

// WithAlpha sets the keyword share of the combined score.
// Default is ranking.DefaultAlpha.
func WithAlpha(alpha float64) Option {
	return func(s *Service) error {
		if err := ranking.ValidateAlpha(alpha); err != nil {
			return err
		}
		s.alpha = alpha
		return nil
	}
}

// WithThreshold sets the minimum combined score of the best result.
// Default is ranking.DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(s *Service) error {
		if err := ranking.ValidateThreshold(threshold); err != nil {
			return err
		}
		s.threshold = threshold
		return nil
	}
}

// WithExtractor replaces the default keyword extractor.
func WithExtractor(extractor *keyword.Extractor) Option {
	return func(s *Service) error {
		s.extractor = extractor
		return nil
	}
}

// NewService creates a measurement service over store.
func NewService(store *corpus.Store, provider ai.Provider, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrProviderRequired
	}

	s := &Service{
		store:     store,
		scorer:    provider.Scorer(),
		observer:  &noopObserver{},
		alpha:     ranking.DefaultAlpha,
		threshold: ranking.DefaultThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.extractor == nil {
		extractor, err := keyword.NewExtractor(keyword.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.extractor = extractor
	}
	s.logger = s.logger.With("component", "measure")

	// The busy flag admits a single run. The second worker lets an observer
	// start the next run from the terminal event of the previous one.
	pool, err := ants.NewPool(2,
		ants.WithNonblocking(true),
		ants.WithLogger(core.PrintfLogger{Logger: s.logger}),
		ants.WithPanicHandler(func(p any) {
			s.logger.Error("measurement worker panicked", "panic", p)
		}),
	)
	if err != nil {
		return nil, err
	}
	s.pool = pool
	return s, nil
}

// State reports whether a measurement is in flight.
func (s *Service) State() State {
	if s.busy.Load() {
		return Measuring
	}
	return Idle
}

// Measure starts measuring query in the background and returns once the
// request is accepted or rejected. The outcome of an accepted request is
// reported to the Observer. ctx values are kept but its cancellation is
// ignored once the run starts.
func (s *Service) Measure(ctx context.Context, query string) error {
	session, err := s.begin(query)
	if err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	s.runs.Add(1)
	err = s.pool.Submit(func() {
		defer s.runs.Done()
		s.finish(s.safeRun(ctx, session))
	})
	if err != nil {
		s.runs.Done()
		s.logger.Error("failed to start measurement", "err", err)
		s.finish(nil, err)
		return err
	}
	return nil
}

// MeasureSync measures query on the calling goroutine. Events are reported
// exactly as for Measure.
func (s *Service) MeasureSync(ctx context.Context, query string) ([]core.SimilarityResult, error) {
	session, err := s.begin(query)
	if err != nil {
		return nil, err
	}
	results, err := s.safeRun(ctx, session)
	s.finish(results, err)
	return results, err
}

// safeRun is run with a panic reported as an inference failure.
func (s *Service) safeRun(ctx context.Context, session *core.MeasurementSession) (results []core.SimilarityResult, err error) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("measurement panicked", "query", session.Query, "panic", p)
			results, err = nil, fmt.Errorf("%w: panic: %v", core.ErrInferenceFailure, p)
		}
	}()
	return s.run(ctx, session)
}

// begin moves Idle to Measuring and snapshots the corpus.
func (s *Service) begin(query string) (*core.MeasurementSession, error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.logger.Warn("measurement rejected while busy", "query", query)
		s.observer.MeasureFail(core.ErrBusy)
		return nil, core.ErrBusy
	}

	sentences := s.store.Sentences()
	err := core.ValidateQuery(query)
	if err == nil {
		err = core.ValidateCorpus(sentences)
	}
	if err != nil {
		s.busy.Store(false)
		s.observer.MeasureFail(err)
		return nil, err
	}

	session := &core.MeasurementSession{
		Query:     query,
		Corpus:    sentences,
		StartedAt: time.Now(),
	}
	s.logger.Debug("measurement started", "query", query, "corpus", len(sentences))
	s.observer.MeasureBegin(query)
	return session, nil
}

// finish returns to Idle and reports the outcome.
func (s *Service) finish(results []core.SimilarityResult, err error) {
	s.busy.Store(false)
	if err != nil {
		s.observer.MeasureFail(err)
		return
	}
	s.observer.MeasureSuccess(results)
}

func (s *Service) run(ctx context.Context, session *core.MeasurementSession) ([]core.SimilarityResult, error) {
	session.Stripped = keyword.StripNegations(session.Query)
	keywords := s.extractor.Extract(session.Stripped)

	candidates := selectCandidates(session.Corpus, keywords)
	session.Candidates = make([]string, len(candidates))
	session.Weights = make(map[string]float64, len(candidates))
	for i, c := range candidates {
		session.Candidates[i] = c.Sentence
		session.Weights[c.Sentence] = c.Weight
	}
	s.logger.Debug("candidates selected",
		"stripped", session.Stripped,
		"keywords", len(keywords),
		"candidates", len(candidates))

	scores, err := s.scorer.ScoreAll(ctx, session.Query, session.Candidates)
	if err != nil {
		s.logger.Error("scoring failed", "err", err)
		if !errors.Is(err, core.ErrInferenceFailure) {
			err = fmt.Errorf("%w: %w", core.ErrInferenceFailure, err)
		}
		return nil, err
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("%w: expected %d scores, got %d", core.ErrInferenceFailure, len(candidates), len(scores))
	}
	for i := range candidates {
		candidates[i].Similarity = scores[i]
	}

	results := ranking.Combine(candidates, s.alpha)
	if err := ranking.Gate(results, s.threshold); err != nil {
		s.logger.Info("no sentence above threshold", "query", session.Query, "best", bestScore(results), "threshold", s.threshold)
		return nil, err
	}

	s.logger.Info("measurement complete",
		"query", session.Query,
		"best", results[0].Sentence,
		"score", results[0].Accuracy,
		"elapsed", time.Since(session.StartedAt))
	return results, nil
}

func bestScore(results []core.SimilarityResult) float64 {
	if len(results) == 0 {
		return 0
	}
	return results[0].Accuracy
}

// Register adds sentence to the store and reports the outcome.
func (s *Service) Register(ctx context.Context, sentence string) error {
	if err := s.store.Register(ctx, sentence); err != nil {
		s.logger.Warn("register failed", "sentence", sentence, "err", err)
		s.observer.RegisterFail(sentence, err)
		return err
	}
	s.observer.RegisterSuccess(sentence)
	return nil
}

// Delete removes sentence from the store and reports the outcome.
func (s *Service) Delete(ctx context.Context, sentence string) error {
	if err := s.store.Delete(ctx, sentence); err != nil {
		s.logger.Warn("delete failed", "sentence", sentence, "err", err)
		s.observer.DeleteFail(sentence, err)
		return err
	}
	s.observer.DeleteSuccess(sentence)
	return nil
}

// Close waits for an in-flight measurement and stops the worker.
// The store and provider are not closed.
func (s *Service) Close() error {
	s.runs.Wait()
	s.pool.Release()
	return nil
}
