package measure

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/sentsim/ai"
	"github.com/poiesic/sentsim/ai/mock"
	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/corpus"
	"github.com/poiesic/sentsim/embedding"
	"github.com/poiesic/sentsim/storage/badger"
	"github.com/poiesic/sentsim/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder logs every event and signals terminal measurement events on done.
type recorder struct {
	mu      sync.Mutex
	events  []string
	results []core.SimilarityResult
	done    chan error
}

func newRecorder() *recorder {
	return &recorder{done: make(chan error, 8)}
}

func (r *recorder) add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recorder) MeasureBegin(query string) { r.add("begin:" + query) }

func (r *recorder) MeasureSuccess(results []core.SimilarityResult) {
	r.mu.Lock()
	r.results = results
	r.mu.Unlock()
	r.add("success")
	r.done <- nil
}

func (r *recorder) MeasureFail(err error) {
	r.add("fail")
	r.done <- err
}

func (r *recorder) RegisterSuccess(sentence string)       { r.add("registered:" + sentence) }
func (r *recorder) RegisterFail(sentence string, _ error) { r.add("register-failed:" + sentence) }
func (r *recorder) DeleteSuccess(sentence string)         { r.add("deleted:" + sentence) }
func (r *recorder) DeleteFail(sentence string, _ error)   { r.add("delete-failed:" + sentence) }

func (r *recorder) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for measurement")
		return nil
	}
}

// newTestProvider embeds with a one-hot mock backend, so similarity is the
// cosine of token bags.
func newTestProvider(t *testing.T) (ai.Provider, *mock.MockScorer) {
	t.Helper()
	vocab, err := tokenizer.NewVocabulary([]string{
		"[PAD]", "[UNK]", "[CLS]", "[SEP]",
		"i", "love", "cats", "dogs", "adore", "stock", "market", "crash", "##ed",
	})
	require.NoError(t, err)
	tok, err := tokenizer.New(vocab)
	require.NoError(t, err)
	pipeline, err := embedding.NewPipeline(tok, mock.NewMockBackend(16))
	require.NoError(t, err)
	inner, err := embedding.NewScorer(pipeline)
	require.NoError(t, err)

	spy := mock.NewMockScorer(pipeline)
	spy.ScoreAllFunc = inner.ScoreAll
	return mock.NewMockProviderWithServices(pipeline, spy), spy
}

func newTestStore(t *testing.T, sentences ...string) *corpus.Store {
	t.Helper()
	repo, _, db, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	store, err := corpus.NewStore(context.Background(), repo)
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
		db.Close()
	})
	for _, s := range sentences {
		require.NoError(t, store.Register(context.Background(), s))
	}
	return store
}

var pets = []string{"I love cats", "I love dogs", "the stock market crashed"}

func TestNewService(t *testing.T) {
	provider, _ := newTestProvider(t)
	store := newTestStore(t)

	_, err := NewService(nil, provider)
	assert.Equal(t, ErrStoreRequired, err)

	_, err = NewService(store, nil)
	assert.Equal(t, ErrProviderRequired, err)

	_, err = NewService(store, provider, WithAlpha(2))
	assert.ErrorIs(t, err, core.ErrValidation)

	_, err = NewService(store, provider, WithThreshold(-1))
	assert.ErrorIs(t, err, core.ErrValidation)

	svc, err := NewService(store, provider, WithObserver(nil), WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, Idle, svc.State())
	assert.NoError(t, svc.Close())
}

func TestMeasureSync(t *testing.T) {
	ctx := context.Background()

	t.Run("fallback to whole corpus", func(t *testing.T) {
		provider, spy := newTestProvider(t)
		rec := newRecorder()
		svc, err := NewService(newTestStore(t, pets...), provider, WithObserver(rec))
		require.NoError(t, err)
		defer svc.Close()

		results, err := svc.MeasureSync(ctx, "I adore cats")
		require.NoError(t, err)

		assert.Equal(t, pets, spy.LastCandidates())
		require.Len(t, results, 3)
		assert.Equal(t, "I love cats", results[0].Sentence)
		assert.InDelta(t, 0.85, results[0].Accuracy, 1e-5)
		assert.Equal(t, "I love dogs", results[1].Sentence)
		assert.InDelta(t, 0.6375, results[1].Accuracy, 1e-5)
		assert.Equal(t, "the stock market crashed", results[2].Sentence)

		assert.Equal(t, []string{"begin:I adore cats", "success"}, rec.Events())
		assert.Equal(t, Idle, svc.State())
	})

	t.Run("keywords narrow candidates", func(t *testing.T) {
		provider, spy := newTestProvider(t)
		svc, err := NewService(newTestStore(t, pets...), provider)
		require.NoError(t, err)
		defer svc.Close()

		results, err := svc.MeasureSync(ctx, "dogs")
		require.NoError(t, err)

		assert.Equal(t, []string{"I love dogs"}, spy.LastCandidates())
		require.Len(t, results, 1)
		assert.InDelta(t, 1.0, results[0].Accuracy, 1e-6)
	})

	t.Run("negated clause is ignored", func(t *testing.T) {
		provider, spy := newTestProvider(t)
		svc, err := NewService(newTestStore(t, pets...), provider)
		require.NoError(t, err)
		defer svc.Close()

		_, err = svc.MeasureSync(ctx, "cats, I don't like dogs.")
		require.NoError(t, err)
		assert.Equal(t, []string{"I love cats"}, spy.LastCandidates())
	})

	t.Run("threshold not met", func(t *testing.T) {
		provider, _ := newTestProvider(t)
		rec := newRecorder()
		svc, err := NewService(newTestStore(t, pets...), provider, WithObserver(rec), WithThreshold(0.9))
		require.NoError(t, err)
		defer svc.Close()

		results, err := svc.MeasureSync(ctx, "I adore cats")
		assert.ErrorIs(t, err, core.ErrThresholdNotMet)
		assert.Nil(t, results)
		assert.Equal(t, []string{"begin:I adore cats", "fail"}, rec.Events())
	})

	t.Run("validation failures are not begun", func(t *testing.T) {
		provider, _ := newTestProvider(t)
		rec := newRecorder()
		svc, err := NewService(newTestStore(t), provider, WithObserver(rec))
		require.NoError(t, err)
		defer svc.Close()

		_, err = svc.MeasureSync(ctx, "I adore cats")
		assert.ErrorIs(t, err, core.ErrEmptyStore)

		_, err = svc.MeasureSync(ctx, "   ")
		assert.ErrorIs(t, err, core.ErrEmptyQuery)

		assert.Equal(t, []string{"fail", "fail"}, rec.Events())
		assert.Equal(t, Idle, svc.State())
	})

	t.Run("scorer errors are inference failures", func(t *testing.T) {
		provider, spy := newTestProvider(t)
		spy.ScoreAllFunc = func(context.Context, string, []string) ([]float32, error) {
			return nil, errors.New("backend exploded")
		}
		svc, err := NewService(newTestStore(t, pets...), provider)
		require.NoError(t, err)
		defer svc.Close()

		_, err = svc.MeasureSync(ctx, "I adore cats")
		assert.ErrorIs(t, err, core.ErrInferenceFailure)
		assert.Equal(t, Idle, svc.State())
	})

	t.Run("short score list", func(t *testing.T) {
		provider, spy := newTestProvider(t)
		spy.ScoreAllFunc = func(context.Context, string, []string) ([]float32, error) {
			return []float32{1}, nil
		}
		svc, err := NewService(newTestStore(t, pets...), provider)
		require.NoError(t, err)
		defer svc.Close()

		_, err = svc.MeasureSync(ctx, "I adore cats")
		assert.ErrorIs(t, err, core.ErrInferenceFailure)
	})
}

func TestScorerPanic(t *testing.T) {
	ctx := context.Background()
	newPanicking := func(t *testing.T) (*Service, *recorder) {
		provider, spy := newTestProvider(t)
		spy.ScoreAllFunc = func(context.Context, string, []string) ([]float32, error) {
			panic("tensor freed twice")
		}
		rec := newRecorder()
		svc, err := NewService(newTestStore(t, pets...), provider, WithObserver(rec))
		require.NoError(t, err)
		t.Cleanup(func() { svc.Close() })
		return svc, rec
	}

	t.Run("sync run returns to idle", func(t *testing.T) {
		svc, rec := newPanicking(t)

		results, err := svc.MeasureSync(ctx, "I adore cats")
		assert.Nil(t, results)
		assert.ErrorIs(t, err, core.ErrInferenceFailure)
		assert.ErrorContains(t, err, "tensor freed twice")
		assert.Equal(t, Idle, svc.State())
		assert.Equal(t, []string{"begin:I adore cats", "fail"}, rec.Events())
	})

	t.Run("async run reports one failure", func(t *testing.T) {
		svc, rec := newPanicking(t)

		require.NoError(t, svc.Measure(ctx, "I adore cats"))
		assert.ErrorIs(t, rec.wait(t), core.ErrInferenceFailure)
		assert.Equal(t, Idle, svc.State())
		assert.Equal(t, []string{"begin:I adore cats", "fail"}, rec.Events())
	})

	t.Run("service recovers after a panic", func(t *testing.T) {
		provider, spy := newTestProvider(t)
		healthy := spy.ScoreAllFunc
		spy.ScoreAllFunc = func(context.Context, string, []string) ([]float32, error) {
			panic("boom")
		}
		svc, err := NewService(newTestStore(t, pets...), provider)
		require.NoError(t, err)
		defer svc.Close()

		_, err = svc.MeasureSync(ctx, "I adore cats")
		require.ErrorIs(t, err, core.ErrInferenceFailure)

		spy.ScoreAllFunc = healthy
		results, err := svc.MeasureSync(ctx, "I adore cats")
		require.NoError(t, err)
		assert.Equal(t, "I love cats", results[0].Sentence)
	})
}

func TestMeasureAsync(t *testing.T) {
	ctx := context.Background()

	t.Run("completes through the observer", func(t *testing.T) {
		provider, _ := newTestProvider(t)
		rec := newRecorder()
		svc, err := NewService(newTestStore(t, pets...), provider, WithObserver(rec))
		require.NoError(t, err)
		defer svc.Close()

		require.NoError(t, svc.Measure(ctx, "I adore cats"))
		require.NoError(t, rec.wait(t))

		rec.mu.Lock()
		defer rec.mu.Unlock()
		require.NotEmpty(t, rec.results)
		assert.Equal(t, "I love cats", rec.results[0].Sentence)
	})

	t.Run("busy requests are rejected", func(t *testing.T) {
		provider, spy := newTestProvider(t)
		release := make(chan struct{})
		started := make(chan struct{})
		var scored []string
		spy.ScoreAllFunc = func(_ context.Context, _ string, candidates []string) ([]float32, error) {
			scored = append([]string(nil), candidates...)
			close(started)
			<-release
			scores := make([]float32, len(candidates))
			for i := range scores {
				scores[i] = 1
			}
			return scores, nil
		}

		rec := newRecorder()
		svc, err := NewService(newTestStore(t, pets...), provider, WithObserver(rec))
		require.NoError(t, err)
		defer svc.Close()

		require.NoError(t, svc.Measure(ctx, "first"))
		<-started
		assert.Equal(t, Measuring, svc.State())

		err = svc.Measure(ctx, "second")
		assert.ErrorIs(t, err, core.ErrBusy)
		assert.ErrorIs(t, rec.wait(t), core.ErrBusy)

		_, err = svc.MeasureSync(ctx, "third")
		assert.ErrorIs(t, err, core.ErrBusy)
		assert.ErrorIs(t, rec.wait(t), core.ErrBusy)

		// Store changes while running do not reach the in-flight session.
		require.NoError(t, svc.Register(ctx, "I love birds"))
		require.NoError(t, svc.Delete(ctx, "I love dogs"))

		close(release)
		require.NoError(t, rec.wait(t))
		assert.Equal(t, Idle, svc.State())
		assert.Equal(t, pets, scored)

		rec.mu.Lock()
		ranked := make([]string, len(rec.results))
		for i, r := range rec.results {
			ranked[i] = r.Sentence
		}
		rec.mu.Unlock()
		assert.Equal(t, pets, ranked)

		assert.Equal(t, []string{
			"begin:first", "fail", "fail",
			"registered:I love birds", "deleted:I love dogs",
			"success",
		}, rec.Events())
	})

	t.Run("cancelled context does not abort the run", func(t *testing.T) {
		provider, _ := newTestProvider(t)
		rec := newRecorder()
		svc, err := NewService(newTestStore(t, pets...), provider, WithObserver(rec))
		require.NoError(t, err)
		defer svc.Close()

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		require.NoError(t, svc.Measure(cctx, "I adore cats"))
		assert.NoError(t, rec.wait(t))
	})

	t.Run("observer may start the next measurement", func(t *testing.T) {
		provider, _ := newTestProvider(t)
		chain := &chainingObserver{recorder: newRecorder()}
		svc, err := NewService(newTestStore(t, pets...), provider, WithObserver(chain))
		require.NoError(t, err)
		chain.svc = svc
		defer svc.Close()

		require.NoError(t, svc.Measure(ctx, "I adore cats"))
		require.NoError(t, chain.wait(t))
		require.NoError(t, chain.wait(t))
		assert.NoError(t, chain.nextErr)
	})
}

// chainingObserver starts one more measurement from its first success.
type chainingObserver struct {
	*recorder
	svc     *Service
	once    sync.Once
	nextErr error
}

func (c *chainingObserver) MeasureSuccess(results []core.SimilarityResult) {
	c.once.Do(func() {
		c.nextErr = c.svc.Measure(context.Background(), "I love dogs")
	})
	c.recorder.MeasureSuccess(results)
}

func TestRegisterAndDelete(t *testing.T) {
	ctx := context.Background()
	provider, _ := newTestProvider(t)
	rec := newRecorder()
	svc, err := NewService(newTestStore(t), provider, WithObserver(rec))
	require.NoError(t, err)
	defer svc.Close()

	require.NoError(t, svc.Register(ctx, "I love cats"))
	assert.ErrorIs(t, svc.Register(ctx, "I love cats"), core.ErrDuplicateSentence)
	require.NoError(t, svc.Delete(ctx, "I love cats"))
	assert.ErrorIs(t, svc.Delete(ctx, "I love cats"), core.ErrSentenceNotFound)

	assert.Equal(t, []string{
		"registered:I love cats",
		"register-failed:I love cats",
		"deleted:I love cats",
		"delete-failed:I love cats",
	}, rec.Events())
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	provider, _ := newTestProvider(t)
	store := newTestStore(t, pets...)
	svc, err := NewService(store, provider)
	require.NoError(t, err)
	defer svc.Close()

	for i := range 3 {
		results, err := svc.MeasureSync(ctx, "I adore cats")
		require.NoError(t, err, fmt.Sprintf("round %d", i))
		assert.Equal(t, "I love cats", results[0].Sentence)
	}
}
