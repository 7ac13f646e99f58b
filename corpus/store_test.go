package corpus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/storage"
	"github.com/poiesic/sentsim/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.SentenceRepository {
	t.Helper()
	repo, _, db, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return repo
}

// flakyRepo fails saves while failing is set.
type flakyRepo struct {
	mu      sync.Mutex
	saved   [][]string
	failing bool
}

func (r *flakyRepo) LoadSentences(context.Context) ([]string, error) { return nil, nil }

func (r *flakyRepo) SaveSentences(_ context.Context, sentences []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("disk full")
	}
	r.saved = append(r.saved, sentences)
	return nil
}

func (r *flakyRepo) Close() error { return nil }

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewStore(ctx, nil)
		assert.Equal(t, ErrRepositoryRequired, err)
	})

	t.Run("invalid capacity", func(t *testing.T) {
		_, err := NewStore(ctx, newTestRepo(t), WithCapacity(0))
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})

	t.Run("load dedups and caps", func(t *testing.T) {
		repo := newTestRepo(t)
		require.NoError(t, repo.SaveSentences(ctx, []string{"I love cats", "I love cats", " ", "I love dogs", "stock market"}))

		store, err := NewStore(ctx, repo, WithCapacity(2))
		require.NoError(t, err)
		defer store.Close()

		assert.Equal(t, []string{"I love cats", "I love dogs"}, store.Sentences())
		assert.Equal(t, 2, store.Capacity())
	})
}

func TestStoreRegister(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, newTestRepo(t), WithCapacity(2))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Register(ctx, "I love cats"))
	assert.True(t, store.Contains("I love cats"))

	t.Run("duplicate", func(t *testing.T) {
		err := store.Register(ctx, "I love cats")
		assert.ErrorIs(t, err, core.ErrStore)
		assert.ErrorIs(t, err, core.ErrDuplicateSentence)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("empty", func(t *testing.T) {
		err := store.Register(ctx, "   ")
		assert.ErrorIs(t, err, core.ErrValidation)
		assert.Equal(t, 1, store.Len())
	})

	t.Run("full", func(t *testing.T) {
		require.NoError(t, store.Register(ctx, "I love dogs"))
		err := store.Register(ctx, "stock market")
		assert.ErrorIs(t, err, core.ErrStoreFull)
		assert.Equal(t, []string{"I love cats", "I love dogs"}, store.Sentences())
	})
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, newTestRepo(t))
	require.NoError(t, err)
	defer store.Close()

	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, store.Register(ctx, s))
	}

	require.NoError(t, store.Delete(ctx, "b"))
	assert.Equal(t, []string{"a", "c"}, store.Sentences())

	err = store.Delete(ctx, "b")
	assert.ErrorIs(t, err, core.ErrSentenceNotFound)
	assert.Equal(t, []string{"a", "c"}, store.Sentences())
}

func TestStoreMatchesExactly(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, newTestRepo(t))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Register(ctx, "x"))

	t.Run("trailing space is a distinct sentence", func(t *testing.T) {
		require.NoError(t, store.Register(ctx, "x "))
		assert.Equal(t, []string{"x", "x "}, store.Sentences())
		assert.True(t, store.Contains("x "))
		assert.False(t, store.Contains(" x"))
	})

	t.Run("deleting an absent variant leaves the store unchanged", func(t *testing.T) {
		err := store.Delete(ctx, " x")
		assert.ErrorIs(t, err, core.ErrStore)
		assert.ErrorIs(t, err, core.ErrSentenceNotFound)
		assert.Equal(t, []string{"x", "x "}, store.Sentences())
	})

	t.Run("compatibility characters are kept", func(t *testing.T) {
		require.NoError(t, store.Register(ctx, "\ufb01sh"))
		assert.True(t, store.Contains("\ufb01sh"))
		assert.False(t, store.Contains("fish"))
	})

	t.Run("delete removes only the exact entry", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "x "))
		assert.Equal(t, []string{"x", "\ufb01sh"}, store.Sentences())
	})
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	store, err := NewStore(ctx, repo)
	require.NoError(t, err)
	for _, s := range []string{"first", "second", "third"} {
		require.NoError(t, store.Register(ctx, s))
	}
	require.NoError(t, store.Delete(ctx, "second"))
	require.NoError(t, store.Close())

	reopened, err := NewStore(ctx, repo)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, []string{"first", "third"}, reopened.Sentences())
}

func TestStoreSaveFailures(t *testing.T) {
	ctx := context.Background()
	repo := &flakyRepo{failing: true}
	store, err := NewStore(ctx, repo)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Register(ctx, "a"))
	err = store.Flush()
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, []string{"a"}, store.Sentences())

	repo.mu.Lock()
	repo.failing = false
	repo.mu.Unlock()

	require.NoError(t, store.Register(ctx, "b"))
	require.NoError(t, store.Flush())

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.NotEmpty(t, repo.saved)
	assert.Equal(t, []string{"a", "b"}, repo.saved[len(repo.saved)-1])
}

func TestStoreClosed(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, newTestRepo(t))
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Register(ctx, "a"), ErrStoreClosed)
	assert.ErrorIs(t, store.Delete(ctx, "a"), ErrStoreClosed)
}
