package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/storage"
)

// EmbeddingCache implements storage.EmbeddingCache for BadgerDB.
type EmbeddingCache struct {
	backend *Backend
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache creates a new EmbeddingCache.
func NewEmbeddingCache(backend *Backend) *EmbeddingCache {
	return &EmbeddingCache{backend: backend}
}

// GetEmbedding retrieves a cached vector.
func (c *EmbeddingCache) GetEmbedding(ctx context.Context, key core.ID) ([]float32, error) {
	var vector []float32
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeEmbeddingKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vector, err = storage.UnmarshalVector(val)
			return err
		})
	}, false)
	return vector, err
}

// PutEmbedding stores a vector.
func (c *EmbeddingCache) PutEmbedding(ctx context.Context, key core.ID, vector []float32) error {
	return c.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeEmbeddingKey(key), storage.MarshalVector(vector)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// PurgeEmbeddings deletes every cached vector.
func (c *EmbeddingCache) PurgeEmbeddings(ctx context.Context) (int, error) {
	var count int
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		keys := collectKeys(tx, []byte(embeddingPrefix))
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		count = len(keys)
		return tx.Commit()
	}, true)
	return count, err
}
