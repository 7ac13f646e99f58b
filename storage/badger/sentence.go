package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/sentsim/core"
	"github.com/poiesic/sentsim/storage"
)

// SentenceRepository implements storage.SentenceRepository for BadgerDB.
type SentenceRepository struct {
	backend *Backend
}

var _ storage.SentenceRepository = (*SentenceRepository)(nil)

// NewSentenceRepository creates a new SentenceRepository.
func NewSentenceRepository(backend *Backend) *SentenceRepository {
	return &SentenceRepository{backend: backend}
}

// Close is a no-op; the backend is closed by its owner.
func (r *SentenceRepository) Close() error {
	return nil
}

// LoadSentences returns the saved sentences in position order.
func (r *SentenceRepository) LoadSentences(ctx context.Context) ([]string, error) {
	records, err := r.loadRecords()
	if err != nil {
		return nil, err
	}
	sentences := make([]string, len(records))
	for i, record := range records {
		sentences[i] = record.Text
	}
	return sentences, nil
}

// SaveSentences replaces the saved corpus in one transaction.
// Sentences that were already saved keep their original InsertedAt.
func (r *SentenceRepository) SaveSentences(ctx context.Context, sentences []string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		previous, err := readRecords(tx)
		if err != nil {
			return err
		}
		insertedAt := make(map[core.ID]time.Time, len(previous))
		for _, record := range previous {
			insertedAt[record.Id] = record.InsertedAt
			if err := tx.Delete(makeSentenceKey(record.Position)); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		for i, sentence := range sentences {
			record := &core.SentenceRecord{
				Id:         core.IDFromContent(sentence),
				Position:   int64(i),
				Text:       sentence,
				InsertedAt: now,
			}
			if ts, ok := insertedAt[record.Id]; ok {
				record.InsertedAt = ts
			}
			if err := tx.Set(makeSentenceKey(record.Position), storage.MarshalSentenceRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Records returns the saved sentence records in position order.
func (r *SentenceRepository) Records(ctx context.Context) ([]*core.SentenceRecord, error) {
	return r.loadRecords()
}

func (r *SentenceRepository) loadRecords() ([]*core.SentenceRecord, error) {
	var records []*core.SentenceRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		records, err = readRecords(tx)
		return err
	}, false)
	return records, err
}

func readRecords(tx *badger.Txn) ([]*core.SentenceRecord, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(sentenceRecordPrefix)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	var records []*core.SentenceRecord
	for iter.Rewind(); iter.Valid(); iter.Next() {
		var record *core.SentenceRecord
		err := iter.Item().Value(func(val []byte) error {
			var err error
			record, err = storage.UnmarshalSentenceRecord(val)
			return err
		})
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
