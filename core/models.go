package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// SimilarityResult is one ranked sentence.
// Accuracy is the combined score, relative to the candidate batch it was ranked in.
type SimilarityResult struct {
	Sentence string
	Accuracy float64
}

// KeywordScore is a RAKE phrase with its score.
type KeywordScore struct {
	Phrase string
	Score  float64
}

// MeasurementSession holds the state of one accepted measurement request.
// It is created when the request is accepted and discarded on its terminal event.
type MeasurementSession struct {
	Query      string
	Stripped   string             // Query with negated clauses removed
	Corpus     []string           // Snapshot of the store taken at acceptance
	Candidates []string           // Sentences selected for scoring, in store order
	Weights    map[string]float64 // Accumulated keyword weight per candidate
	StartedAt  time.Time
}

// SentenceRecord is the persisted form of a registered sentence.
type SentenceRecord struct {
	Id         ID
	Position   int64
	Text       string
	InsertedAt time.Time
}
