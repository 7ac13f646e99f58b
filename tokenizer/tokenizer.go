package tokenizer

import (
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Marker tokens looked up in the vocabulary.
const (
	ClassifyToken  = "[CLS]"
	SeparatorToken = "[SEP]"
	UnknownToken   = "[UNK]"
	PadToken       = "[PAD]"
)

const (
	// DefaultMaxLength is the fixed sequence length used in bounded mode.
	DefaultMaxLength = 128

	continuationPrefix = "##"

	// BERT-base uncased ids, used in unbounded mode when the vocabulary lacks markers
	fallbackStartID int64 = 101
	fallbackEndID   int64 = 102
)

// TokenSequence is model input for one text.
// IDs, Mask and Segments always have the same length.
type TokenSequence struct {
	IDs      []int64
	Mask     []int64 // 1 for real tokens, 0 for padding
	Segments []int64 // all zero for single-sentence input
}

// Len returns the sequence length including padding.
func (s TokenSequence) Len() int {
	return len(s.IDs)
}

// Real returns the number of unmasked tokens.
func (s TokenSequence) Real() int {
	n := 0
	for _, m := range s.Mask {
		if m != 0 {
			n++
		}
	}
	return n
}

// Tokenizer splits text into WordPiece ids.
//
// In bounded mode (MaxLength > 0) a word that cannot be fully matched
// becomes a single [UNK] id and every sequence is truncated or padded to
// MaxLength. In unbounded mode the unmatched remainder of a word is
// dropped and no padding is added.
type Tokenizer struct {
	vocab     *Vocabulary
	maxLength int
	startID   int64
	endID     int64
	unknownID int64
	padID     int64
	logger    *slog.Logger
}

// Option configures a Tokenizer.
type Option func(*Tokenizer) error

// WithMaxLength sets the fixed sequence length. Zero selects unbounded mode.
// Default is DefaultMaxLength.
func WithMaxLength(n int) Option {
	return func(t *Tokenizer) error {
		if n != 0 && n < 2 {
			return fmt.Errorf("%w: %d", ErrInvalidMaxLength, n)
		}
		t.maxLength = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tokenizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger
		return nil
	}
}

// New creates a tokenizer over vocab.
func New(vocab *Vocabulary, opts ...Option) (*Tokenizer, error) {
	if vocab == nil {
		return nil, ErrVocabularyRequired
	}

	t := &Tokenizer{
		vocab:     vocab,
		maxLength: DefaultMaxLength,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	t.logger = t.logger.With("component", "tokenizer")

	if err := t.resolveMarkers(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tokenizer) resolveMarkers() error {
	var ok bool
	if t.startID, ok = t.vocab.ID(ClassifyToken); !ok {
		if t.Bounded() {
			return fmt.Errorf("%w: %s", ErrMissingSpecialToken, ClassifyToken)
		}
		t.startID = fallbackStartID
	}
	if t.endID, ok = t.vocab.ID(SeparatorToken); !ok {
		if t.Bounded() {
			return fmt.Errorf("%w: %s", ErrMissingSpecialToken, SeparatorToken)
		}
		t.endID = fallbackEndID
	}
	if t.unknownID, ok = t.vocab.ID(UnknownToken); !ok && t.Bounded() {
		return fmt.Errorf("%w: %s", ErrMissingSpecialToken, UnknownToken)
	}
	// [PAD] is conventionally id 0
	t.padID, _ = t.vocab.ID(PadToken)
	return nil
}

// Bounded reports whether sequences have a fixed length.
func (t *Tokenizer) Bounded() bool {
	return t.maxLength > 0
}

// MaxLength returns the fixed sequence length, or 0 in unbounded mode.
func (t *Tokenizer) MaxLength() int {
	return t.maxLength
}

// StartID returns the id wrapped around the front of every sequence.
func (t *Tokenizer) StartID() int64 {
	return t.startID
}

// EndID returns the id closing every sequence.
func (t *Tokenizer) EndID() int64 {
	return t.endID
}

// Encode tokenizes text.
func (t *Tokenizer) Encode(text string) TokenSequence {
	ids := []int64{t.startID}
	for _, word := range strings.Fields(strings.ToLower(norm.NFKC.String(text))) {
		ids = t.appendWord(ids, word)
	}

	if t.Bounded() && len(ids) > t.maxLength-1 {
		t.logger.Debug("truncating sequence", "tokens", len(ids)+1, "maxLength", t.maxLength)
		ids = ids[:t.maxLength-1]
	}
	ids = append(ids, t.endID)

	used := len(ids)
	length := used
	if t.Bounded() {
		length = t.maxLength
	}

	seq := TokenSequence{
		IDs:      make([]int64, length),
		Mask:     make([]int64, length),
		Segments: make([]int64, length),
	}
	copy(seq.IDs, ids)
	for i := 0; i < length; i++ {
		if i < used {
			seq.Mask[i] = 1
		} else {
			seq.IDs[i] = t.padID
		}
	}
	return seq
}

// appendWord appends the WordPiece ids of word using greedy longest-match-first.
func (t *Tokenizer) appendWord(ids []int64, word string) []int64 {
	runes := []rune(word)
	pieces := make([]int64, 0, 2)

	for start := 0; start < len(runes); {
		id, end, ok := t.longestMatch(runes, start)
		if !ok {
			if t.Bounded() {
				return append(ids, t.unknownID)
			}
			t.logger.Debug("dropping unmatched word", "word", word, "remainder", string(runes[start:]))
			return append(ids, pieces...)
		}
		pieces = append(pieces, id)
		start = end
	}
	return append(ids, pieces...)
}

// longestMatch finds the longest vocabulary piece starting at start.
// Pieces after the first carry the continuation prefix.
func (t *Tokenizer) longestMatch(runes []rune, start int) (int64, int, bool) {
	for end := len(runes); end > start; end-- {
		piece := string(runes[start:end])
		if start > 0 {
			piece = continuationPrefix + piece
		}
		if id, ok := t.vocab.ID(piece); ok {
			return id, end, true
		}
	}
	return 0, start, false
}
