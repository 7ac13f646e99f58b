package keyword

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/poiesic/sentsim/core"
)

const (
	DefaultMinCharLength  = 1
	DefaultMaxWordsLength = 5
)

// Extractor scores key phrases with RAKE. It is safe for concurrent use.
type Extractor struct {
	stopList       StopList
	minCharLength  int
	maxWordsLength int
	logger         *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithStopList replaces the default SMART stop list.
func WithStopList(list StopList) Option {
	return func(e *Extractor) error {
		e.stopList = list
		return nil
	}
}

// WithMinCharLength drops phrases shorter than n characters.
func WithMinCharLength(n int) Option {
	return func(e *Extractor) error {
		if n < 0 {
			return ErrInvalidCharLength
		}
		e.minCharLength = n
		return nil
	}
}

// WithMaxWordsLength drops phrases of more than n words.
func WithMaxWordsLength(n int) Option {
	return func(e *Extractor) error {
		if n <= 0 {
			return ErrInvalidWordsLimit
		}
		e.maxWordsLength = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger != nil {
			e.logger = logger
		}
		return nil
	}
}

// NewExtractor creates an extractor using the SMART stop list unless
// WithStopList is given.
func NewExtractor(opts ...Option) (*Extractor, error) {
	e := &Extractor{
		minCharLength:  DefaultMinCharLength,
		maxWordsLength: DefaultMaxWordsLength,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.stopList == nil {
		e.stopList = DefaultStopList()
	}
	e.logger = e.logger.With("component", "rake")
	return e, nil
}

// Extract returns the score of every key phrase in text. Phrases are
// lowercase words joined by single spaces. The map is empty, never nil,
// when nothing survives.
func (e *Extractor) Extract(text string) map[string]float64 {
	phrases := e.candidatePhrases(text)

	frequency := make(map[string]int)
	cooccurs := make(map[string]map[string]struct{})
	for _, phrase := range phrases {
		for i, word := range phrase {
			frequency[word]++
			set := cooccurs[word]
			if set == nil {
				set = make(map[string]struct{})
				cooccurs[word] = set
			}
			if len(phrase) == 1 {
				set[word] = struct{}{}
				continue
			}
			for j, other := range phrase {
				if j != i {
					set[other] = struct{}{}
				}
			}
		}
	}

	wordScore := make(map[string]float64, len(frequency))
	for word, freq := range frequency {
		wordScore[word] = float64(len(cooccurs[word])) / float64(freq)
	}

	scores := make(map[string]float64, len(phrases))
	for _, phrase := range phrases {
		var score float64
		for _, word := range phrase {
			score += wordScore[word]
		}
		scores[strings.Join(phrase, " ")] = score
	}

	e.logger.Debug("extracted keywords", "phrases", len(scores), "words", len(wordScore))
	return scores
}

// Keywords returns the phrases of text ordered by descending score, ties
// broken alphabetically.
func (e *Extractor) Keywords(text string) []core.KeywordScore {
	return Ranked(e.Extract(text))
}

// Ranked orders a phrase-score map by descending score, then phrase.
func Ranked(scores map[string]float64) []core.KeywordScore {
	ranked := make([]core.KeywordScore, 0, len(scores))
	for phrase, score := range scores {
		ranked = append(ranked, core.KeywordScore{Phrase: phrase, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Phrase < ranked[j].Phrase
	})
	return ranked
}

// candidatePhrases returns the runs of content words that pass the length filters.
func (e *Extractor) candidatePhrases(text string) [][]string {
	var phrases [][]string
	for _, fragment := range strings.FieldsFunc(text, isPhraseDelimiter) {
		var run []string
		for _, word := range splitWords(fragment) {
			if e.stopList.Contains(word) || isNumber(word) {
				phrases = e.keep(phrases, run)
				run = nil
				continue
			}
			run = append(run, word)
		}
		phrases = e.keep(phrases, run)
	}
	return phrases
}

func (e *Extractor) keep(phrases [][]string, run []string) [][]string {
	if len(run) == 0 || len(run) > e.maxWordsLength {
		return phrases
	}
	// Length counts the joining spaces.
	chars := len(run) - 1
	for _, word := range run {
		chars += utf8.RuneCountInString(word)
	}
	if chars < e.minCharLength {
		return phrases
	}
	return append(phrases, run)
}

func isPhraseDelimiter(r rune) bool {
	switch r {
	case '.', '!', '?', ',', ';', ':', '"', '(', ')', '[', ']', '{', '}', '|', '\n', '\t', '–', '—', '“', '”':
		return true
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '\'' || r == '’'
}

// splitWords lowercases fragment and splits it on non-word characters.
// Apostrophes and hyphens stay inside words but are trimmed from the ends.
func splitWords(fragment string) []string {
	fields := strings.FieldsFunc(strings.ToLower(fragment), func(r rune) bool {
		return !isWordRune(r)
	})
	words := fields[:0]
	for _, field := range fields {
		word := strings.Trim(field, "-'’")
		word = strings.ReplaceAll(word, "’", "'")
		if word != "" {
			words = append(words, word)
		}
	}
	return words
}

func isNumber(word string) bool {
	if !strings.ContainsFunc(word, unicode.IsDigit) {
		return false
	}
	_, err := strconv.ParseFloat(word, 64)
	return err == nil
}
