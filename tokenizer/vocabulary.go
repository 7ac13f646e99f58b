package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Vocabulary maps subword tokens to model input ids.
// The id of a token is its zero-based line index in the vocabulary resource.
type Vocabulary struct {
	ids    map[string]int64
	tokens []string
}

// NewVocabulary builds a vocabulary from tokens in id order.
// Blank entries keep their index so ids stay aligned with the model.
func NewVocabulary(tokens []string) (*Vocabulary, error) {
	v := &Vocabulary{
		ids:    make(map[string]int64, len(tokens)),
		tokens: make([]string, len(tokens)),
	}
	copy(v.tokens, tokens)
	for i, token := range v.tokens {
		if token == "" {
			continue
		}
		// First occurrence wins
		if _, exists := v.ids[token]; !exists {
			v.ids[token] = int64(i)
		}
	}
	if len(v.ids) == 0 {
		return nil, ErrEmptyVocabulary
	}
	return v, nil
}

// LoadVocabulary reads a newline-delimited vocabulary.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	var tokens []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		tokens = append(tokens, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVocabularyRead, err)
	}
	return NewVocabulary(tokens)
}

// LoadVocabularyFile reads a vocabulary from disk.
func LoadVocabularyFile(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVocabularyRead, err)
	}
	defer f.Close()
	return LoadVocabulary(f)
}

// ID returns the id of token.
func (v *Vocabulary) ID(token string) (int64, bool) {
	id, ok := v.ids[token]
	return id, ok
}

// Token returns the token with the given id.
func (v *Vocabulary) Token(id int64) (string, bool) {
	if id < 0 || id >= int64(len(v.tokens)) {
		return "", false
	}
	return v.tokens[id], true
}

// Len returns the number of entries, including blank lines.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}
