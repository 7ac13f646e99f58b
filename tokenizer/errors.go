package tokenizer

import "errors"

var (
	// ErrVocabularyRequired is returned when no vocabulary is provided.
	ErrVocabularyRequired = errors.New("vocabulary required")

	// ErrEmptyVocabulary is returned when a vocabulary resource has no tokens.
	ErrEmptyVocabulary = errors.New("vocabulary is empty")

	// ErrVocabularyRead is returned when a vocabulary resource cannot be read.
	ErrVocabularyRead = errors.New("failed to read vocabulary")

	// ErrMissingSpecialToken is returned when bounded mode cannot find a marker token.
	ErrMissingSpecialToken = errors.New("vocabulary is missing a special token")

	// ErrInvalidMaxLength is returned for a max length that cannot hold the start and end markers.
	ErrInvalidMaxLength = errors.New("max length must be 0 or at least 2")
)
