package measure

import "errors"

var (
	// ErrStoreRequired is returned when a sentence store is not provided.
	ErrStoreRequired = errors.New("sentence store required")

	// ErrProviderRequired is returned when an AI provider is not provided.
	ErrProviderRequired = errors.New("AI provider required")
)
