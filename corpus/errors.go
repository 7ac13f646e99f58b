package corpus

import "errors"

var (
	// ErrRepositoryRequired is returned when a sentence repository is not provided.
	ErrRepositoryRequired = errors.New("sentence repository required")

	// ErrInvalidCapacity is returned when capacity is not positive.
	ErrInvalidCapacity = errors.New("capacity must be positive")

	// ErrStoreClosed is returned by mutations after Close.
	ErrStoreClosed = errors.New("sentence store is closed")
)
