package keyword

import "errors"

var (
	ErrStopListRead      = errors.New("failed to read stop list")
	ErrInvalidCharLength = errors.New("minimum phrase length must not be negative")
	ErrInvalidWordsLimit = errors.New("maximum phrase words must be positive")
)
