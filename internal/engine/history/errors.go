package history

import "errors"

// Errors returned when constructing a Store.
var (
	// ErrInvalidMaxSize indicates a maximum size below one.
	ErrInvalidMaxSize = errors.New("history: max size must be positive")

	// ErrInvalidDebounce indicates a negative debounce window.
	ErrInvalidDebounce = errors.New("history: debounce window must not be negative")
)
