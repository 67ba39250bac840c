package config

import "errors"

// Errors returned by configuration operations.
var (
	// ErrTypeMismatch indicates a value has the wrong type for its key.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrInvalidValue indicates a value is outside its allowed range.
	ErrInvalidValue = errors.New("invalid value")
)
