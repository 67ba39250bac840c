package canvas

import "errors"

// Errors returned by canvas mutators.
var (
	// ErrBlockNotFound indicates no block has the given id.
	ErrBlockNotFound = errors.New("block not found")

	// ErrDuplicateBlock indicates a block with the same id already exists.
	ErrDuplicateBlock = errors.New("block id already exists")
)
