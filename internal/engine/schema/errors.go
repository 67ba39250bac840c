package schema

import "errors"

// Errors returned by schema mutators.
var (
	// ErrTableNotFound indicates no table has the given id.
	ErrTableNotFound = errors.New("table not found")

	// ErrColumnNotFound indicates the table has no column with the given id.
	ErrColumnNotFound = errors.New("column not found")

	// ErrDuplicateTable indicates a table with the same id already exists.
	ErrDuplicateTable = errors.New("table id already exists")

	// ErrDuplicateColumn indicates the table already has a column with the same id.
	ErrDuplicateColumn = errors.New("column id already exists")
)
