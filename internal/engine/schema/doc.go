// Package schema records the database schema designer's tables in an undo
// history.
//
// Structural changes (adding or removing tables and columns) commit
// immediately; free-form edits of a table commit through the debounce window.
package schema
