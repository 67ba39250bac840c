// Package canvas records the block layout of the page canvas in an undo
// history.
//
// Every mutator computes the next full block list and commits it to a
// history.Store. Discrete actions (add, remove, move, duplicate) become one
// undo step each; property edits are debounced so a burst of keystrokes or
// slider moves collapses into a single step.
package canvas
