// Package history provides snapshot-based undo/redo for editor documents.
//
// A Store keeps a bounded, linear list of immutable snapshots together with a
// cursor pointing at the active one. Every commit stores the full document
// state, never a diff. Key concepts:
//
// # Entries
//
// An Entry wraps one snapshot with the action label that produced it, the
// time it was applied and a unique id. The store is seeded with one entry at
// construction, so there is always a current snapshot.
//
// # Linear History
//
// Committing while the cursor is behind the newest entry discards the
// entries after the cursor before appending. There are no branches.
//
//	store, _ := history.New(seed, history.WithMaxSize(100))
//	store.CommitImmediate(next, "Added hero block")
//	prev := store.Undo()
//	next = store.Redo()
//
// When the list would grow past the maximum size the oldest entries are
// evicted and the cursor keeps pointing at the newest entry.
//
// # Debounced Commits
//
// Commit coalesces rapid edits. The snapshot is held as pending and a timer
// of the debounce window is (re)armed; a newer Commit replaces the pending
// snapshot instead of queueing behind it. When the timer fires the last
// pending snapshot is appended. CommitImmediate, Flush and navigation apply
// a pending snapshot right away, Clear drops it.
//
// # Groups
//
// Several commits can be folded into a single entry:
//
//	store.Transaction("Aligned blocks", func() error {
//	    store.CommitImmediate(step1, "move")
//	    store.CommitImmediate(step2, "move")
//	    return nil
//	})
//
// # Observing Changes
//
// Subscribe registers an observer that receives a Change after every applied
// commit, cursor move or clear. Debounced commits are applied from a timer
// goroutine, so observers are the way to learn that the current snapshot
// changed without a call from the UI.
package history
