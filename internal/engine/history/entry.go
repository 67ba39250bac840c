package history

import "time"

// Action labels produced by the store itself.
const (
	ActionInitial = "Initial state"
	ActionCleared = "History cleared"
)

// Entry is one snapshot in the history.
type Entry[T any] struct {
	ID        string
	Data      T
	Action    string
	Timestamp time.Time
}

// EntryView is an entry as presented to timeline UIs.
type EntryView[T any] struct {
	Entry[T]
	Index     int
	IsCurrent bool
}

// Info summarizes the navigation state of a store.
type Info struct {
	CanUndo       bool
	CanRedo       bool
	CurrentIndex  int
	Length        int
	CurrentAction string

	// UndoAction is the label of the entry one step back.
	// Only meaningful when HasUndoAction is true.
	UndoAction    string
	HasUndoAction bool

	// RedoAction is the label of the entry one step forward.
	// Only meaningful when HasRedoAction is true.
	RedoAction    string
	HasRedoAction bool

	// Pending reports a debounced commit waiting for its timer.
	Pending bool
}

// ChangeKind identifies what modified a store.
type ChangeKind int

const (
	// ChangeCommit indicates a snapshot was appended.
	ChangeCommit ChangeKind = iota

	// ChangeUndo indicates the cursor moved one step back.
	ChangeUndo

	// ChangeRedo indicates the cursor moved one step forward.
	ChangeRedo

	// ChangeGoTo indicates the cursor jumped to an arbitrary entry.
	ChangeGoTo

	// ChangeClear indicates the history was reset to a single entry.
	ChangeClear
)

// String returns the change kind name.
func (k ChangeKind) String() string {
	switch k {
	case ChangeCommit:
		return "commit"
	case ChangeUndo:
		return "undo"
	case ChangeRedo:
		return "redo"
	case ChangeGoTo:
		return "goto"
	case ChangeClear:
		return "clear"
	default:
		return "unknown"
	}
}

// Change describes a modification of a store.
type Change struct {
	Kind ChangeKind

	// Seq increases by one with every change made to the store.
	// Observers receive changes in Seq order.
	Seq uint64

	// Index is the cursor after the change.
	Index int

	// Length is the number of entries after the change.
	Length int

	// Action is the label of the current entry after the change.
	Action string

	// Discarded is the number of redo entries dropped by a commit.
	Discarded int

	// Evicted is the number of oldest entries dropped by a commit.
	Evicted int
}
