package history

import (
	"sync"
	"time"

	"github.com/dshills/blockforge/internal/notify"
)

// Cloner is implemented by snapshot types that need a deep copy to stay
// immutable. The store clones such snapshots when they are committed and
// whenever it hands one out.
type Cloner[T any] interface {
	Clone() T
}

// pendingCommit is a debounced commit waiting for its timer.
type pendingCommit[T any] struct {
	data   T
	action string
}

// Store manages a bounded linear history of snapshots.
type Store[T any] struct {
	mu sync.Mutex

	entries []Entry[T]
	cursor  int
	seed    T

	// Debounce state
	pending *pendingCommit[T]
	timer   Timer
	seq     uint64 // sequence number to detect stale timer callbacks

	// Grouping state
	grouping  bool
	groupName string
	group     *pendingCommit[T]

	// Configuration
	maxSize   int
	debounce  time.Duration
	scheduler Scheduler
	now       func() time.Time
	newID     func() string

	// Delivery state
	changes    *notify.Notifier[Change]
	outbox     []Change
	delivering bool
	changeSeq  uint64

	closed bool
}

// New creates a store seeded with one "Initial state" entry.
func New[T any](seed T, opts ...Option) (*Store[T], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.maxSize <= 0 {
		return nil, ErrInvalidMaxSize
	}
	if o.debounce < 0 {
		return nil, ErrInvalidDebounce
	}

	s := &Store[T]{
		seed:      cloneValue(seed),
		maxSize:   o.maxSize,
		debounce:  o.debounce,
		scheduler: o.scheduler,
		now:       o.now,
		newID:     o.newID,
		changes:   notify.New[Change](),
	}
	s.entries = []Entry[T]{s.newEntry(s.seed, ActionInitial)}

	return s, nil
}

// Commit records a snapshot, coalescing rapid calls.
// The snapshot becomes pending and is appended once no further Commit has
// arrived for the debounce window. A newer Commit replaces the pending one.
// With a zero window the snapshot is appended immediately.
func (s *Store[T]) Commit(snapshot T, action string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if s.grouping {
		s.group = &pendingCommit[T]{data: cloneValue(snapshot), action: action}
		s.mu.Unlock()
		return
	}

	if s.debounce == 0 {
		s.publishLocked(s.appendLocked(cloneValue(snapshot), action))
		s.mu.Unlock()
		s.deliver()
		return
	}

	s.scheduleLocked(cloneValue(snapshot), action)
	s.mu.Unlock()
}

// CommitImmediate appends a snapshot without waiting for the debounce window.
// A pending debounced commit is applied first so that it keeps its own entry.
func (s *Store[T]) CommitImmediate(snapshot T, action string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	if s.grouping {
		s.group = &pendingCommit[T]{data: cloneValue(snapshot), action: action}
		s.mu.Unlock()
		return
	}

	if change, ok := s.flushLocked(); ok {
		s.publishLocked(change)
	}
	s.publishLocked(s.appendLocked(cloneValue(snapshot), action))
	s.mu.Unlock()

	s.deliver()
}

// appendLocked discards the redo branch, appends a new entry and evicts the
// oldest entries beyond maxSize. Must hold lock.
func (s *Store[T]) appendLocked(data T, action string) Change {
	discarded := len(s.entries) - 1 - s.cursor

	// Clear redo branch (everything after cursor)
	if discarded > 0 {
		clear(s.entries[s.cursor+1:])
		s.entries = s.entries[:s.cursor+1]
	}

	s.entries = append(s.entries, s.newEntry(data, action))

	// Enforce max size
	evicted := 0
	if len(s.entries) > s.maxSize {
		evicted = len(s.entries) - s.maxSize
		s.entries = append(s.entries[:0:0], s.entries[evicted:]...)
	}

	s.cursor = len(s.entries) - 1

	change := s.changeLocked(ChangeCommit)
	change.Discarded = discarded
	change.Evicted = evicted
	return change
}

func (s *Store[T]) newEntry(data T, action string) Entry[T] {
	return Entry[T]{
		ID:        s.newID(),
		Data:      data,
		Action:    action,
		Timestamp: s.now(),
	}
}

// Undo moves the cursor one entry back and returns the snapshot there.
// At the oldest entry it returns the current snapshot unchanged.
func (s *Store[T]) Undo() T {
	return s.step(-1, ChangeUndo)
}

// Redo moves the cursor one entry forward and returns the snapshot there.
// At the newest entry it returns the current snapshot unchanged.
func (s *Store[T]) Redo() T {
	return s.step(1, ChangeRedo)
}

func (s *Store[T]) step(delta int, kind ChangeKind) T {
	s.mu.Lock()

	if change, ok := s.flushLocked(); ok {
		s.publishLocked(change)
	}

	target := s.cursor + delta
	if target >= 0 && target < len(s.entries) {
		s.cursor = target
		s.publishLocked(s.changeLocked(kind))
	}

	data := cloneValue(s.entries[s.cursor].Data)
	s.mu.Unlock()

	s.deliver()
	return data
}

// GoTo moves the cursor to the entry at index, as listed by Entries, and
// returns its snapshot. An index outside the history is a no-op returning
// the current snapshot. If applying a pending commit evicts the target, the
// cursor moves to the oldest retained entry.
func (s *Store[T]) GoTo(index int) T {
	s.mu.Lock()

	if index < 0 || index >= len(s.entries) {
		data := cloneValue(s.entries[s.cursor].Data)
		s.mu.Unlock()
		return data
	}

	// Applying a pending commit may evict entries, so resolve the target by id.
	targetID := s.entries[index].ID

	if change, ok := s.flushLocked(); ok {
		s.publishLocked(change)
	}

	target := 0
	for i := range s.entries {
		if s.entries[i].ID == targetID {
			target = i
			break
		}
	}
	if target != s.cursor {
		s.cursor = target
		s.publishLocked(s.changeLocked(ChangeGoTo))
	}

	data := cloneValue(s.entries[s.cursor].Data)
	s.mu.Unlock()

	s.deliver()
	return data
}

// Clear resets the history to a single entry holding the construction seed.
// A pending debounced commit is discarded.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	seed := s.seed
	s.mu.Unlock()

	s.reset(seed)
}

// ClearTo resets the history to a single entry holding seed.
// A pending debounced commit is discarded.
func (s *Store[T]) ClearTo(seed T) {
	s.reset(cloneValue(seed))
}

func (s *Store[T]) reset(seed T) {
	s.mu.Lock()
	s.cancelLocked()
	s.grouping = false
	s.group = nil

	clear(s.entries)
	s.entries = []Entry[T]{s.newEntry(seed, ActionCleared)}
	s.cursor = 0

	s.publishLocked(s.changeLocked(ChangeClear))
	s.mu.Unlock()

	s.deliver()
}

// Current returns the snapshot at the cursor.
func (s *Store[T]) Current() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneValue(s.entries[s.cursor].Data)
}

// Latest returns the most recently requested snapshot: an open group's
// snapshot, else the pending debounced snapshot, else the current one.
// Callers that derive the next snapshot from the previous one should build
// on Latest so that coalesced edits accumulate.
func (s *Store[T]) Latest() T {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.group != nil:
		return cloneValue(s.group.data)
	case s.pending != nil:
		return cloneValue(s.pending.data)
	default:
		return cloneValue(s.entries[s.cursor].Data)
	}
}

// Info returns the navigation state.
func (s *Store[T]) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	info := Info{
		CanUndo:       s.cursor > 0,
		CanRedo:       s.cursor < len(s.entries)-1,
		CurrentIndex:  s.cursor,
		Length:        len(s.entries),
		CurrentAction: s.entries[s.cursor].Action,
		Pending:       s.pending != nil,
	}
	if info.CanUndo {
		info.UndoAction = s.entries[s.cursor-1].Action
		info.HasUndoAction = true
	}
	if info.CanRedo {
		info.RedoAction = s.entries[s.cursor+1].Action
		info.HasRedoAction = true
	}
	return info
}

// Entries returns all retained entries, oldest first, marking the current one.
func (s *Store[T]) Entries() []EntryView[T] {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]EntryView[T], len(s.entries))
	for i, entry := range s.entries {
		entry.Data = cloneValue(entry.Data)
		result[i] = EntryView[T]{
			Entry:     entry,
			Index:     i,
			IsCurrent: i == s.cursor,
		}
	}
	return result
}

// Len returns the number of retained entries.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// MaxSize returns the maximum number of retained entries.
func (s *Store[T]) MaxSize() int {
	return s.maxSize
}

// Debounce returns the coalescing window used by Commit.
func (s *Store[T]) Debounce() time.Duration {
	return s.debounce
}

// Subscribe registers an observer for changes. Observers run without the
// store's lock held and may call back into the store. Changes arrive in Seq
// order; a change made while another goroutine is delivering is handed to
// observers by that goroutine.
func (s *Store[T]) Subscribe(observer func(Change)) *notify.Subscription {
	return s.changes.Subscribe(observer)
}

// Close discards any pending commit and stops notifications. Reads and
// navigation keep working; later commits are ignored.
func (s *Store[T]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelLocked()
	s.grouping = false
	s.group = nil
	s.outbox = nil
	s.mu.Unlock()

	s.changes.Close()
}

func (s *Store[T]) changeLocked(kind ChangeKind) Change {
	s.changeSeq++
	return Change{
		Kind:   kind,
		Seq:    s.changeSeq,
		Index:  s.cursor,
		Length: len(s.entries),
		Action: s.entries[s.cursor].Action,
	}
}

// publishLocked queues changes for delivery. Must hold lock.
func (s *Store[T]) publishLocked(changes ...Change) {
	if s.closed {
		return
	}
	s.outbox = append(s.outbox, changes...)
}

// deliver hands queued changes to observers in Seq order. One goroutine
// delivers at a time; a caller that finds delivery in progress leaves its
// changes to that goroutine.
func (s *Store[T]) deliver() {
	s.mu.Lock()
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true

	for len(s.outbox) > 0 {
		change := s.outbox[0]
		s.outbox = s.outbox[1:]
		s.mu.Unlock()

		s.changes.Notify(change)

		s.mu.Lock()
	}
	s.outbox = nil
	s.delivering = false
	s.mu.Unlock()
}

// cloneValue deep-copies v when its type implements Cloner.
func cloneValue[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}
