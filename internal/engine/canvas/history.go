package canvas

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/blockforge/internal/engine/history"
	"github.com/dshills/blockforge/internal/notify"
)

// Default configuration values.
const (
	DefaultMaxSize  = 100
	DefaultDebounce = 1000 * time.Millisecond

	// DuplicateOffset is how far a duplicated block is shifted on both axes.
	DuplicateOffset = 20
)

// History tracks the block list of one canvas.
type History struct {
	store *history.Store[Blocks]
	newID func() string
}

// New creates a canvas history seeded with blocks.
// Options override the canvas defaults.
func New(seed []Block, opts ...history.Option) (*History, error) {
	opts = append([]history.Option{
		history.WithMaxSize(DefaultMaxSize),
		history.WithDebounce(DefaultDebounce),
	}, opts...)

	store, err := history.New(Blocks(seed).Clone(), opts...)
	if err != nil {
		return nil, fmt.Errorf("canvas history: %w", err)
	}

	return &History{
		store: store,
		newID: uuid.NewString,
	}, nil
}

// AddBlock appends a block and commits immediately.
// A block without an id gets a new one. Returns the stored block.
func (h *History) AddBlock(b Block) (Block, error) {
	blocks := h.store.Latest()

	if b.ID == "" {
		b.ID = h.newID()
	} else if blocks.Index(b.ID) >= 0 {
		return Block{}, fmt.Errorf("%w: %s", ErrDuplicateBlock, b.ID)
	}

	b = b.Clone()
	blocks = append(blocks, b)
	h.store.CommitImmediate(blocks, fmt.Sprintf("Added %s block", b.Type))
	return b.Clone(), nil
}

// RemoveBlock deletes the block with id and commits immediately.
func (h *History) RemoveBlock(id string) error {
	blocks := h.store.Latest()

	i := blocks.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}

	removed := blocks[i]
	blocks = append(blocks[:i], blocks[i+1:]...)
	h.store.CommitImmediate(blocks, fmt.Sprintf("Removed %s", removed.Type))
	return nil
}

// UpdateBlock merges update into the block with id. The commit is debounced
// so that successive edits coalesce into one entry.
func (h *History) UpdateBlock(id string, update BlockUpdate) error {
	blocks := h.store.Latest()

	i := blocks.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}

	blocks[i] = update.Apply(blocks[i])
	h.store.Commit(blocks, fmt.Sprintf("Updated %s", blocks[i].Type))
	return nil
}

// MoveBlock sets the position of the block with id and commits immediately.
func (h *History) MoveBlock(id string, pos Position) error {
	blocks := h.store.Latest()

	i := blocks.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}

	blocks[i].Position = pos
	h.store.CommitImmediate(blocks, "Moved block")
	return nil
}

// DuplicateBlock inserts a copy of the block with id right after it, with a
// new id and an offset position, and commits immediately.
// Returns the new block.
func (h *History) DuplicateBlock(id string) (Block, error) {
	blocks := h.store.Latest()

	i := blocks.Index(id)
	if i < 0 {
		return Block{}, fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}

	dup := blocks[i].Clone()
	dup.ID = h.newID()
	dup.Position.X += DuplicateOffset
	dup.Position.Y += DuplicateOffset

	blocks = append(blocks[:i+1], append(Blocks{dup}, blocks[i+1:]...)...)
	h.store.CommitImmediate(blocks, fmt.Sprintf("Duplicated %s block", dup.Type))
	return dup.Clone(), nil
}

// UpdateBlocks replaces the whole block list, for example when a project is
// loaded or an assistant rewrites the page. The commit is debounced.
func (h *History) UpdateBlocks(blocks []Block, action string) {
	h.store.Commit(Blocks(blocks), action)
}

// Blocks returns the current block list.
func (h *History) Blocks() Blocks {
	return h.store.Current()
}

// Block returns the current state of the block with id.
func (h *History) Block(id string) (Block, bool) {
	return h.store.Current().Find(id)
}

// Undo steps back and returns the resulting block list.
func (h *History) Undo() Blocks {
	return h.store.Undo()
}

// Redo steps forward and returns the resulting block list.
func (h *History) Redo() Blocks {
	return h.store.Redo()
}

// GoTo jumps to the entry at index and returns its block list.
func (h *History) GoTo(index int) Blocks {
	return h.store.GoTo(index)
}

// Clear resets the history to the initial block list.
func (h *History) Clear() {
	h.store.Clear()
}

// ClearTo resets the history to blocks, for example when another project is
// opened.
func (h *History) ClearTo(blocks []Block) {
	h.store.ClearTo(Blocks(blocks))
}

// Flush applies a pending debounced edit now.
func (h *History) Flush() bool {
	return h.store.Flush()
}

// BeginGroup starts folding edits into one entry labelled name.
func (h *History) BeginGroup(name string) {
	h.store.BeginGroup(name)
}

// EndGroup records the edits made since BeginGroup as one entry.
func (h *History) EndGroup() {
	h.store.EndGroup()
}

// CancelGroup ends a group without recording it.
func (h *History) CancelGroup() {
	h.store.CancelGroup()
}

// Info returns the navigation state.
func (h *History) Info() history.Info {
	return h.store.Info()
}

// Entries returns the timeline of retained block lists.
func (h *History) Entries() []history.EntryView[Blocks] {
	return h.store.Entries()
}

// Subscribe registers an observer for history changes.
func (h *History) Subscribe(observer func(history.Change)) *notify.Subscription {
	return h.store.Subscribe(observer)
}

// Store exposes the underlying history store.
func (h *History) Store() *history.Store[Blocks] {
	return h.store
}

// Close discards any pending edit and stops notifications.
func (h *History) Close() {
	h.store.Close()
}
