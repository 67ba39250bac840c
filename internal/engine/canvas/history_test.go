package canvas

import (
	"errors"
	"testing"
	"time"

	"github.com/dshills/blockforge/internal/engine/history"
	"github.com/dshills/blockforge/internal/engine/history/historytest"
)

// Helper to create a canvas history driven by a manual scheduler
func newTestHistory(t *testing.T, seed []Block) (*History, *historytest.ManualScheduler) {
	t.Helper()
	sched := historytest.NewManualScheduler(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	h, err := New(seed, history.WithScheduler(sched), history.WithClock(sched.Now))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(h.Close)
	return h, sched
}

func strPtr(s string) *string { return &s }

func TestNew_Defaults(t *testing.T) {
	h, _ := newTestHistory(t, nil)

	if got := h.Store().MaxSize(); got != DefaultMaxSize {
		t.Errorf("MaxSize() = %d, want %d", got, DefaultMaxSize)
	}
	if got := h.Store().Debounce(); got != DefaultDebounce {
		t.Errorf("Debounce() = %v, want %v", got, DefaultDebounce)
	}
	if len(h.Blocks()) != 0 {
		t.Errorf("Blocks() = %v, want empty", h.Blocks())
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	_, err := New(nil, history.WithMaxSize(0))
	if !errors.Is(err, history.ErrInvalidMaxSize) {
		t.Errorf("New() error = %v, want ErrInvalidMaxSize", err)
	}
}

// Example scenario: add a hero block, undo, redo.
func TestHistory_AddUndoRedo(t *testing.T) {
	h, _ := newTestHistory(t, nil)

	if _, err := h.AddBlock(Block{ID: "b1", Type: "hero"}); err != nil {
		t.Fatalf("AddBlock() error = %v", err)
	}

	info := h.Info()
	if info.Length != 2 {
		t.Fatalf("Length = %d, want 2 without waiting", info.Length)
	}
	if info.CurrentAction != "Added hero block" {
		t.Errorf("CurrentAction = %q", info.CurrentAction)
	}
	if info.UndoAction != history.ActionInitial {
		t.Errorf("UndoAction = %q, want %q", info.UndoAction, history.ActionInitial)
	}

	if got := h.Undo(); len(got) != 0 {
		t.Errorf("Undo() = %v, want empty", got)
	}

	got := h.Redo()
	if len(got) != 1 || got[0].ID != "b1" || got[0].Type != "hero" {
		t.Errorf("Redo() = %v", got)
	}
	if h.Info().CanRedo {
		t.Error("CanRedo should be false")
	}
}

func TestHistory_AddBlockAssignsID(t *testing.T) {
	h, _ := newTestHistory(t, nil)

	b, err := h.AddBlock(Block{Type: "text"})
	if err != nil {
		t.Fatal(err)
	}
	if b.ID == "" {
		t.Fatal("AddBlock() left id empty")
	}
	if _, ok := h.Block(b.ID); !ok {
		t.Error("added block not found")
	}
}

func TestHistory_AddBlockDuplicateID(t *testing.T) {
	h, _ := newTestHistory(t, []Block{{ID: "b1", Type: "hero"}})

	_, err := h.AddBlock(Block{ID: "b1", Type: "text"})
	if !errors.Is(err, ErrDuplicateBlock) {
		t.Errorf("AddBlock() error = %v, want ErrDuplicateBlock", err)
	}
	if h.Info().Length != 1 {
		t.Error("failed add should not commit")
	}
}

func TestHistory_RemoveBlock(t *testing.T) {
	h, _ := newTestHistory(t, []Block{{ID: "b1", Type: "hero"}, {ID: "b2", Type: "form"}})

	if err := h.RemoveBlock("b1"); err != nil {
		t.Fatal(err)
	}

	blocks := h.Blocks()
	if len(blocks) != 1 || blocks[0].ID != "b2" {
		t.Errorf("Blocks() = %v", blocks)
	}
	if got := h.Info().CurrentAction; got != "Removed hero" {
		t.Errorf("CurrentAction = %q, want %q", got, "Removed hero")
	}

	if err := h.RemoveBlock("missing"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("RemoveBlock(missing) error = %v", err)
	}
	if h.Info().Length != 2 {
		t.Errorf("Length = %d, want 2", h.Info().Length)
	}
}

func TestHistory_UpdateBlockDebounced(t *testing.T) {
	h, sched := newTestHistory(t, []Block{{ID: "b1", Type: "hero"}})

	err := h.UpdateBlock("b1", BlockUpdate{Properties: map[string]any{"title": "a"}})
	if err != nil {
		t.Fatal(err)
	}
	sched.Advance(300 * time.Millisecond)
	err = h.UpdateBlock("b1", BlockUpdate{Properties: map[string]any{"title": "ab"}})
	if err != nil {
		t.Fatal(err)
	}

	if h.Info().Length != 1 {
		t.Fatalf("Length = %d before debounce, want 1", h.Info().Length)
	}

	sched.Advance(DefaultDebounce)

	info := h.Info()
	if info.Length != 2 {
		t.Fatalf("Length = %d, want 2", info.Length)
	}
	if info.CurrentAction != "Updated hero" {
		t.Errorf("CurrentAction = %q", info.CurrentAction)
	}
	b, _ := h.Block("b1")
	if b.Properties["title"] != "ab" {
		t.Errorf("title = %v, want ab", b.Properties["title"])
	}
}

func TestHistory_UpdateBlockAccumulatesFields(t *testing.T) {
	h, sched := newTestHistory(t, []Block{{ID: "b1", Type: "hero"}})

	_ = h.UpdateBlock("b1", BlockUpdate{Properties: map[string]any{"title": "Hello"}})
	_ = h.UpdateBlock("b1", BlockUpdate{Styles: map[string]string{"color": "red"}})
	_ = h.UpdateBlock("b1", BlockUpdate{Type: strPtr("banner")})
	sched.Advance(DefaultDebounce)

	b, _ := h.Block("b1")
	if b.Properties["title"] != "Hello" || b.Styles["color"] != "red" || b.Type != "banner" {
		t.Errorf("block = %+v, want all three edits", b)
	}
	if h.Info().Length != 2 {
		t.Errorf("Length = %d, want 2", h.Info().Length)
	}
}

func TestHistory_UpdateBlockNotFound(t *testing.T) {
	h, _ := newTestHistory(t, nil)

	err := h.UpdateBlock("nope", BlockUpdate{})
	if !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("error = %v, want ErrBlockNotFound", err)
	}
	if h.Store().Pending() {
		t.Error("failed update should not schedule a commit")
	}
}

func TestHistory_MoveBlock(t *testing.T) {
	h, _ := newTestHistory(t, []Block{{ID: "b1", Type: "hero"}})

	if err := h.MoveBlock("b1", Position{X: 40, Y: 80}); err != nil {
		t.Fatal(err)
	}

	b, _ := h.Block("b1")
	if b.Position != (Position{X: 40, Y: 80}) {
		t.Errorf("Position = %+v", b.Position)
	}
	if got := h.Info().CurrentAction; got != "Moved block" {
		t.Errorf("CurrentAction = %q", got)
	}

	h.Undo()
	b, _ = h.Block("b1")
	if b.Position != (Position{}) {
		t.Errorf("Position after undo = %+v", b.Position)
	}
}

func TestHistory_MoveFlushesPendingEdit(t *testing.T) {
	h, _ := newTestHistory(t, []Block{{ID: "b1", Type: "hero"}})

	_ = h.UpdateBlock("b1", BlockUpdate{Properties: map[string]any{"title": "x"}})
	_ = h.MoveBlock("b1", Position{X: 1, Y: 1})

	entries := h.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if entries[1].Action != "Updated hero" || entries[2].Action != "Moved block" {
		t.Errorf("actions = %q, %q", entries[1].Action, entries[2].Action)
	}
	moved := entries[2].Data[0]
	if moved.Properties["title"] != "x" {
		t.Error("move lost the pending edit")
	}
}

func TestHistory_DuplicateBlock(t *testing.T) {
	seed := []Block{
		{ID: "b1", Type: "hero", Position: Position{X: 10, Y: 10}, Properties: map[string]any{"title": "Hi"}},
		{ID: "b2", Type: "footer"},
	}
	h, _ := newTestHistory(t, seed)

	dup, err := h.DuplicateBlock("b1")
	if err != nil {
		t.Fatal(err)
	}

	if dup.ID == "" || dup.ID == "b1" {
		t.Errorf("duplicate id = %q", dup.ID)
	}
	if dup.Position != (Position{X: 30, Y: 30}) {
		t.Errorf("duplicate position = %+v", dup.Position)
	}
	if dup.Properties["title"] != "Hi" {
		t.Errorf("duplicate properties = %v", dup.Properties)
	}

	blocks := h.Blocks()
	if len(blocks) != 3 || blocks[1].ID != dup.ID || blocks[2].ID != "b2" {
		t.Errorf("Blocks() order = %v", blocks)
	}
	if got := h.Info().CurrentAction; got != "Duplicated hero block" {
		t.Errorf("CurrentAction = %q", got)
	}

	// Editing the copy must not touch the original.
	_ = h.UpdateBlock(dup.ID, BlockUpdate{Properties: map[string]any{"title": "Copy"}})
	h.Flush()
	orig, _ := h.Block("b1")
	if orig.Properties["title"] != "Hi" {
		t.Error("duplicate shares properties with original")
	}

	if _, err := h.DuplicateBlock("missing"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("DuplicateBlock(missing) error = %v", err)
	}
}

func TestHistory_UpdateBlocks(t *testing.T) {
	h, sched := newTestHistory(t, nil)

	h.UpdateBlocks([]Block{{ID: "a", Type: "hero"}}, "Loaded project")
	h.UpdateBlocks([]Block{{ID: "a", Type: "hero"}, {ID: "b", Type: "form"}}, "Loaded project")
	sched.Advance(DefaultDebounce)

	info := h.Info()
	if info.Length != 2 || info.CurrentAction != "Loaded project" {
		t.Errorf("Info() = %+v", info)
	}
	if len(h.Blocks()) != 2 {
		t.Errorf("Blocks() = %v", h.Blocks())
	}
}

func TestHistory_SnapshotsAreCopies(t *testing.T) {
	h, _ := newTestHistory(t, []Block{{ID: "b1", Type: "hero", Properties: map[string]any{"title": "a"}}})

	blocks := h.Blocks()
	blocks[0].Properties["title"] = "mutated"
	blocks[0].Type = "mutated"

	b, _ := h.Block("b1")
	if b.Properties["title"] != "a" || b.Type != "hero" {
		t.Errorf("stored block changed through returned snapshot: %+v", b)
	}
}

func TestHistory_ClearTo(t *testing.T) {
	h, sched := newTestHistory(t, nil)

	_, _ = h.AddBlock(Block{ID: "b1", Type: "hero"})
	_ = h.UpdateBlock("b1", BlockUpdate{Properties: map[string]any{"title": "x"}})

	h.ClearTo([]Block{{ID: "p", Type: "page"}})
	sched.Advance(DefaultDebounce)

	info := h.Info()
	if info.Length != 1 || info.CurrentAction != history.ActionCleared {
		t.Errorf("Info() = %+v", info)
	}
	blocks := h.Blocks()
	if len(blocks) != 1 || blocks[0].ID != "p" {
		t.Errorf("Blocks() = %v", blocks)
	}

	h.Clear()
	if len(h.Blocks()) != 0 {
		t.Errorf("Clear() should restore the empty seed, got %v", h.Blocks())
	}
}

func TestHistory_GoTo(t *testing.T) {
	h, _ := newTestHistory(t, nil)
	_, _ = h.AddBlock(Block{ID: "a", Type: "hero"})
	_, _ = h.AddBlock(Block{ID: "b", Type: "form"})

	if got := h.GoTo(1); len(got) != 1 {
		t.Errorf("GoTo(1) = %v", got)
	}
	if got := h.GoTo(10); len(got) != 1 {
		t.Errorf("GoTo(10) should be a no-op, got %v", got)
	}
}

func TestHistory_Subscribe(t *testing.T) {
	h, _ := newTestHistory(t, nil)

	var kinds []history.ChangeKind
	sub := h.Subscribe(func(c history.Change) {
		kinds = append(kinds, c.Kind)
	})
	defer sub.Unsubscribe()

	_, _ = h.AddBlock(Block{Type: "hero"})
	h.Undo()

	if len(kinds) != 2 || kinds[0] != history.ChangeCommit || kinds[1] != history.ChangeUndo {
		t.Errorf("kinds = %v", kinds)
	}
}
