package schema

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/blockforge/internal/engine/history"
	"github.com/dshills/blockforge/internal/notify"
)

// Default configuration values.
const (
	DefaultMaxSize  = 50
	DefaultDebounce = 1500 * time.Millisecond
)

// History tracks the tables of one schema.
type History struct {
	store *history.Store[Tables]
	newID func() string
}

// New creates a schema history seeded with tables.
// Options override the schema defaults.
func New(seed []Table, opts ...history.Option) (*History, error) {
	opts = append([]history.Option{
		history.WithMaxSize(DefaultMaxSize),
		history.WithDebounce(DefaultDebounce),
	}, opts...)

	store, err := history.New(Tables(seed).Clone(), opts...)
	if err != nil {
		return nil, fmt.Errorf("schema history: %w", err)
	}

	return &History{
		store: store,
		newID: uuid.NewString,
	}, nil
}

// AddTable appends a table and commits immediately.
// The table and its columns get ids when they have none.
func (h *History) AddTable(t Table) (Table, error) {
	tables := h.store.Latest()

	if t.ID == "" {
		t.ID = h.newID()
	} else if tables.Index(t.ID) >= 0 {
		return Table{}, fmt.Errorf("%w: %s", ErrDuplicateTable, t.ID)
	}

	t = t.Clone()
	for i := range t.Columns {
		if t.Columns[i].ID == "" {
			t.Columns[i].ID = h.newID()
		}
	}

	tables = append(tables, t)
	h.store.CommitImmediate(tables, fmt.Sprintf("Added table %s", t.Name))
	return t.Clone(), nil
}

// RemoveTable deletes the table with id and commits immediately.
// Foreign keys pointing at the table are cleared.
func (h *History) RemoveTable(id string) error {
	tables := h.store.Latest()

	i := tables.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}

	removed := tables[i]
	tables = append(tables[:i], tables[i+1:]...)
	tables.dropReferencesTo(id, "")
	h.store.CommitImmediate(tables, fmt.Sprintf("Removed table %s", removed.Name))
	return nil
}

// UpdateTable merges update into the table with id. The commit is debounced.
func (h *History) UpdateTable(id string, update TableUpdate) error {
	tables := h.store.Latest()

	i := tables.Index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}

	tables[i] = update.Apply(tables[i])
	h.store.Commit(tables, fmt.Sprintf("Updated table %s", tables[i].Name))
	return nil
}

// AddColumn appends a column to the table with tableID and commits
// immediately. Returns the stored column.
func (h *History) AddColumn(tableID string, col Column) (Column, error) {
	tables := h.store.Latest()

	i := tables.Index(tableID)
	if i < 0 {
		return Column{}, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}

	if col.ID == "" {
		col.ID = h.newID()
	} else if tables[i].ColumnIndex(col.ID) >= 0 {
		return Column{}, fmt.Errorf("%w: %s", ErrDuplicateColumn, col.ID)
	}

	col = col.Clone()
	tables[i].Columns = append(tables[i].Columns, col)
	h.store.CommitImmediate(tables, fmt.Sprintf("Added column %s to %s", col.Name, tables[i].Name))
	return col.Clone(), nil
}

// RemoveColumn deletes a column from the table with tableID and commits
// immediately. Foreign keys pointing at the column are cleared.
func (h *History) RemoveColumn(tableID, columnID string) error {
	tables := h.store.Latest()

	i := tables.Index(tableID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	j := tables[i].ColumnIndex(columnID)
	if j < 0 {
		return fmt.Errorf("%w: %s", ErrColumnNotFound, columnID)
	}

	removed := tables[i].Columns[j]
	tables[i].Columns = append(tables[i].Columns[:j], tables[i].Columns[j+1:]...)
	tables.dropReferencesTo(tableID, columnID)
	h.store.CommitImmediate(tables, fmt.Sprintf("Removed column %s from %s", removed.Name, tables[i].Name))
	return nil
}

// UpdateTables replaces the whole table list. The commit is debounced.
func (h *History) UpdateTables(tables []Table, action string) {
	h.store.Commit(Tables(tables), action)
}

// Tables returns the current table list.
func (h *History) Tables() Tables {
	return h.store.Current()
}

// Table returns the current state of the table with id.
func (h *History) Table(id string) (Table, bool) {
	return h.store.Current().Find(id)
}

// Undo steps back and returns the resulting table list.
func (h *History) Undo() Tables {
	return h.store.Undo()
}

// Redo steps forward and returns the resulting table list.
func (h *History) Redo() Tables {
	return h.store.Redo()
}

// GoTo jumps to the entry at index and returns its table list.
func (h *History) GoTo(index int) Tables {
	return h.store.GoTo(index)
}

// Clear resets the history to the initial table list.
func (h *History) Clear() {
	h.store.Clear()
}

// ClearTo resets the history to tables.
func (h *History) ClearTo(tables []Table) {
	h.store.ClearTo(Tables(tables))
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

// Entries returns the timeline of retained table lists.
func (h *History) Entries() []history.EntryView[Tables] {
	return h.store.Entries()
}

// Subscribe registers an observer for history changes.
func (h *History) Subscribe(observer func(history.Change)) *notify.Subscription {
	return h.store.Subscribe(observer)
}

// Store exposes the underlying history store.
func (h *History) Store() *history.Store[Tables] {
	return h.store
}

// Close discards any pending edit and stops notifications.
func (h *History) Close() {
	h.store.Close()
}
