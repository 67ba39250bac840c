package schema

import "slices"

// Position is where a table card sits on the designer surface.
type Position struct {
	X float64 `json:"x" yaml:"x" toml:"x"`
	Y float64 `json:"y" yaml:"y" toml:"y"`
}

// Reference points a foreign-key column at another table's column.
type Reference struct {
	TableID  string `json:"tableId" yaml:"tableId" toml:"tableId"`
	ColumnID string `json:"columnId" yaml:"columnId" toml:"columnId"`
}

// Column is one column of a table.
type Column struct {
	ID         string     `json:"id" yaml:"id" toml:"id"`
	Name       string     `json:"name" yaml:"name" toml:"name"`
	Type       string     `json:"type" yaml:"type" toml:"type"`
	Nullable   bool       `json:"nullable" yaml:"nullable" toml:"nullable"`
	PrimaryKey bool       `json:"primaryKey" yaml:"primaryKey" toml:"primaryKey"`
	Unique     bool       `json:"unique" yaml:"unique" toml:"unique"`
	Default    string     `json:"default,omitempty" yaml:"default,omitempty" toml:"default,omitempty"`
	References *Reference `json:"references,omitempty" yaml:"references,omitempty" toml:"references,omitempty"`
}

// Clone returns a deep copy of the column.
func (c Column) Clone() Column {
	if c.References != nil {
		ref := *c.References
		c.References = &ref
	}
	return c
}

// Table is one table of the schema.
type Table struct {
	ID       string   `json:"id" yaml:"id" toml:"id"`
	Name     string   `json:"name" yaml:"name" toml:"name"`
	Columns  []Column `json:"columns" yaml:"columns" toml:"columns"`
	Position Position `json:"position" yaml:"position" toml:"position"`
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	if t.Columns != nil {
		cols := make([]Column, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = c.Clone()
		}
		t.Columns = cols
	}
	return t
}

// ColumnIndex returns the position of the column with id, or -1.
func (t Table) ColumnIndex(id string) int {
	return slices.IndexFunc(t.Columns, func(c Column) bool {
		return c.ID == id
	})
}

// TableUpdate is a partial update of a table. Nil fields are left unchanged;
// a non-nil Columns replaces the column list.
type TableUpdate struct {
	Name     *string
	Position *Position
	Columns  []Column
}

// Apply returns a copy of t with the update merged in.
func (u TableUpdate) Apply(t Table) Table {
	t = t.Clone()
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.Position != nil {
		t.Position = *u.Position
	}
	if u.Columns != nil {
		t.Columns = Table{Columns: u.Columns}.Clone().Columns
	}
	return t
}

// Tables is the ordered table list of a schema. It is the snapshot type
// stored in the history.
type Tables []Table

// Clone returns a deep copy of the list.
func (ts Tables) Clone() Tables {
	if ts == nil {
		return nil
	}
	out := make(Tables, len(ts))
	for i, t := range ts {
		out[i] = t.Clone()
	}
	return out
}

// Index returns the position of the table with id, or -1.
func (ts Tables) Index(id string) int {
	return slices.IndexFunc(ts, func(t Table) bool {
		return t.ID == id
	})
}

// Find returns the table with id.
func (ts Tables) Find(id string) (Table, bool) {
	i := ts.Index(id)
	if i < 0 {
		return Table{}, false
	}
	return ts[i].Clone(), true
}

// dropReferencesTo clears foreign keys that point at tableID, or at
// columnID of tableID when columnID is set.
func (ts Tables) dropReferencesTo(tableID, columnID string) {
	for i := range ts {
		for j := range ts[i].Columns {
			ref := ts[i].Columns[j].References
			if ref == nil || ref.TableID != tableID {
				continue
			}
			if columnID == "" || ref.ColumnID == columnID {
				ts[i].Columns[j].References = nil
			}
		}
	}
}
