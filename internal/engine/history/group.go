package history

// BeginGroup starts folding commits into a single entry labelled name.
// A pending debounced commit is applied first. Nested calls are ignored.
func (s *Store[T]) BeginGroup(name string) {
	s.mu.Lock()
	if s.closed || s.grouping {
		s.mu.Unlock()
		return
	}

	if change, ok := s.flushLocked(); ok {
		s.publishLocked(change)
	}
	s.grouping = true
	s.groupName = name
	s.group = nil
	s.mu.Unlock()

	s.deliver()
}

// EndGroup appends the last snapshot committed since BeginGroup as one entry.
// If nothing was committed the history is unchanged.
func (s *Store[T]) EndGroup() {
	s.mu.Lock()
	if !s.grouping {
		s.mu.Unlock()
		return
	}

	s.grouping = false
	group := s.group
	s.group = nil

	if group == nil {
		s.mu.Unlock()
		return
	}

	action := s.groupName
	if action == "" {
		action = group.action
	}
	s.publishLocked(s.appendLocked(group.data, action))
	s.mu.Unlock()

	s.deliver()
}

// CancelGroup ends a group without adding an entry.
func (s *Store[T]) CancelGroup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grouping = false
	s.group = nil
}

// IsGrouping returns true if a group is open.
func (s *Store[T]) IsGrouping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grouping
}

// GroupScope provides a convenient way to group commits using defer.
// Usage:
//
//	func alignBlocks(store *history.Store[Blocks]) {
//	    defer store.GroupScope("Aligned blocks").End()
//	    // ... multiple commits ...
//	}
type GroupScope[T any] struct {
	store  *Store[T]
	active bool
}

// GroupScope starts a new group scope.
// Call End() or use with defer to properly close the group.
func (s *Store[T]) GroupScope(name string) *GroupScope[T] {
	s.BeginGroup(name)
	return &GroupScope[T]{
		store:  s,
		active: true,
	}
}

// End ends the group scope.
// Safe to call multiple times; only the first call has effect.
func (g *GroupScope[T]) End() {
	if g.active {
		g.store.EndGroup()
		g.active = false
	}
}

// Cancel cancels the group scope without adding an entry.
func (g *GroupScope[T]) Cancel() {
	if g.active {
		g.store.CancelGroup()
		g.active = false
	}
}

// Transaction runs fn inside a group.
// If fn returns an error the group is cancelled and nothing is recorded.
func (s *Store[T]) Transaction(name string, fn func() error) error {
	s.BeginGroup(name)

	if err := fn(); err != nil {
		s.CancelGroup()
		return err
	}

	s.EndGroup()
	return nil
}
