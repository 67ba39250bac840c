package history

// scheduleLocked replaces the pending commit and re-arms the debounce timer.
// Must hold lock.
func (s *Store[T]) scheduleLocked(data T, action string) {
	s.pending = &pendingCommit[T]{data: data, action: action}
	s.seq++
	currentSeq := s.seq

	if s.timer != nil {
		s.timer.Stop()
	}

	s.timer = s.scheduler.AfterFunc(s.debounce, func() {
		s.fire(currentSeq)
	})
}

// fire applies the pending commit if seq still identifies it.
func (s *Store[T]) fire(seq uint64) {
	s.mu.Lock()
	// Only apply if this is still the current scheduled commit
	if s.closed || s.pending == nil || s.seq != seq {
		s.mu.Unlock()
		return
	}

	pending := s.pending
	s.pending = nil
	s.timer = nil
	s.publishLocked(s.appendLocked(pending.data, pending.action))
	s.mu.Unlock()

	s.deliver()
}

// flushLocked applies the pending commit now, if any. Must hold lock.
func (s *Store[T]) flushLocked() (Change, bool) {
	if s.pending == nil {
		return Change{}, false
	}

	pending := s.pending
	s.cancelLocked()
	return s.appendLocked(pending.data, pending.action), true
}

// cancelLocked drops the pending commit and invalidates its timer.
// Must hold lock.
func (s *Store[T]) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	// Increment seq to invalidate any running timer callback
	s.seq++
	s.pending = nil
}

// Flush applies a pending debounced commit immediately.
// Returns false if nothing was pending.
func (s *Store[T]) Flush() bool {
	s.mu.Lock()
	change, ok := s.flushLocked()
	if ok {
		s.publishLocked(change)
	}
	s.mu.Unlock()

	s.deliver()
	return ok
}

// Pending returns true if a debounced commit is waiting for its timer.
func (s *Store[T]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}
