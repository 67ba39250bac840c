package history_test

import (
	"errors"
	"testing"
)

func TestStore_GroupFoldsCommits(t *testing.T) {
	s, _ := newManualStore(t, 0)

	s.BeginGroup("Aligned blocks")
	if !s.IsGrouping() {
		t.Fatal("IsGrouping() = false after BeginGroup")
	}
	s.CommitImmediate(1, "move")
	s.Commit(2, "move")
	s.CommitImmediate(3, "move")

	if s.Len() != 1 {
		t.Fatalf("Len() = %d during group, want 1", s.Len())
	}
	if got := s.Latest(); got != 3 {
		t.Errorf("Latest() = %d, want 3", got)
	}

	s.EndGroup()

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if info := s.Info(); info.CurrentAction != "Aligned blocks" {
		t.Errorf("CurrentAction = %q, want %q", info.CurrentAction, "Aligned blocks")
	}
	if got := s.Current(); got != 3 {
		t.Errorf("Current() = %d, want 3", got)
	}
}

func TestStore_GroupFlushesPending(t *testing.T) {
	s, _ := newManualStore(t, 0)

	s.Commit(1, "typing")
	s.BeginGroup("bulk")
	s.CommitImmediate(2, "x")
	s.EndGroup()

	entries := s.Entries()
	if len(entries) != 3 || entries[1].Action != "typing" || entries[2].Action != "bulk" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestStore_EmptyGroup(t *testing.T) {
	s, _ := newManualStore(t, 0)

	s.BeginGroup("nothing")
	s.EndGroup()
	s.EndGroup()

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_NestedGroupIgnored(t *testing.T) {
	s, _ := newManualStore(t, 0)

	s.BeginGroup("outer")
	s.BeginGroup("inner")
	s.CommitImmediate(1, "x")
	s.EndGroup()

	if info := s.Info(); info.CurrentAction != "outer" {
		t.Errorf("CurrentAction = %q, want %q", info.CurrentAction, "outer")
	}
}

func TestStore_GroupScope(t *testing.T) {
	s, _ := newManualStore(t, 0)

	func() {
		defer s.GroupScope("scoped").End()
		s.CommitImmediate(1, "a")
		s.CommitImmediate(2, "b")
	}()

	if s.Len() != 2 || s.Current() != 2 {
		t.Errorf("Len()=%d Current()=%d, want 2/2", s.Len(), s.Current())
	}

	scope := s.GroupScope("cancelled")
	s.CommitImmediate(3, "c")
	scope.Cancel()
	scope.End()

	if s.Len() != 2 {
		t.Errorf("Len() = %d after cancelled scope, want 2", s.Len())
	}
}

func TestStore_Transaction(t *testing.T) {
	s, _ := newManualStore(t, 0)

	err := s.Transaction("ok", func() error {
		s.CommitImmediate(1, "a")
		s.CommitImmediate(2, "b")
		return nil
	})
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	boom := errors.New("boom")
	err = s.Transaction("fails", func() error {
		s.CommitImmediate(3, "c")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("Transaction() error = %v, want %v", err, boom)
	}
	if s.Len() != 2 || s.Current() != 2 {
		t.Errorf("failed transaction recorded: Len()=%d Current()=%d", s.Len(), s.Current())
	}
	if s.IsGrouping() {
		t.Error("group left open after failed transaction")
	}
}

func TestStore_ClearCancelsGroup(t *testing.T) {
	s, _ := newManualStore(t, 0)

	s.BeginGroup("g")
	s.CommitImmediate(1, "a")
	s.Clear()
	s.EndGroup()

	if s.Len() != 1 || s.IsGrouping() {
		t.Errorf("Len()=%d IsGrouping()=%v", s.Len(), s.IsGrouping())
	}
}
