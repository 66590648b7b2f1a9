package layout

import "testing"

func TestExpandStateToggle(t *testing.T) {
	s := NewExpandState()

	if s.IsExpanded("g") {
		t.Error("groups start collapsed")
	}
	if !s.Toggle("g") {
		t.Error("first toggle should expand")
	}
	if !s.IsExpanded("g") {
		t.Error("group should be expanded after toggle")
	}
	if s.Toggle("g") {
		t.Error("second toggle should collapse")
	}
	if s.Len() != 0 {
		t.Errorf("len = %d, want 0", s.Len())
	}
}

func TestExpandStateSnapshotIsolation(t *testing.T) {
	s := NewExpandState()
	s.Toggle("a")

	snap := s.Snapshot()
	s.Toggle("b")

	if snap["b"] {
		t.Error("snapshot must not observe later mutations")
	}
	snap["c"] = true
	if s.IsExpanded("c") {
		t.Error("mutating a snapshot must not affect the state")
	}
}

func TestExpandAll(t *testing.T) {
	s := ExpandAll([]string{"a", "b"})
	if !s.IsExpanded("a") || !s.IsExpanded("b") {
		t.Error("ExpandAll should pre-populate the set")
	}
	if s.Len() != 2 {
		t.Errorf("len = %d, want 2", s.Len())
	}
}
