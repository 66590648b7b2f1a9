package layout

import "testing"

func TestLaneOffsets(t *testing.T) {
	lanes := NewLaneSet(
		Lane{Name: "a", Width: 100},
		Lane{Name: "b", Width: 200},
		Lane{Name: "c", Width: 150},
	)

	offsets := lanes.Offsets()
	want := []float64{0, 100, 300}
	for i, o := range offsets {
		if o != want[i] {
			t.Errorf("offset[%d] = %v, want %v", i, o, want[i])
		}
	}
	if lanes.TotalWidth() != 450 {
		t.Errorf("total width = %v, want 450", lanes.TotalWidth())
	}
}

func TestLaneCollapse(t *testing.T) {
	lanes := NewLaneSet(
		Lane{Name: "a", Width: 100},
		Lane{Name: "b", Width: 200},
		Lane{Name: "c", Width: 150},
	)

	lanes.Toggle("b")
	if !lanes.IsCollapsed("b") {
		t.Fatal("toggle should collapse lane b")
	}
	if w := lanes.EffectiveWidth("b"); w != CollapsedLaneWidth {
		t.Errorf("collapsed width = %v, want %v", w, CollapsedLaneWidth)
	}

	// Collapsing b only shifts lanes to its right.
	offsets := lanes.Offsets()
	want := []float64{0, 100, 100 + CollapsedLaneWidth}
	for i, o := range offsets {
		if o != want[i] {
			t.Errorf("offset[%d] = %v, want %v", i, o, want[i])
		}
	}

	// Toggle is its own inverse.
	lanes.Toggle("b")
	if lanes.IsCollapsed("b") {
		t.Error("second toggle should reopen lane b")
	}
	if lanes.EffectiveWidth("b") != 200 {
		t.Errorf("reopened width = %v, want 200", lanes.EffectiveWidth("b"))
	}
}

func TestLaneToggleUnknown(t *testing.T) {
	lanes := NewLaneSet(Lane{Name: "a", Width: 100})
	lanes.Toggle("nope")
	if lanes.IsCollapsed("nope") {
		t.Error("unknown lane must not gain collapse state")
	}
	if lanes.TotalWidth() != 100 {
		t.Errorf("total width changed: %v", lanes.TotalWidth())
	}
}

func TestLaneOffsetOf(t *testing.T) {
	lanes := NewLaneSet(
		Lane{Name: "a", Width: 100},
		Lane{Name: "b", Width: 200},
	)
	if x, ok := lanes.OffsetOf("b"); !ok || x != 100 {
		t.Errorf("OffsetOf(b) = %v, %v", x, ok)
	}
	if _, ok := lanes.OffsetOf("zzz"); ok {
		t.Error("OffsetOf should report missing lanes")
	}
}
