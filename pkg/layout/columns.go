package layout

// =============================================================================
// Lane/Column Assigner
// =============================================================================

// Lane is a named, independently collapsible horizontal band. Collapsing a
// lane shrinks it to a fixed stub width; it never removes nodes, which
// distinguishes lane toggling from group expand/collapse.
type Lane struct {
	Name  string
	Label string
	Width float64
}

// LaneSet is an ordered list of lanes with per-lane collapse state.
// X offsets accumulate left-to-right as a running sum over effective widths.
type LaneSet struct {
	lanes     []Lane
	collapsed map[string]bool
}

// NewLaneSet creates a lane set with all lanes open.
func NewLaneSet(lanes ...Lane) *LaneSet {
	return &LaneSet{
		lanes:     lanes,
		collapsed: make(map[string]bool),
	}
}

// Lanes returns the lanes in order.
func (s *LaneSet) Lanes() []Lane { return s.lanes }

// Toggle flips the collapse state of the named lane.
// Unknown names are ignored.
func (s *LaneSet) Toggle(name string) {
	for _, l := range s.lanes {
		if l.Name == name {
			s.collapsed[name] = !s.collapsed[name]
			return
		}
	}
}

// IsCollapsed reports whether the named lane is collapsed.
func (s *LaneSet) IsCollapsed(name string) bool { return s.collapsed[name] }

// EffectiveWidth returns the lane's current width: its nominal width when
// open, the fixed stub when collapsed.
func (s *LaneSet) EffectiveWidth(name string) float64 {
	for _, l := range s.lanes {
		if l.Name == name {
			if s.collapsed[name] {
				return CollapsedLaneWidth
			}
			return l.Width
		}
	}
	return 0
}

// Offsets returns the left X offset of each lane in order, as a running sum
// over effective widths. Toggling a lane only changes offsets to its right.
func (s *LaneSet) Offsets() []float64 {
	offsets := make([]float64, len(s.lanes))
	var x float64
	for i, l := range s.lanes {
		offsets[i] = x
		x += s.EffectiveWidth(l.Name)
	}
	return offsets
}

// OffsetOf returns the left X offset of the named lane and whether it exists.
func (s *LaneSet) OffsetOf(name string) (float64, bool) {
	offsets := s.Offsets()
	for i, l := range s.lanes {
		if l.Name == name {
			return offsets[i], true
		}
	}
	return 0, false
}

// TotalWidth returns the summed effective width of all lanes.
func (s *LaneSet) TotalWidth() float64 {
	var x float64
	for _, l := range s.lanes {
		x += s.EffectiveWidth(l.Name)
	}
	return x
}
