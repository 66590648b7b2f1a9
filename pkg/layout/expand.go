package layout

import "sync"

// =============================================================================
// Expand/Collapse State
// =============================================================================

// ExpandState is the set of expanded group IDs: the sole mutable input to
// the layout engine besides the domain graph itself. Every group starts
// collapsed; Toggle flips membership and is the only mutation the UI layer
// performs. State is keyed by group ID, independent of the domain graph's
// identity, so regenerating the graph never silently drops expand state for
// groups that still exist.
//
// ExpandState is safe for concurrent use. Compute never reads it directly:
// callers pass Snapshot so the layout function closes over no mutable state.
type ExpandState struct {
	mu  sync.RWMutex
	ids map[string]bool
}

// NewExpandState creates an empty state (all groups collapsed).
func NewExpandState() *ExpandState {
	return &ExpandState{ids: make(map[string]bool)}
}

// ExpandAll returns a state pre-populated with the given group IDs, for
// shells that mount with everything open.
func ExpandAll(groupIDs []string) *ExpandState {
	s := NewExpandState()
	for _, id := range groupIDs {
		s.ids[id] = true
	}
	return s
}

// Toggle flips the expand state of the group and reports the new state.
func (s *ExpandState) Toggle(groupID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ids[groupID] {
		delete(s.ids, groupID)
		return false
	}
	s.ids[groupID] = true
	return true
}

// IsExpanded reports whether the group is currently expanded.
func (s *ExpandState) IsExpanded(groupID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids[groupID]
}

// Snapshot returns an immutable copy of the expanded-ID set.
// The copy is taken atomically; no interleaved partial reads are possible.
func (s *ExpandState) Snapshot() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := make(map[string]bool, len(s.ids))
	for id := range s.ids {
		snap[id] = true
	}
	return snap
}

// Len returns the number of expanded groups.
func (s *ExpandState) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
