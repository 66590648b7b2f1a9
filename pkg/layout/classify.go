package layout

import (
	"sort"

	"github.com/complyviz/complyviz/pkg/rulebase"
)

// =============================================================================
// Group Classifier
// =============================================================================

// Classification records which country groups participate in rule
// triggering, keyed by group ID. A group can be in both sets; a group in
// neither is "unconnected" and is still drawn, disconnected.
type Classification struct {
	Origin    map[string]bool
	Receiving map[string]bool
}

// Classify partitions country groups by their edge relationships:
// a group that is the source of a triggered_by_origin edge is an origin
// group, and a group that is the target of a triggered_by_receiving edge is
// a receiving group. Absent edges simply produce empty sets; no errors are
// possible.
func Classify(edges []rulebase.Edge) Classification {
	c := Classification{
		Origin:    make(map[string]bool),
		Receiving: make(map[string]bool),
	}
	for _, e := range edges {
		switch e.Relationship {
		case rulebase.RelTriggeredByOrigin:
			c.Origin[e.Source] = true
		case rulebase.RelTriggeredByReceiving:
			c.Receiving[e.Target] = true
		}
	}
	return c
}

// IsConnected reports whether the group participates in any trigger edge.
func (c Classification) IsConnected(groupID string) bool {
	return c.Origin[groupID] || c.Receiving[groupID]
}

// Side derives the country side for members of the group.
// Origin wins when a group is both, matching the edge direction convention
// that origin conditions are inputs.
func (c Classification) Side(groupID string) string {
	switch {
	case c.Origin[groupID]:
		return rulebase.SideOrigin
	case c.Receiving[groupID]:
		return rulebase.SideReceiving
	default:
		return ""
	}
}

// rank orders groups for packing: origin-only before both, both before
// receiving-only, receiving-only before unconnected.
func (c Classification) rank(groupID string) int {
	switch {
	case c.Origin[groupID] && c.Receiving[groupID]:
		return 1
	case c.Origin[groupID]:
		return 0
	case c.Receiving[groupID]:
		return 2
	default:
		return 3
	}
}

// OrderGroups sorts group nodes by classification rank. The sort is stable:
// ties preserve the input order, which keeps the layout deterministic across
// refreshes of the same document.
func OrderGroups(groups []rulebase.Node, c Classification) []rulebase.Node {
	ordered := make([]rulebase.Node, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return c.rank(ordered[i].ID) < c.rank(ordered[j].ID)
	})
	return ordered
}
