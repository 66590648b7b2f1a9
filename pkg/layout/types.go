package layout

import "github.com/complyviz/complyviz/pkg/rulebase"

// =============================================================================
// Geometry Constants
// =============================================================================

// Column X offsets for the fixed 3-column mode.
const (
	GroupColumnX   = 0.0
	CountryColumnX = 280.0
	RuleColumnX    = 560.0
)

// Vertical metrics in user units.
const (
	// HeaderHeight is the height of a collapsed group header row.
	HeaderHeight = 48.0

	// CountryRowHeight is the height of one member-country row.
	CountryRowHeight = 32.0

	// RuleRowHeight is the vertical space one rule node consumes.
	RuleRowHeight = 64.0

	// RowGap separates consecutive entries within a column.
	RowGap = 16.0
)

// CollapsedLaneWidth is the stub width of a collapsed named lane.
const CollapsedLaneWidth = 30.0

// NodeWidth is the nominal drawn width of a node in its column.
const NodeWidth = 220.0

// =============================================================================
// Edge Styles
// =============================================================================

// Edge rendering styles, a pure function of the relationship tag.
// Synthetic group→country structural edges reuse the origin style.
const (
	StyleOrigin    = "origin"
	StyleReceiving = "receiving"
)

// StyleFor maps a domain relationship to its rendering style.
// Unknown relationships and structural membership take the origin style.
func StyleFor(relationship string) string {
	if relationship == rulebase.RelTriggeredByReceiving {
		return StyleReceiving
	}
	return StyleOrigin
}

// =============================================================================
// Render Payload
// =============================================================================

// Position is a 2-D coordinate in user units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PositionedNode is one node of the render payload, handed to the external
// graph-rendering component. Data carries the originating domain node (with
// Expanded reflecting the current toggle state); synthetic country nodes
// carry a derived node with GroupID and Side filled in.
type PositionedNode struct {
	ID       string        `json:"id"`
	Variant  string        `json:"variant"`
	Position Position      `json:"position"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Data     rulebase.Node `json:"data"`
}

// RenderEdge is one styled edge of the render payload.
type RenderEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Style  string `json:"style"`
}

// Result is the complete render payload for one layout pass.
type Result struct {
	Nodes []PositionedNode `json:"nodes"`
	Edges []RenderEdge     `json:"edges"`

	// Width and Height are the occupied extent, for viewport sizing.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NodeIDs returns the set of emitted node IDs.
func (r *Result) NodeIDs() map[string]bool {
	ids := make(map[string]bool, len(r.Nodes))
	for _, n := range r.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// CountryNodeID returns the synthetic node ID for a member country of a
// group. IDs are scoped by group so the same country name in two expanded
// groups never collides.
func CountryNodeID(groupID, country string) string {
	return groupID + "__" + country
}
