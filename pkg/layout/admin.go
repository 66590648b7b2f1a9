package layout

import "github.com/complyviz/complyviz/pkg/rulebase"

// =============================================================================
// Admin Lane Variant
// =============================================================================

// Admin lane names, left to right.
const (
	LaneGroups    = "groups"
	LaneRules     = "rules"
	LaneProcesses = "processes"
	LanePurposes  = "purposes"
	LaneSubjects  = "subjects"
)

// AdminLanes returns the five named lanes of the admin layout with their
// nominal widths, all open.
func AdminLanes() *LaneSet {
	return NewLaneSet(
		Lane{Name: LaneGroups, Label: "Country Groups", Width: 280},
		Lane{Name: LaneRules, Label: "Rules", Width: 280},
		Lane{Name: LaneProcesses, Label: "Processes", Width: 240},
		Lane{Name: LanePurposes, Label: "Purposes", Width: 240},
		Lane{Name: LaneSubjects, Label: "Data Subjects", Width: 240},
	)
}

// laneFor assigns a node to its admin lane. Dictionary entries dispatch on
// category; unknown variants land in the subjects lane, label-only.
func laneFor(n rulebase.Node) string {
	switch n.Variant {
	case rulebase.VariantCountryGroup:
		return LaneGroups
	case rulebase.VariantRule:
		return LaneRules
	case rulebase.VariantEntry:
		switch n.Category {
		case rulebase.CategoryProcess:
			return LaneProcesses
		case rulebase.CategoryPurpose:
			return LanePurposes
		default:
			return LaneSubjects
		}
	default:
		return LaneSubjects
	}
}

// ComputeAdmin lays the document out across the five admin lanes. No edge
// synthesis is performed: the admin view is a flat inventory with per-node
// context actions, not a connectivity diagram. Countries never appear;
// groups stay collapsed in this variant.
//
// Like Compute, the function is pure and total: identical inputs yield
// identical output, and malformed nodes degrade to label-only placement.
func ComputeAdmin(doc rulebase.Document, lanes *LaneSet) Result {
	rulebase.Normalize(&doc)
	if lanes == nil {
		lanes = AdminLanes()
	}

	cursors := make(map[string]float64, len(lanes.Lanes()))
	var nodes []PositionedNode

	for _, n := range doc.Nodes {
		if n.IsCountry() {
			continue
		}
		lane := laneFor(n)
		x, ok := lanes.OffsetOf(lane)
		if !ok {
			continue
		}
		width := lanes.EffectiveWidth(lane) - RowGap
		if width < CollapsedLaneWidth {
			width = CollapsedLaneWidth
		}
		nodes = append(nodes, PositionedNode{
			ID:       n.ID,
			Variant:  n.Variant,
			Position: Position{X: x, Y: cursors[lane]},
			Width:    width,
			Height:   HeaderHeight,
			Data:     n,
		})
		cursors[lane] += HeaderHeight + RowGap
	}

	result := Result{
		Nodes:  nodes,
		Edges:  []RenderEdge{},
		Width:  lanes.TotalWidth(),
		Height: maxExtent(nodes),
	}
	if result.Nodes == nil {
		result.Nodes = []PositionedNode{}
	}
	return result
}

// =============================================================================
// Context Actions
// =============================================================================

// Action operations dispatched to external mutation endpoints.
const (
	OpEdit   = "edit"
	OpDelete = "delete"
)

// ContextAction is one entry of a node's context menu. Effects are
// descriptors, not callbacks: the shell resolves Op+TargetID against its
// mutation endpoints and refetches the domain graph on success. The layout
// engine is unaware of the mutation beyond receiving a new document.
type ContextAction struct {
	Label    string `json:"label"`
	Op       string `json:"op"`
	TargetID string `json:"target_id"`
}

// ActionsFor returns the context menu for a node, dispatched exhaustively
// by variant. Unknown variants get no actions; they are display-only.
func ActionsFor(n rulebase.Node) []ContextAction {
	switch n.Variant {
	case rulebase.VariantRule:
		return []ContextAction{
			{Label: "Edit rule", Op: OpEdit, TargetID: n.ID},
			{Label: "Delete rule", Op: OpDelete, TargetID: n.ID},
		}
	case rulebase.VariantCountryGroup:
		return []ContextAction{
			{Label: "Edit group", Op: OpEdit, TargetID: n.ID},
			{Label: "Delete group", Op: OpDelete, TargetID: n.ID},
		}
	case rulebase.VariantEntry:
		return []ContextAction{
			{Label: "Edit entry", Op: OpEdit, TargetID: n.ID},
			{Label: "Delete entry", Op: OpDelete, TargetID: n.ID},
		}
	case rulebase.VariantCountry:
		// Countries are derived; they are edited through their group.
		return nil
	default:
		return nil
	}
}
