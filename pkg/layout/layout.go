package layout

import "github.com/complyviz/complyviz/pkg/rulebase"

// =============================================================================
// Layout Orchestrator
// =============================================================================

// Compute is the layout engine: a pure function from an immutable domain
// graph snapshot and an expanded-group set to a render payload. It never
// fails; anomalies in the input are recovered with defensive defaults.
//
// The caller owns both inputs. Compute does not retain or mutate them, and
// invoking it twice with identical inputs yields identical output.
func Compute(doc rulebase.Document, expanded map[string]bool) Result {
	rulebase.Normalize(&doc)
	if expanded == nil {
		expanded = map[string]bool{}
	}

	c := Classify(doc.Edges)
	groups := OrderGroups(doc.Groups(), c)
	rules := doc.Rules()

	var nodes []PositionedNode
	var p packer

	// Group column, with member countries in the adjacent column.
	for _, g := range groups {
		open := expanded[g.ID]
		pl := p.placeGroup(len(g.Countries), open)

		g.Expanded = open
		nodes = append(nodes, PositionedNode{
			ID:       g.ID,
			Variant:  g.Variant,
			Position: Position{X: GroupColumnX, Y: pl.GroupY},
			Width:    NodeWidth,
			Height:   pl.GroupHeight,
			Data:     g,
		})

		if !open {
			continue
		}
		side := c.Side(g.ID)
		for i, country := range g.Countries {
			nodes = append(nodes, PositionedNode{
				ID:      CountryNodeID(g.ID, country),
				Variant: rulebase.VariantCountry,
				Position: Position{
					X: CountryColumnX,
					Y: pl.CountryStartY + float64(i)*CountryRowHeight,
				},
				Width:  NodeWidth,
				Height: CountryRowHeight,
				Data: rulebase.Node{
					ID:      CountryNodeID(g.ID, country),
					Variant: rulebase.VariantCountry,
					Label:   country,
					GroupID: g.ID,
					Side:    side,
				},
			})
		}
	}

	occupied := p.occupiedHeight()

	// Rule column, vertically centered as a block against the occupied
	// height of the group/country columns.
	ruleYs := packRules(len(rules), occupied)
	for i, r := range rules {
		nodes = append(nodes, PositionedNode{
			ID:       r.ID,
			Variant:  r.Variant,
			Position: Position{X: RuleColumnX, Y: ruleYs[i]},
			Width:    NodeWidth,
			Height:   RuleRowHeight - RowGap,
			Data:     r,
		})
	}

	// Anything that is neither a group nor a rule (dictionary entries,
	// unknown variants) is still drawn: stacked below the rule block,
	// label-only.
	extraY := occupied
	if len(ruleYs) > 0 {
		if bottom := ruleYs[len(ruleYs)-1] + RuleRowHeight; bottom > extraY {
			extraY = bottom
		}
	}
	for _, n := range doc.Nodes {
		if n.IsCountryGroup() || n.IsRule() {
			continue
		}
		nodes = append(nodes, PositionedNode{
			ID:       n.ID,
			Variant:  n.Variant,
			Position: Position{X: RuleColumnX, Y: extraY},
			Width:    NodeWidth,
			Height:   CountryRowHeight,
			Data:     n,
		})
		extraY += CountryRowHeight + RowGap
	}

	result := Result{Nodes: nodes}
	result.Edges = filterDangling(synthesizeEdges(&doc, c, expanded), result.NodeIDs())
	result.Width = RuleColumnX + NodeWidth
	result.Height = maxExtent(nodes)
	if result.Nodes == nil {
		result.Nodes = []PositionedNode{}
	}
	if result.Edges == nil {
		result.Edges = []RenderEdge{}
	}
	return result
}

// maxExtent returns the bottom-most occupied Y coordinate.
func maxExtent(nodes []PositionedNode) float64 {
	var h float64
	for _, n := range nodes {
		if bottom := n.Position.Y + n.Height; bottom > h {
			h = bottom
		}
	}
	return h
}
