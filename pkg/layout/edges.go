package layout

import "github.com/complyviz/complyviz/pkg/rulebase"

// =============================================================================
// Edge Synthesizer
// =============================================================================

// synthesizeEdges produces the edge set consistent with the current
// expand/collapse state. It branches per group on (connected, expanded):
//
//   - collapsed + connected: domain edges pass through unchanged
//   - expanded + connected: one structural group→country edge per member,
//     plus one copy of each incident domain edge per member with the group
//     endpoint replaced by the member's synthetic node ID; the group-level
//     originals are suppressed entirely. A group with no members reroutes
//     nothing and keeps its originals, so its rules are never stranded
//   - unconnected: no trigger or structural edges regardless of expand state
//
// Non-trigger relationships pass through untouched; they never classify a
// group and are never rerouted.
//
// The rewrite is a pure filter-then-append over the immutable input list:
// no index-based splicing, no order dependence. Edges whose endpoints do
// not resolve in the emitted node set are dropped by the caller's final
// filter, never emitted dangling.
func synthesizeEdges(doc *rulebase.Document, c Classification, expanded map[string]bool) []RenderEdge {
	// Expanded, connected groups whose member lists are non-empty get their
	// domain edges rerouted; everything else passes through.
	reroute := make(map[string][]string)
	for _, g := range doc.Groups() {
		if expanded[g.ID] && c.IsConnected(g.ID) && len(g.Countries) > 0 {
			reroute[g.ID] = g.Countries
		}
	}

	var out []RenderEdge

	// Structural group→country links for every rerouted group, in group
	// order, before any rerouted domain edges.
	for _, g := range doc.Groups() {
		countries, ok := reroute[g.ID]
		if !ok {
			continue
		}
		for _, country := range countries {
			cid := CountryNodeID(g.ID, country)
			out = append(out, RenderEdge{
				ID:     "m-" + cid,
				Source: g.ID,
				Target: cid,
				Style:  StyleOrigin,
			})
		}
	}

	for _, e := range doc.Edges {
		if !e.IsTrigger() {
			// Non-trigger relationships (membership, unknown) are never
			// incident to a rerouted group endpoint; they pass through and
			// survive only if both endpoints are drawn.
			out = append(out, RenderEdge{
				ID:     e.ID,
				Source: e.Source,
				Target: e.Target,
				Style:  StyleFor(e.Relationship),
			})
			continue
		}
		srcCountries, srcRerouted := reroute[e.Source]
		dstCountries, dstRerouted := reroute[e.Target]

		switch {
		case srcRerouted:
			// Origin side expanded: one copy per member country as source.
			for _, country := range srcCountries {
				cid := CountryNodeID(e.Source, country)
				out = append(out, RenderEdge{
					ID:     e.ID + "__" + cid,
					Source: cid,
					Target: e.Target,
					Style:  StyleFor(e.Relationship),
				})
			}
		case dstRerouted:
			// Receiving side expanded: one copy per member country as target.
			for _, country := range dstCountries {
				cid := CountryNodeID(e.Target, country)
				out = append(out, RenderEdge{
					ID:     e.ID + "__" + cid,
					Source: e.Source,
					Target: cid,
					Style:  StyleFor(e.Relationship),
				})
			}
		default:
			out = append(out, RenderEdge{
				ID:     e.ID,
				Source: e.Source,
				Target: e.Target,
				Style:  StyleFor(e.Relationship),
			})
		}
	}

	return out
}

// filterDangling drops edges whose source or target is not in the emitted
// node set. The layout must never hand the renderer a dangling edge, even
// from a partially-loaded or stale domain graph.
func filterDangling(edges []RenderEdge, nodeIDs map[string]bool) []RenderEdge {
	out := make([]RenderEdge, 0, len(edges))
	for _, e := range edges {
		if nodeIDs[e.Source] && nodeIDs[e.Target] {
			out = append(out, e)
		}
	}
	return out
}
