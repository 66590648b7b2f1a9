package layout

import (
	"encoding/json"
	"fmt"
	"reflect"
	"testing"

	"github.com/complyviz/complyviz/pkg/rulebase"
)

// euDocument is the canonical scenario: one origin group EU = {France,
// Germany, Italy} triggering rule R1, no receiving groups.
func euDocument() rulebase.Document {
	return rulebase.Document{
		Nodes: []rulebase.Node{
			{ID: "EU", Variant: rulebase.VariantCountryGroup, Label: "European Union",
				Countries: []string{"France", "Germany", "Italy"}},
			{ID: "R1", Variant: rulebase.VariantRule, Label: "Transfer restriction",
				Priority: 1, Outcome: rulebase.OutcomeProhibition},
		},
		Edges: []rulebase.Edge{
			{ID: "e1", Source: "EU", Target: "R1", Relationship: rulebase.RelTriggeredByOrigin},
		},
	}
}

func findNode(t *testing.T, r Result, id string) PositionedNode {
	t.Helper()
	for _, n := range r.Nodes {
		if n.ID == id {
			return n
		}
	}
	t.Fatalf("node %s not in result", id)
	return PositionedNode{}
}

func TestComputeCollapsed(t *testing.T) {
	r := Compute(euDocument(), nil)

	if len(r.Nodes) != 2 {
		t.Fatalf("collapsed node count = %d, want 2", len(r.Nodes))
	}
	if len(r.Edges) != 1 {
		t.Fatalf("collapsed edge count = %d, want 1", len(r.Edges))
	}
	e := r.Edges[0]
	if e.Source != "EU" || e.Target != "R1" {
		t.Errorf("edge = %s→%s, want EU→R1", e.Source, e.Target)
	}
	if e.Style != StyleOrigin {
		t.Errorf("edge style = %q, want %q", e.Style, StyleOrigin)
	}

	eu := findNode(t, r, "EU")
	if eu.Height != HeaderHeight {
		t.Errorf("collapsed group height = %v, want %v", eu.Height, HeaderHeight)
	}
	if eu.Position.X != GroupColumnX {
		t.Errorf("group X = %v, want %v", eu.Position.X, GroupColumnX)
	}
	if r1 := findNode(t, r, "R1"); r1.Position.X != RuleColumnX {
		t.Errorf("rule X = %v, want %v", r1.Position.X, RuleColumnX)
	}
}

func TestComputeExpanded(t *testing.T) {
	r := Compute(euDocument(), map[string]bool{"EU": true})

	if len(r.Nodes) != 5 {
		t.Fatalf("expanded node count = %d, want 5", len(r.Nodes))
	}
	if len(r.Edges) != 6 {
		t.Fatalf("expanded edge count = %d, want 6", len(r.Edges))
	}

	eu := findNode(t, r, "EU")
	wantHeight := HeaderHeight + 3*CountryRowHeight
	if eu.Height != wantHeight {
		t.Errorf("expanded group height = %v, want %v", eu.Height, wantHeight)
	}
	if !eu.Data.Expanded {
		t.Error("expanded group should carry Expanded=true in payload")
	}

	// 3 structural group→country edges, 3 rerouted country→rule edges,
	// and zero edges referencing EU as a rule-triggering source.
	var structural, rerouted int
	for _, e := range r.Edges {
		switch {
		case e.Source == "EU":
			structural++
		case e.Target == "R1":
			rerouted++
		}
		if e.Source == "EU" && e.Target == "R1" {
			t.Errorf("suppressed group-level edge emitted: %+v", e)
		}
	}
	if structural != 3 {
		t.Errorf("structural edges = %d, want 3", structural)
	}
	if rerouted != 3 {
		t.Errorf("rerouted edges = %d, want 3", rerouted)
	}

	// Country nodes are scoped by group ID and sit in the country column.
	fr := findNode(t, r, "EU__France")
	if fr.Position.X != CountryColumnX {
		t.Errorf("country X = %v, want %v", fr.Position.X, CountryColumnX)
	}
	if fr.Data.Side != rulebase.SideOrigin {
		t.Errorf("country side = %q, want origin", fr.Data.Side)
	}
	if fr.Data.GroupID != "EU" {
		t.Errorf("country group = %q, want EU", fr.Data.GroupID)
	}
}

func TestIdempotence(t *testing.T) {
	doc := euDocument()
	expanded := map[string]bool{"EU": true}

	a := Compute(doc, expanded)
	b := Compute(doc, expanded)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical inputs produced different results")
	}

	// Byte-identical across serialization too.
	aj, _ := json.Marshal(a)
	bj, _ := json.Marshal(b)
	if string(aj) != string(bj) {
		t.Error("identical inputs produced different serialized payloads")
	}
}

func TestComputeLeavesInputUnchanged(t *testing.T) {
	// A document that needs every normalization step: a node to drop, a
	// stale cached count, and an edge without an ID.
	mk := func() rulebase.Document {
		return rulebase.Document{
			Nodes: []rulebase.Node{
				{Variant: rulebase.VariantRule}, // no ID
				{ID: "g", Variant: rulebase.VariantCountryGroup, CountryCount: 99,
					Countries: []string{"a"}},
				{ID: "r", Variant: rulebase.VariantRule},
			},
			Edges: []rulebase.Edge{
				{Source: "g", Target: "r", Relationship: rulebase.RelTriggeredByOrigin},
			},
		}
	}

	doc := mk()
	first := Compute(doc, nil)
	if !reflect.DeepEqual(doc, mk()) {
		t.Error("layout pass rewrote the caller's document")
	}

	// Recomputing over the same variable must see the same input.
	second := Compute(doc, nil)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeat pass diverged: %d/%d nodes, %d/%d edges",
			len(first.Nodes), len(second.Nodes), len(first.Edges), len(second.Edges))
	}
}

func TestRoundTripToggle(t *testing.T) {
	doc := euDocument()

	before := Compute(doc, map[string]bool{})
	state := NewExpandState()
	state.Toggle("EU")
	_ = Compute(doc, state.Snapshot())
	state.Toggle("EU")
	after := Compute(doc, state.Snapshot())

	if !reflect.DeepEqual(before, after) {
		t.Error("expand then collapse did not restore the pre-expand payload")
	}
}

func TestNodeConservation(t *testing.T) {
	doc := rulebase.Document{
		Nodes: []rulebase.Node{
			{ID: "g1", Variant: rulebase.VariantCountryGroup, Countries: []string{"a", "b"}},
			{ID: "g2", Variant: rulebase.VariantCountryGroup, Countries: []string{"c", "d", "e"}},
			{ID: "g3", Variant: rulebase.VariantCountryGroup},
			{ID: "r1", Variant: rulebase.VariantRule},
			{ID: "r2", Variant: rulebase.VariantRule},
		},
		Edges: []rulebase.Edge{
			{ID: "e1", Source: "g1", Target: "r1", Relationship: rulebase.RelTriggeredByOrigin},
			{ID: "e2", Source: "r2", Target: "g2", Relationship: rulebase.RelTriggeredByReceiving},
		},
	}

	cases := []struct {
		expanded map[string]bool
		want     int // groups + rules + expanded members
	}{
		{nil, 5},
		{map[string]bool{"g1": true}, 7},
		{map[string]bool{"g1": true, "g2": true}, 10},
		{map[string]bool{"g1": true, "g2": true, "g3": true}, 10},
	}
	for i, tc := range cases {
		r := Compute(doc, tc.expanded)
		if len(r.Nodes) != tc.want {
			t.Errorf("case %d: node count = %d, want %d", i, len(r.Nodes), tc.want)
		}
	}
}

func TestUnconnectedGroup(t *testing.T) {
	doc := rulebase.Document{
		Nodes: []rulebase.Node{
			{ID: "iso", Variant: rulebase.VariantCountryGroup, Countries: []string{"x", "y"}},
		},
	}

	for _, expanded := range []map[string]bool{nil, {"iso": true}} {
		r := Compute(doc, expanded)
		if len(r.Edges) != 0 {
			t.Errorf("unconnected group expanded=%v: edge count = %d, want 0",
				expanded != nil, len(r.Edges))
		}
		if _, ok := r.NodeIDs()["iso"]; !ok {
			t.Error("unconnected group node missing from result")
		}
	}
}

func TestExpandedZeroMemberGroupKeepsEdges(t *testing.T) {
	// Expanding a connected group with no members reroutes nothing; its
	// group-level edges stay so the rule is not stranded.
	doc := rulebase.Document{
		Nodes: []rulebase.Node{
			{ID: "g", Variant: rulebase.VariantCountryGroup},
			{ID: "r", Variant: rulebase.VariantRule},
		},
		Edges: []rulebase.Edge{
			{ID: "e", Source: "g", Target: "r", Relationship: rulebase.RelTriggeredByOrigin},
		},
	}

	r := Compute(doc, map[string]bool{"g": true})
	if len(r.Edges) != 1 {
		t.Fatalf("edge count = %d, want 1", len(r.Edges))
	}
	if e := r.Edges[0]; e.Source != "g" || e.Target != "r" {
		t.Errorf("edge = %s→%s, want g→r", e.Source, e.Target)
	}
}

func TestNoDanglingEdges(t *testing.T) {
	// Edge referencing an absent node, from a partially-loaded graph.
	doc := euDocument()
	doc.Edges = append(doc.Edges, rulebase.Edge{
		ID: "stale", Source: "EU", Target: "GHOST",
		Relationship: rulebase.RelTriggeredByOrigin,
	})

	for _, expanded := range []map[string]bool{nil, {"EU": true}} {
		r := Compute(doc, expanded)
		ids := r.NodeIDs()
		for _, e := range r.Edges {
			if !ids[e.Source] || !ids[e.Target] {
				t.Errorf("dangling edge emitted: %s→%s", e.Source, e.Target)
			}
		}
	}
}

func TestReceivingEdgeDirection(t *testing.T) {
	doc := rulebase.Document{
		Nodes: []rulebase.Node{
			{ID: "g", Variant: rulebase.VariantCountryGroup, Countries: []string{"a", "b"}},
			{ID: "r", Variant: rulebase.VariantRule},
		},
		Edges: []rulebase.Edge{
			// Receiving edges point rule→group.
			{ID: "e", Source: "r", Target: "g", Relationship: rulebase.RelTriggeredByReceiving},
		},
	}

	r := Compute(doc, map[string]bool{"g": true})
	var rerouted int
	for _, e := range r.Edges {
		if e.Source == "r" {
			rerouted++
			if e.Style != StyleReceiving {
				t.Errorf("receiving edge style = %q", e.Style)
			}
			if e.Target == "g" {
				t.Error("group-level receiving edge not suppressed")
			}
		}
	}
	if rerouted != 2 {
		t.Errorf("rerouted receiving edges = %d, want 2", rerouted)
	}
}

func TestSharedCountryNameAcrossGroups(t *testing.T) {
	// The same country name in two expanded groups must not collide:
	// synthetic IDs are scoped by group.
	doc := rulebase.Document{
		Nodes: []rulebase.Node{
			{ID: "g1", Variant: rulebase.VariantCountryGroup, Countries: []string{"France"}},
			{ID: "g2", Variant: rulebase.VariantCountryGroup, Countries: []string{"France"}},
			{ID: "r", Variant: rulebase.VariantRule},
		},
		Edges: []rulebase.Edge{
			{ID: "e1", Source: "g1", Target: "r", Relationship: rulebase.RelTriggeredByOrigin},
			{ID: "e2", Source: "g2", Target: "r", Relationship: rulebase.RelTriggeredByOrigin},
		},
	}

	r := Compute(doc, map[string]bool{"g1": true, "g2": true})

	seen := make(map[string]bool)
	for _, n := range r.Nodes {
		if seen[n.ID] {
			t.Errorf("duplicate node ID %q", n.ID)
		}
		seen[n.ID] = true
	}
	seenEdges := make(map[string]bool)
	for _, e := range r.Edges {
		if seenEdges[e.ID] {
			t.Errorf("duplicate edge ID %q", e.ID)
		}
		seenEdges[e.ID] = true
	}
	if !seen["g1__France"] || !seen["g2__France"] {
		t.Error("group-scoped country nodes missing")
	}
}

func TestMalformedPayloadDefaults(t *testing.T) {
	// Group with nil member list and a node without an ID must not break
	// the pass.
	doc := rulebase.Document{
		Nodes: []rulebase.Node{
			{ID: "g", Variant: rulebase.VariantCountryGroup, Countries: nil},
			{Variant: rulebase.VariantRule}, // no ID: dropped
			{ID: "weird", Variant: "hologram", Label: "??"},
		},
	}

	r := Compute(doc, map[string]bool{"g": true})
	if len(r.Nodes) != 2 {
		t.Fatalf("node count = %d, want 2 (group + unknown variant)", len(r.Nodes))
	}
	g := findNode(t, r, "g")
	if g.Height != HeaderHeight {
		t.Errorf("zero-country expanded group height = %v, want header only", g.Height)
	}
	w := findNode(t, r, "weird")
	if w.Data.DisplayLabel() != "??" {
		t.Errorf("unknown variant label = %q", w.Data.DisplayLabel())
	}
}

func TestNoOverlapWithinColumns(t *testing.T) {
	doc := rulebase.Document{
		Nodes: []rulebase.Node{
			{ID: "g1", Variant: rulebase.VariantCountryGroup, Countries: []string{"a", "b", "c", "d"}},
			{ID: "g2", Variant: rulebase.VariantCountryGroup, Countries: []string{"e"}},
			{ID: "g3", Variant: rulebase.VariantCountryGroup, Countries: []string{"f", "g"}},
			{ID: "r1", Variant: rulebase.VariantRule},
			{ID: "r2", Variant: rulebase.VariantRule},
		},
		Edges: []rulebase.Edge{
			{ID: "e1", Source: "g1", Target: "r1", Relationship: rulebase.RelTriggeredByOrigin},
			{ID: "e2", Source: "g2", Target: "r1", Relationship: rulebase.RelTriggeredByOrigin},
			{ID: "e3", Source: "g3", Target: "r2", Relationship: rulebase.RelTriggeredByOrigin},
		},
	}

	r := Compute(doc, map[string]bool{"g1": true, "g2": true, "g3": true})

	byColumn := make(map[float64][]PositionedNode)
	for _, n := range r.Nodes {
		byColumn[n.Position.X] = append(byColumn[n.Position.X], n)
	}
	for x, col := range byColumn {
		for i := 0; i < len(col); i++ {
			for j := i + 1; j < len(col); j++ {
				a, b := col[i], col[j]
				if a.Position.Y < b.Position.Y+b.Height && b.Position.Y < a.Position.Y+a.Height {
					t.Errorf("column %v: nodes %s and %s overlap", x, a.ID, b.ID)
				}
			}
		}
	}
}

func TestRuleBlockCentering(t *testing.T) {
	doc := euDocument()
	r := Compute(doc, map[string]bool{"EU": true})

	occupied := HeaderHeight + 3*CountryRowHeight // single group, expanded
	wantStart := (occupied - RuleRowHeight) / 2
	r1 := findNode(t, r, "R1")
	if r1.Position.Y != wantStart {
		t.Errorf("rule Y = %v, want %v", r1.Position.Y, wantStart)
	}
}

func TestEdgeConservationCollapsed(t *testing.T) {
	// Group with k origin-triggered rules: exactly k edges reference it as
	// source while collapsed.
	const k = 4
	doc := rulebase.Document{
		Nodes: []rulebase.Node{
			{ID: "g", Variant: rulebase.VariantCountryGroup, Countries: []string{"a"}},
		},
	}
	for i := 0; i < k; i++ {
		id := fmt.Sprintf("r%d", i)
		doc.Nodes = append(doc.Nodes, rulebase.Node{ID: id, Variant: rulebase.VariantRule})
		doc.Edges = append(doc.Edges, rulebase.Edge{
			ID: "e" + id, Source: "g", Target: id,
			Relationship: rulebase.RelTriggeredByOrigin,
		})
	}

	r := Compute(doc, nil)
	var fromGroup int
	for _, e := range r.Edges {
		if e.Source == "g" {
			fromGroup++
		}
	}
	if fromGroup != k {
		t.Errorf("edges from collapsed group = %d, want %d", fromGroup, k)
	}
}

func TestComputeEmptyDocument(t *testing.T) {
	r := Compute(rulebase.Document{}, nil)
	if r.Nodes == nil || r.Edges == nil {
		t.Error("empty document should produce empty, non-nil slices")
	}
	if len(r.Nodes) != 0 || len(r.Edges) != 0 {
		t.Errorf("empty document produced %d nodes, %d edges", len(r.Nodes), len(r.Edges))
	}
}
