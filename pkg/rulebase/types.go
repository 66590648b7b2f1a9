package rulebase

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node variants.
const (
	VariantRule         = "rule"
	VariantCountryGroup = "country_group"
	VariantCountry      = "country"
	VariantEntry        = "entry"
)

// Edge relationships.
const (
	RelTriggeredByOrigin    = "triggered_by_origin"
	RelTriggeredByReceiving = "triggered_by_receiving"
	RelBelongsTo            = "belongs_to"
)

// Rule outcomes.
const (
	OutcomePermission  = "permission"
	OutcomeProhibition = "prohibition"
)

// Country sides, derived from the classification of the membership group.
const (
	SideOrigin    = "origin"
	SideReceiving = "receiving"
)

// Dictionary entry categories for the admin lane variant.
const (
	CategoryProcess = "process"
	CategoryPurpose = "purpose"
	CategorySubject = "subject"
)

// =============================================================================
// Node - Tagged Union
// =============================================================================

// Node is the unified node type for all rule-base graphs.
// Variant selects which payload fields are meaningful:
//
//	country_group: Countries, CountryCount, Expanded
//	rule:          Priority, Outcome, RequiresPII
//	country:       GroupID, Side (both derived, never stored)
//	entry:         Category
//
// Unknown variants are preserved and rendered generically with only the
// label shown.
type Node struct {
	ID      string `json:"id" bson:"id"`
	Variant string `json:"variant" bson:"variant"`
	Label   string `json:"label,omitempty" bson:"label,omitempty"`

	// Country group payload
	Countries    []string `json:"countries,omitempty" bson:"countries,omitempty"`
	CountryCount int      `json:"country_count,omitempty" bson:"country_count,omitempty"`
	Expanded     bool     `json:"-" bson:"-"` // UI-owned, not persisted

	// Rule payload
	Priority    int    `json:"priority,omitempty" bson:"priority,omitempty"`
	Outcome     string `json:"outcome,omitempty" bson:"outcome,omitempty"`
	RequiresPII bool   `json:"requires_pii,omitempty" bson:"requires_pii,omitempty"`

	// Country payload (derived)
	GroupID string `json:"group_id,omitempty" bson:"group_id,omitempty"`
	Side    string `json:"side,omitempty" bson:"side,omitempty"`

	// Dictionary entry payload
	Category string `json:"category,omitempty" bson:"category,omitempty"`
}

// IsRule reports whether the node is a rule.
func (n *Node) IsRule() bool { return n.Variant == VariantRule }

// IsCountryGroup reports whether the node is a country group.
func (n *Node) IsCountryGroup() bool { return n.Variant == VariantCountryGroup }

// IsCountry reports whether the node is an individual country.
func (n *Node) IsCountry() bool { return n.Variant == VariantCountry }

// IsKnownVariant reports whether the variant is one this package defines.
// Nodes with unknown variants are still drawn, label-only.
func (n *Node) IsKnownVariant() bool {
	switch n.Variant {
	case VariantRule, VariantCountryGroup, VariantCountry, VariantEntry:
		return true
	}
	return false
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// MemberCount returns the number of member countries, preferring the actual
// member list over the cached count when they disagree.
func (n *Node) MemberCount() int {
	if len(n.Countries) > 0 {
		return len(n.Countries)
	}
	return n.CountryCount
}

// =============================================================================
// Edge - Relationship-Tagged Connection
// =============================================================================

// Edge is a directed, relationship-tagged connection between two nodes.
type Edge struct {
	ID           string `json:"id" bson:"id"`
	Source       string `json:"source" bson:"source"`
	Target       string `json:"target" bson:"target"`
	Relationship string `json:"relationship" bson:"relationship"`
}

// IsTrigger reports whether the edge is a rule-triggering relationship
// (origin or receiving), as opposed to structural membership.
func (e *Edge) IsTrigger() bool {
	return e.Relationship == RelTriggeredByOrigin || e.Relationship == RelTriggeredByReceiving
}

// =============================================================================
// Document - Top-Level Input Contract
// =============================================================================

// Stats carries display-only totals. Layout logic never consumes these;
// they exist for UI chrome and are recomputed by the store on mutation.
type Stats struct {
	Rules  int `json:"rules" bson:"rules"`
	Groups int `json:"groups" bson:"groups"`
	Edges  int `json:"edges" bson:"edges"`
}

// Document is the top-level domain graph: the input contract between the
// external data source and the layout engine. It is treated as immutable
// for the duration of one layout pass.
type Document struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
	Stats Stats  `json:"stats" bson:"stats"`
}

// Groups returns the country-group nodes in document order.
func (d *Document) Groups() []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.IsCountryGroup() {
			out = append(out, n)
		}
	}
	return out
}

// Rules returns the rule nodes in document order.
func (d *Document) Rules() []Node {
	var out []Node
	for _, n := range d.Nodes {
		if n.IsRule() {
			out = append(out, n)
		}
	}
	return out
}

// Node returns the node with the given ID, or false if absent.
func (d *Document) Node(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// ComputeStats recalculates the display totals from the node and edge lists.
func (d *Document) ComputeStats() Stats {
	s := Stats{Edges: len(d.Edges)}
	for _, n := range d.Nodes {
		switch n.Variant {
		case VariantRule:
			s.Rules++
		case VariantCountryGroup:
			s.Groups++
		}
	}
	return s
}
