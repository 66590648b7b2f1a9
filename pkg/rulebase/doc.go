// Package rulebase defines the domain graph model for compliance rule bases.
//
// A rule base is a declarative dataset of rules, country groups, and
// dictionary entries, connected by directed relationship edges. The model is
// independent of any on-screen layout: it describes what exists and how it
// relates, while pkg/layout decides where things go.
//
// # Document Format
//
// The canonical serialization is a document with three top-level members:
//
//	{
//	  "nodes": [...],  // tagged node records
//	  "edges": [...],  // relationship-tagged edges
//	  "stats": {...}   // display-only counts
//	}
//
// Nodes are a tagged union over Variant. Edges carry a Relationship that
// determines both semantics and rendering style:
//
//   - triggered_by_origin always points group → rule
//   - triggered_by_receiving always points rule → group
//   - belongs_to links a country to its membership group
//
// The asymmetry is deliberate: origin conditions are inputs to a rule,
// receiving conditions are its effects.
//
// # Defensive Decoding
//
// Documents arrive from external stores and may be partially loaded or
// stale. Normalize substitutes safe defaults for missing fields instead of
// failing: a group without members is a zero-country group, a node without a
// label displays its ID, and unknown variants are preserved for generic
// rendering. Edges referencing absent nodes are the layout engine's problem
// and are dropped there, never here.
package rulebase
