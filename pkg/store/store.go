// Package store persists the compliance rule base and materializes it as a
// domain graph document.
//
// The rule base is three collections: rules, country groups, and dictionary
// entries. Rules reference the groups that trigger them; LoadGraph turns
// those references into the relationship-tagged edges the layout engine
// consumes. Two backends are provided, following the same
// interface-plus-backends pattern used throughout the codebase:
//
//   - MemoryStore: process-local, for tests and single-binary usage
//   - MongoStore: document database for server deployments
//
// Mutations (create/update/delete) are request/response operations whose
// success obligates the caller to refetch the graph; the store never pushes
// updates.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/complyviz/complyviz/pkg/rulebase"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidRecord is returned when a record fails validation.
	ErrInvalidRecord = errors.New("invalid record")
)

// =============================================================================
// Records
// =============================================================================

// Rule is a stored compliance rule. OriginGroupIDs and ReceivingGroupIDs
// reference country groups; they become triggered_by_origin (group→rule)
// and triggered_by_receiving (rule→group) edges respectively.
type Rule struct {
	ID                string   `json:"id" bson:"_id"`
	Name              string   `json:"name" bson:"name"`
	Priority          int      `json:"priority" bson:"priority"`
	Outcome           string   `json:"outcome" bson:"outcome"`
	RequiresPII       bool     `json:"requires_pii" bson:"requires_pii"`
	OriginGroupIDs    []string `json:"origin_group_ids" bson:"origin_group_ids"`
	ReceivingGroupIDs []string `json:"receiving_group_ids" bson:"receiving_group_ids"`
}

// CountryGroup is a stored, named set of countries.
type CountryGroup struct {
	ID        string   `json:"id" bson:"_id"`
	Name      string   `json:"name" bson:"name"`
	Countries []string `json:"countries" bson:"countries"`
}

// DictionaryEntry is a stored admin-vocabulary record (process, purpose,
// or data subject).
type DictionaryEntry struct {
	ID       string `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	Category string `json:"category" bson:"category"`
}

// =============================================================================
// Store Interface
// =============================================================================

// Store is the persistence interface for the rule base.
// All methods are safe for concurrent use.
type Store interface {
	// LoadGraph materializes the current rule base as a domain graph
	// document, nodes and relationship edges included.
	LoadGraph(ctx context.Context) (rulebase.Document, error)

	CreateRule(ctx context.Context, r Rule) (Rule, error)
	UpdateRule(ctx context.Context, r Rule) error
	DeleteRule(ctx context.Context, id string) error

	CreateGroup(ctx context.Context, g CountryGroup) (CountryGroup, error)
	UpdateGroup(ctx context.Context, g CountryGroup) error
	DeleteGroup(ctx context.Context, id string) error

	CreateEntry(ctx context.Context, e DictionaryEntry) (DictionaryEntry, error)
	UpdateEntry(ctx context.Context, e DictionaryEntry) error
	DeleteEntry(ctx context.Context, id string) error

	// Source identifies the backend for cache keying.
	Source() string

	Close(ctx context.Context) error
}

// =============================================================================
// Graph Materialization
// =============================================================================

// BuildDocument converts rule-base collections into a normalized domain
// graph document. Output order is deterministic: groups sorted by ID, then
// rules by (priority, ID), then dictionary entries by ID; edges follow rule
// order. Group references that do not resolve are skipped — the layout
// engine would drop the resulting dangling edges anyway, so they are never
// produced.
func BuildDocument(rules []Rule, groups []CountryGroup, entries []DictionaryEntry) rulebase.Document {
	groups = append([]CountryGroup(nil), groups...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })

	rules = append([]Rule(nil), rules...)
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority < rules[j].Priority
		}
		return rules[i].ID < rules[j].ID
	})

	entries = append([]DictionaryEntry(nil), entries...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	var doc rulebase.Document
	known := make(map[string]bool, len(groups))

	for _, g := range groups {
		known[g.ID] = true
		doc.Nodes = append(doc.Nodes, rulebase.Node{
			ID:        g.ID,
			Variant:   rulebase.VariantCountryGroup,
			Label:     g.Name,
			Countries: append([]string(nil), g.Countries...),
		})
	}
	for _, r := range rules {
		doc.Nodes = append(doc.Nodes, rulebase.Node{
			ID:          r.ID,
			Variant:     rulebase.VariantRule,
			Label:       r.Name,
			Priority:    r.Priority,
			Outcome:     r.Outcome,
			RequiresPII: r.RequiresPII,
		})
	}
	for _, e := range entries {
		doc.Nodes = append(doc.Nodes, rulebase.Node{
			ID:       e.ID,
			Variant:  rulebase.VariantEntry,
			Label:    e.Name,
			Category: e.Category,
		})
	}

	for _, r := range rules {
		for _, gid := range r.OriginGroupIDs {
			if !known[gid] {
				continue
			}
			doc.Edges = append(doc.Edges, rulebase.Edge{
				ID:           fmt.Sprintf("%s:%s:origin", gid, r.ID),
				Source:       gid,
				Target:       r.ID,
				Relationship: rulebase.RelTriggeredByOrigin,
			})
		}
		for _, gid := range r.ReceivingGroupIDs {
			if !known[gid] {
				continue
			}
			doc.Edges = append(doc.Edges, rulebase.Edge{
				ID:           fmt.Sprintf("%s:%s:receiving", r.ID, gid),
				Source:       r.ID,
				Target:       gid,
				Relationship: rulebase.RelTriggeredByReceiving,
			})
		}
	}

	rulebase.Normalize(&doc)
	return doc
}

// validateRule checks required fields before persisting.
func validateRule(r Rule) error {
	if r.Name == "" {
		return fmt.Errorf("%w: rule name required", ErrInvalidRecord)
	}
	switch r.Outcome {
	case rulebase.OutcomePermission, rulebase.OutcomeProhibition:
		return nil
	default:
		return fmt.Errorf("%w: outcome must be permission or prohibition", ErrInvalidRecord)
	}
}

// validateGroup checks required fields before persisting.
func validateGroup(g CountryGroup) error {
	if g.Name == "" {
		return fmt.Errorf("%w: group name required", ErrInvalidRecord)
	}
	return nil
}

// validateEntry checks required fields before persisting.
func validateEntry(e DictionaryEntry) error {
	if e.Name == "" {
		return fmt.Errorf("%w: entry name required", ErrInvalidRecord)
	}
	switch e.Category {
	case rulebase.CategoryProcess, rulebase.CategoryPurpose, rulebase.CategorySubject:
		return nil
	default:
		return fmt.Errorf("%w: unknown entry category %q", ErrInvalidRecord, e.Category)
	}
}
