package rulebase

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument converts a document to pretty-printed JSON bytes.
// The document is normalized first so output is stable and self-consistent.
func MarshalDocument(d Document) ([]byte, error) {
	Normalize(&d)
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalDocument decodes JSON bytes into a normalized document.
func UnmarshalDocument(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	Normalize(&d)
	return d, nil
}

// ReadDocument decodes a JSON document from an io.Reader.
func ReadDocument(r io.Reader) (Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	Normalize(&d)
	return d, nil
}

// ReadDocumentFile reads and decodes a JSON document file.
func ReadDocumentFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f)
}

// WriteDocumentFile writes a document to a JSON file.
// The file is created with 0644 permissions.
func WriteDocumentFile(d Document, path string) error {
	data, err := MarshalDocument(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// =============================================================================
// Normalization - Defensive Defaults
// =============================================================================

// Normalize substitutes safe defaults for missing or inconsistent fields so
// a partially-loaded document never fails a layout pass:
//
//   - nil member lists become empty (a zero-country group)
//   - cached country counts are reconciled with the actual member list
//   - missing labels fall back to the node ID at display time (DisplayLabel)
//   - edges with an empty relationship are kept and treated as structural
//   - stats are recomputed from the node and edge lists
//
// Nodes with empty IDs are dropped; everything downstream keys on ID.
//
// The node and edge slices are replaced with freshly allocated ones. The
// caller's backing arrays are never rewritten, so other document values
// sharing them stay intact.
func Normalize(d *Document) {
	nodes := make([]Node, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.ID == "" {
			continue
		}
		if n.IsCountryGroup() {
			if n.Countries == nil {
				n.Countries = []string{}
			}
			n.CountryCount = len(n.Countries)
		}
		nodes = append(nodes, n)
	}
	d.Nodes = nodes

	edges := make([]Edge, 0, len(d.Edges))
	for _, e := range d.Edges {
		if e.Source == "" || e.Target == "" {
			continue
		}
		if e.ID == "" {
			e.ID = fmt.Sprintf("%s->%s", e.Source, e.Target)
		}
		edges = append(edges, e)
	}
	d.Edges = edges

	d.Stats = d.ComputeStats()
}
