// Package pipeline provides the core visualization pipeline.
//
// This package implements the complete fetch → layout → render pipeline that
// can be used by CLI and API components. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Materialize the rule base as a domain graph document
//  2. Layout: Compute visual positions and synthesized render edges
//  3. Render: Generate output in various formats (SVG, PNG, DOT, JSON)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each stage caches its output under a content-derived key.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(store, cache, nil, logger)
//	opts := pipeline.Options{
//	    Mode:     pipeline.ModeColumns,
//	    Expanded: []string{"eu"},
//	    Formats:  []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/complyviz/complyviz/pkg/cache"
	"github.com/complyviz/complyviz/pkg/layout"
	"github.com/complyviz/complyviz/pkg/rulebase"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// Layout modes.
const (
	// ModeColumns is the three-column compliance view with group
	// expand/collapse and edge synthesis.
	ModeColumns = "columns"

	// ModeLanes is the five-lane admin inventory view.
	ModeLanes = "lanes"
)

// DefaultMode is the default layout mode.
const DefaultMode = ModeColumns

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidModes is the set of supported layout modes.
var ValidModes = map[string]bool{
	ModeColumns: true,
	ModeLanes:   true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Mode           string   `json:"mode,omitempty"`
	Expanded       []string `json:"expanded,omitempty"`        // expanded group IDs (columns mode)
	CollapsedLanes []string `json:"collapsed_lanes,omitempty"` // collapsed lane names (lanes mode)

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses the graph cache and refetches from the store.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the fetched domain graph.
	Document rulebase.Document

	// GraphHash is the content hash of the domain graph.
	GraphHash string

	// Layout contains positioned nodes and synthesized render edges.
	Layout layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FetchHit  bool // Whether the domain graph came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMode checks that a layout mode is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return fmt.Errorf("invalid mode: %q (must be one of: columns, lanes)", mode)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidateMode(o.Mode)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// IsColumns returns true if this is the columns visualization.
func (o *Options) IsColumns() bool {
	return o.Mode == "" || o.Mode == ModeColumns
}

// IsLanes returns true if this is the admin lane visualization.
func (o *Options) IsLanes() bool {
	return o.Mode == ModeLanes
}

// ExpandedSet returns the expanded group IDs as a lookup set.
func (o *Options) ExpandedSet() map[string]bool {
	set := make(map[string]bool, len(o.Expanded))
	for _, id := range o.Expanded {
		set[id] = true
	}
	return set
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Mode:           o.Mode,
		Expanded:       o.Expanded,
		CollapsedLanes: o.CollapsedLanes,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format}
}

// ComputeLayout runs the layout stage for the document under these options,
// with no caching involved. Columns mode runs the expand/collapse engine;
// lanes mode runs the admin inventory layout with the requested lanes
// collapsed.
func (o *Options) ComputeLayout(doc rulebase.Document) layout.Result {
	if o.IsLanes() {
		lanes := layout.AdminLanes()
		for _, name := range o.CollapsedLanes {
			lanes.Toggle(name)
		}
		return layout.ComputeAdmin(doc, lanes)
	}
	return layout.Compute(doc, o.ExpandedSet())
}
