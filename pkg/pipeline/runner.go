package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/complyviz/complyviz/pkg/cache"
	"github.com/complyviz/complyviz/pkg/layout"
	"github.com/complyviz/complyviz/pkg/render"
	"github.com/complyviz/complyviz/pkg/rulebase"
	"github.com/complyviz/complyviz/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the store, cache, and logger - it
// doesn't retain pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Store  store.Store
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given store, cache, and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(st store.Store, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:  st,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete fetch → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	doc, fetchHit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Document = doc
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.NodeCount = len(doc.Nodes)
	result.Stats.EdgeCount = len(doc.Edges)
	result.CacheInfo.FetchHit = fetchHit

	// Graph hash feeds cache keys and API responses.
	if data, err := rulebase.MarshalDocument(doc); err == nil {
		result.GraphHash = cache.Hash(data)
	}

	r.Logger.Info("fetched rule base",
		"nodes", len(doc.Nodes),
		"edges", len(doc.Edges),
		"duration", result.Stats.FetchTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	lay, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = lay
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"mode", opts.Mode,
		"positioned", len(lay.Nodes),
		"render_edges", len(lay.Edges),
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, lay, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo loads the domain graph with caching and returns cache
// hit info.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (rulebase.Document, bool, error) {
	if r.Store == nil {
		return rulebase.Document{}, false, fmt.Errorf("no store configured")
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.GraphKey(cache.GraphKeyOpts{Source: r.Store.Source()})

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if doc, err := rulebase.UnmarshalDocument(data); err == nil {
				return doc, true, nil // Cache hit
			}
		}
	}

	doc, err := r.Store.LoadGraph(ctx)
	if err != nil {
		return rulebase.Document{}, false, err
	}

	// Cache the result
	if data, err := rulebase.MarshalDocument(doc); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph)
	}

	return doc, false, nil // Cache miss
}

// Fetch is a convenience wrapper that calls FetchWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Fetch(ctx context.Context, opts Options) (rulebase.Document, error) {
	doc, _, err := r.FetchWithCacheInfo(ctx, opts)
	return doc, err
}

// ComputeLayoutWithCacheInfo computes a layout with caching and returns
// cache hit info.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, doc rulebase.Document, opts Options) (layout.Result, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Result{}, false, err
	}
	r.applyLogger(&opts)

	graphData, _ := rulebase.MarshalDocument(doc)
	graphHash := cache.Hash(graphData)
	cacheKey := r.Keyer.LayoutKey(graphHash, opts.LayoutKeyOpts())

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		cached, err := render.UnmarshalPayload(data)
		if err == nil {
			return cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}

	lay := opts.ComputeLayout(doc)

	// Cache the result
	if data, err := render.MarshalPayload(lay); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
	}

	return lay, false, nil // Cache miss
}

// ComputeLayout is a convenience wrapper that calls
// ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, doc rulebase.Document, opts Options) (layout.Result, error) {
	lay, _, err := r.ComputeLayoutWithCacheInfo(ctx, doc, opts)
	return lay, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, lay layout.Result, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutData, err := render.MarshalPayload(lay)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	rendered, err := renderFormats(ctx, lay, opts.Formats)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Render(ctx context.Context, lay layout.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, lay, opts)
	return artifacts, err
}

// renderFormats produces every requested format from one layout result.
func renderFormats(ctx context.Context, lay layout.Result, formats []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(formats))
	for _, format := range formats {
		switch format {
		case FormatSVG:
			out[format] = render.RenderSVG(lay)
		case FormatDOT:
			out[format] = []byte(render.ToDOT(lay))
		case FormatJSON:
			data, err := render.MarshalPayload(lay)
			if err != nil {
				return nil, fmt.Errorf("render json: %w", err)
			}
			out[format] = data
		case FormatPNG:
			data, err := render.RenderPNG(ctx, lay)
			if err != nil {
				return nil, fmt.Errorf("render png: %w", err)
			}
			out[format] = data
		default:
			return nil, fmt.Errorf("invalid format: %q", format)
		}
	}
	return out, nil
}

// InvalidateGraph drops the cached domain graph for the runner's store.
// Mutation endpoints call this so the next fetch sees fresh data.
func (r *Runner) InvalidateGraph(ctx context.Context) error {
	if r.Store == nil {
		return nil
	}
	key := r.Keyer.GraphKey(cache.GraphKeyOpts{Source: r.Store.Source()})
	return r.Cache.Delete(ctx, key)
}

// Close releases resources held by the runner (the cache and the store).
func (r *Runner) Close(ctx context.Context) error {
	var firstErr error
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if r.Store != nil {
		if err := r.Store.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
