package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/uxlens/journeyflow/pkg/cache"
	"github.com/uxlens/journeyflow/pkg/errors"
	"github.com/uxlens/journeyflow/pkg/flow"
	"github.com/uxlens/journeyflow/pkg/journey"
	"github.com/uxlens/journeyflow/pkg/observability"
	"github.com/uxlens/journeyflow/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
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
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete fetch → compute → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	// Validation errors are already coded; wrapping them here would bury
	// the specific code behind a generic one.
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	journeys, err := r.Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Journeys = journeys
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.JourneyCount = len(journeys)

	// Compute input hash for cache keys and API responses
	if data, err := journey.MarshalJourneys(journeys); err == nil {
		result.JourneysHash = cache.Hash(data)
	}

	r.Logger.Info("fetched journeys",
		"project", opts.Project,
		"journeys", len(journeys),
		"duration", result.Stats.FetchTime)

	// Stage 2: Compute
	computeStart := time.Now()
	flowResult, computeHit, err := r.ComputeWithCacheInfo(ctx, journeys, opts)
	if err != nil {
		return nil, err
	}
	result.Flow = flowResult
	result.Stats.ComputeTime = time.Since(computeStart)
	result.Stats.ScreenCount = len(flowResult.ScreenOrder)
	result.CacheInfo.ComputeHit = computeHit

	r.Logger.Info("computed layout",
		"screens", len(flowResult.ScreenOrder),
		"max_steps", flowResult.MaxSteps,
		"duration", result.Stats.ComputeTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, journeys, flowResult, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Fetch obtains journeys from the configured source: in-process journeys,
// a local file, or the analytics backend.
func (r *Runner) Fetch(ctx context.Context, opts Options) ([]journey.Journey, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, err
	}

	if opts.Journeys != nil {
		return opts.Journeys, nil
	}
	if opts.JourneysFile != "" {
		journeys, err := journey.ReadJourneysFile(opts.JourneysFile)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidJourney, err, "read %s", opts.JourneysFile)
		}
		return journeys, nil
	}

	observability.Flow().OnFetchStart(ctx, opts.Project)
	start := time.Now()
	journeys, err := opts.Fetcher.FetchJourneys(ctx, opts.Project, opts.Refresh)
	observability.Flow().OnFetchComplete(ctx, opts.Project, len(journeys), time.Since(start), err)
	return journeys, err
}

// ComputeWithCacheInfo runs the layout engine with caching and returns
// cache hit info.
func (r *Runner) ComputeWithCacheInfo(ctx context.Context, journeys []journey.Journey, opts Options) (flow.Result, bool, error) {
	r.applyLogger(&opts)

	data, err := journey.MarshalJourneys(journeys)
	if err != nil {
		return flow.Result{}, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize journeys for cache key")
	}
	cacheKey := r.Keyer.FlowKey(cache.Hash(data), opts.FlowKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var result flow.Result
			if err := json.Unmarshal(cached, &result); err == nil {
				observability.Cache().OnCacheHit(ctx, "flow")
				return result, true, nil
			}
			// Corrupt entry: fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "flow")
	}

	observability.Flow().OnComputeStart(ctx, opts.Project, len(journeys))
	start := time.Now()
	result := flow.Compute(journeys, opts.Flow)
	observability.Flow().OnComputeComplete(ctx, opts.Project, len(result.ScreenOrder), time.Since(start), nil)

	if data, err := json.Marshal(result); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.FlowCacheTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "flow", len(data))
		}
	}
	return result, false, nil
}

// Compute is a convenience wrapper that discards the cache hit info.
func (r *Runner) Compute(ctx context.Context, journeys []journey.Journey, opts Options) (flow.Result, error) {
	result, _, err := r.ComputeWithCacheInfo(ctx, journeys, opts)
	return result, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache
// hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, journeys []journey.Journey, flowResult flow.Result, opts Options) (map[string][]byte, bool, error) {
	opts.SetRenderDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	flowData, err := json.Marshal(flowResult)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize layout for cache key")
	}
	flowHash := cache.Hash(flowData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(flowHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	observability.Flow().OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	rendered, err := r.renderFormats(journeys, flowResult, opts)
	observability.Flow().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(flowHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.ArtifactCacheTTL)
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, journeys []journey.Journey, flowResult flow.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, journeys, flowResult, opts)
	return artifacts, err
}

// renderFormats produces every requested format. The transition graph is
// recollected from the journeys; Collect is linear and cheap next to
// Graphviz rendering.
func (r *Runner) renderFormats(journeys []journey.Journey, flowResult flow.Result, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	needsDot := false
	for _, format := range opts.Formats {
		if format == FormatDOT || format == FormatSVG || format == FormatPNG {
			needsDot = true
			break
		}
	}
	if needsDot {
		g := flow.Collect(journeys)
		dot = render.ToDOT(g, flowResult.ScreenOrder, render.Options{Detailed: opts.Detailed})
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatDOT:
			artifacts[format] = []byte(dot)
		case FormatSVG:
			svg, err := render.RenderSVG(dot)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
			}
			artifacts[format] = svg
		case FormatPNG:
			png, err := render.RenderPNG(dot)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "render png")
			}
			artifacts[format] = png
		case FormatJSON:
			data, err := render.NewArtifact(opts.Project, len(journeys), flowResult).Marshal()
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal artifact")
			}
			artifacts[format] = data
		}
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
