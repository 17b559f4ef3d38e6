// Package pipeline provides the core layout pipeline for Journeyflow.
//
// This package implements the complete fetch → compute → render pipeline
// that can be used by CLI, API, and worker components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Obtain journeys from the analytics backend or a local file
//  2. Compute: Run the layout engine over the journeys
//  3. Render: Generate output in various formats (DOT, SVG, PNG, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Project: "shop-app",
//	    Fetcher: backendClient,
//	    Formats: []string{"svg", "json"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Fetch only
//	journeys, err := runner.Fetch(ctx, opts)
//
//	// Compute with existing journeys
//	flowResult, err := runner.Compute(ctx, journeys, opts)
//
//	// Render with existing result
//	artifacts, err := runner.Render(ctx, journeys, flowResult, opts)
package pipeline

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/uxlens/journeyflow/pkg/cache"
	"github.com/uxlens/journeyflow/pkg/errors"
	"github.com/uxlens/journeyflow/pkg/flow"
	"github.com/uxlens/journeyflow/pkg/journey"
)

// Format constants for output formats.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// Fetcher obtains journeys for a project.
// [httputil.Client] is the production implementation.
//
// [httputil.Client]: github.com/uxlens/journeyflow/pkg/httputil#Client
type Fetcher interface {
	FetchJourneys(ctx context.Context, project string, refresh bool) ([]journey.Journey, error)
}

// Options contains all configuration for the layout pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input options. Exactly one source must be set: Journeys (in-process),
	// JourneysFile (local JSON export), or Project with a Fetcher.
	Project      string            `json:"project,omitempty"`
	JourneysFile string            `json:"journeys_file,omitempty"`
	Journeys     []journey.Journey `json:"journeys,omitempty"`
	Refresh      bool              `json:"refresh,omitempty"`

	// Layout tuning. Zero fields fall back to engine defaults.
	Flow flow.Options `json:"flow,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Verbose node labels in DOT/SVG/PNG output

	// Runtime options (not serialized)
	Logger  *log.Logger `json:"-"`
	Fetcher Fetcher     `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Journeys is the fetched (or provided) input set.
	Journeys []journey.Journey

	// JourneysHash is the content hash of the input set.
	JourneysHash string

	// Flow is the computed layout.
	Flow flow.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	JourneyCount int
	ScreenCount  int
	FetchTime    time.Duration
	ComputeTime  time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ComputeHit bool // Whether the flow result came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: dot, svg, png, json)", format)
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

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks that some journey source is configured.
func (o *Options) ValidateForFetch() error {
	if o.Journeys == nil && o.JourneysFile == "" {
		if o.Project == "" {
			return errors.New(errors.ErrCodeInvalidInput, "journeys, journeys_file or project is required")
		}
		if o.Fetcher == nil {
			return errors.New(errors.ErrCodeInvalidInput, "project %q requires a backend fetcher", o.Project)
		}
		if err := errors.ValidateProjectName(o.Project); err != nil {
			return err
		}
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// FlowKeyOpts returns cache key options for the compute stage.
// Tuning is normalized first so explicit defaults and the zero value share
// cache entries.
func (o *Options) FlowKeyOpts() cache.FlowKeyOpts {
	f := o.Flow.WithDefaults()
	return cache.FlowKeyOpts{
		BucketWidth:         f.BucketWidth,
		MinBucketAffinity:   f.MinBucketAffinity,
		LoopWeightBase:      f.LoopWeightBase,
		LoopBalanceWeight:   f.LoopBalanceWeight,
		StrongPairThreshold: f.StrongPairThreshold,
		StrongPairBoost:     f.StrongPairBoost,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
}

// DefaultCacheDir returns the platform cache directory for the CLI
// (e.g. ~/.cache/journeyflow on Linux).
func DefaultCacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "journeyflow"), nil
}
