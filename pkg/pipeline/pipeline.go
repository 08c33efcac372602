// Package pipeline provides the diagram pipeline shared by the CLI and the
// HTTP server.
//
// A run goes through four stages:
//
//  1. Load: fetch records from a [source.Provider], normalize them into
//     entities, apply the optional view filter and build the port-resolved
//     multigraph
//  2. Layout: rank, order and position every node
//  3. Present: draw the positioned diagram onto an in-memory [render.Scene]
//  4. Render: produce artifacts (SVG, PNG, PDF, DOT, JSON) from the scene's
//     diagram
//
// Fetch failures abort the run with a SCHEMA_FETCH_ERROR. Malformed
// attributes and unresolved relations never do: they are logged and
// collected on [Result.Warnings].
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  source.NewFile("schema.json", nil),
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := res.Artifacts["svg"]
//
// Use a [Loader] when loads may overlap, for example when a file watcher
// triggers reloads: only the newest load is ever applied.
//
// [source.Provider]: github.com/matzehuels/erchart/pkg/source.Provider
// [render.Scene]: github.com/matzehuels/erchart/pkg/render.Scene
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erchart/pkg/cache"
	"github.com/matzehuels/erchart/pkg/erd"
	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/graph"
	"github.com/matzehuels/erchart/pkg/layout"
	"github.com/matzehuels/erchart/pkg/render"
	"github.com/matzehuels/erchart/pkg/schema"
	"github.com/matzehuels/erchart/pkg/source"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	DefaultRankDir = string(layout.DefaultRankDir)
	DefaultRankSep = layout.DefaultRankSep
	DefaultNodeSep = layout.DefaultNodeSep
	DefaultMargin  = layout.DefaultMargin
	DefaultPasses  = layout.DefaultPasses
	DefaultFormat  = render.FormatSVG
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run. Layout and render
// fields serialize so that the server can accept them as query parameters
// or JSON.
type Options struct {
	// Filter is an optional view filter expression, see [schema.NewFilter].
	Filter string `json:"filter,omitempty"`

	// Layout options
	RankDir string  `json:"rankdir,omitempty"`
	RankSep float64 `json:"ranksep,omitempty"`
	NodeSep float64 `json:"nodesep,omitempty"`
	MarginX float64 `json:"marginx,omitempty"`
	MarginY float64 `json:"marginy,omitempty"`
	Passes  int     `json:"passes,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses the layout and artifact caches for lookups; results
	// are still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Source source.Provider `json:"-"`
	Logger *log.Logger     `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Records are the raw records as fetched.
	Records []schema.Record
	// Entities are the normalized, filtered entities the diagram was built from.
	Entities []schema.Entity
	// Diagram is the positioned multigraph.
	Diagram *erd.Diagram
	// Layout describes ranks, order and bends of the positioned diagram.
	Layout *layout.Result
	// Document is the serializable form of Diagram and Layout.
	Document graph.Layout
	// Scene holds the widget model the diagram was presented onto.
	Scene *render.Scene

	// SchemaHash is the content hash of Records.
	SchemaHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Warnings collects the non-fatal anomalies of normalization and
	// graph building, in the order they were found.
	Warnings []errors.Warning

	Stats     Stats
	CacheInfo CacheInfo

	// Generation and LoadID identify the load when the result came from a
	// [Loader]. Both are zero otherwise.
	Generation uint64
	LoadID     string
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EntityCount int
	NodeCount   int
	EdgeCount   int
	FetchTime   time.Duration
	BuildTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether positions came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !render.ValidFormat(format) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
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

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Source == nil {
		return errors.New(errors.ErrCodeInvalidSource, "a schema source is required")
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	if o.Filter != "" {
		if _, err := schema.NewFilter(o.Filter); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults fills zero layout fields.
func (o *Options) SetLayoutDefaults() {
	if o.RankDir == "" {
		o.RankDir = DefaultRankDir
	}
	if o.RankSep == 0 {
		o.RankSep = DefaultRankSep
	}
	if o.NodeSep == 0 {
		o.NodeSep = DefaultNodeSep
	}
	if o.MarginX == 0 {
		o.MarginX = DefaultMargin
	}
	if o.MarginY == 0 {
		o.MarginY = DefaultMargin
	}
	if o.Passes == 0 {
		o.Passes = DefaultPasses
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// ValidateForLayout sets layout defaults and validates the layout fields.
// The rank direction is normalized to upper case.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	dir, err := layout.ParseRankDir(o.RankDir)
	if err != nil {
		return err
	}
	o.RankDir = string(dir)
	if o.Passes < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "passes must not be negative, got %d", o.Passes)
	}
	return o.LayoutOptions().Validate()
}

// SetRenderDefaults fills zero render fields.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// ValidateForRender sets render defaults and validates the formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		RankDir: layout.RankDir(o.RankDir),
		RankSep: o.RankSep,
		NodeSep: o.NodeSep,
		MarginX: o.MarginX,
		MarginY: o.MarginY,
		Passes:  o.Passes,
		Logger:  o.Logger,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		RankDir: o.RankDir,
		RankSep: o.RankSep,
		NodeSep: o.NodeSep,
		MarginX: o.MarginX,
		MarginY: o.MarginY,
		Passes:  o.Passes,
		Filter:  o.Filter,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format}
}
