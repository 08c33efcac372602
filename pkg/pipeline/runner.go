package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erchart/pkg/cache"
	"github.com/matzehuels/erchart/pkg/errors"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the server use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger: it doesn't
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

// Execute runs the complete load → layout → present → render pipeline with
// caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	// Stage 1: Load
	res, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("built diagram",
		"entities", res.Stats.EntityCount,
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"warnings", len(res.Warnings),
		"duration", res.Stats.FetchTime+res.Stats.BuildTime)

	// Stage 2: Layout
	if err := r.ComputeLayout(ctx, res, opts); err != nil {
		return nil, err
	}
	r.Logger.Info("computed layout",
		"rankdir", opts.RankDir,
		"crossings", res.Layout.Crossings,
		"cached", res.CacheInfo.LayoutHit,
		"duration", res.Stats.LayoutTime)

	// Stage 3: Present
	if err := r.Present(ctx, res); err != nil {
		return nil, err
	}

	// Stage 4: Render
	renderStart := time.Now()
	artifacts, hit, err := r.Render(ctx, res, opts)
	if err != nil {
		return nil, err
	}
	res.Artifacts = artifacts
	res.CacheInfo.RenderHit = hit
	res.Stats.RenderTime = time.Since(renderStart)
	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", res.Stats.RenderTime)

	return res, nil
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

// stageError keeps coded errors as they are and marks anything else as
// internal.
func stageError(stage string, err error) error {
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeInternal, err, "%s", stage)
}
