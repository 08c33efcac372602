package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/erchart/pkg/cache"
	"github.com/matzehuels/erchart/pkg/erd"
	"github.com/matzehuels/erchart/pkg/graph"
	"github.com/matzehuels/erchart/pkg/layout"
	"github.com/matzehuels/erchart/pkg/observability"
)

// ComputeLayout positions res.Diagram and fills res.Layout and res.Document.
//
// Layouts are cached by schema hash and layout options. On a hit the stored
// document replaces res.Diagram with an identical, already positioned
// diagram. Entries that no longer match the schema are recomputed.
func (r *Runner) ComputeLayout(ctx context.Context, res *Result, opts Options) error {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	hooks := observability.Pipeline()
	start := time.Now()
	defer func() { res.Stats.LayoutTime = time.Since(start) }()

	var key string
	if res.SchemaHash != "" {
		key = r.Keyer.LayoutKey(res.SchemaHash, opts.LayoutKeyOpts())
	}

	if key != "" && !opts.Refresh {
		if doc, d, lr, ok := r.cachedLayout(ctx, key, opts); ok {
			res.Document, res.Diagram, res.Layout = doc, d, lr
			res.CacheInfo.LayoutHit = true
			return nil
		}
	}

	hooks.OnLayoutStart(ctx, opts.RankDir, len(res.Diagram.Nodes))
	lr, err := layout.Layout(res.Diagram, opts.LayoutOptions())
	hooks.OnLayoutComplete(ctx, opts.RankDir, time.Since(start), err)
	if err != nil {
		return stageError("layout", err)
	}
	doc, err := graph.Export(res.Diagram, lr)
	if err != nil {
		return stageError("export layout", err)
	}
	res.Layout, res.Document = lr, doc

	if key != "" {
		if data, err := graph.MarshalLayout(doc); err == nil {
			if err := r.Cache.Set(ctx, key, data, cache.LayoutTTL); err != nil {
				opts.Logger.Warn("layout cache write failed", "error", err)
			}
		}
	}
	return nil
}

func (r *Runner) cachedLayout(ctx context.Context, key string, opts Options) (graph.Layout, *erd.Diagram, *layout.Result, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil {
		opts.Logger.Warn("layout cache read failed", "error", err)
	}
	if !ok {
		return graph.Layout{}, nil, nil, false
	}
	doc, err := graph.UnmarshalLayout(data)
	if err == nil {
		var d *erd.Diagram
		var lr *layout.Result
		if d, lr, err = graph.Import(doc, erd.BuildOptions{}); err == nil {
			return doc, d, lr, true
		}
	}
	opts.Logger.Debug("discarding unusable cached layout", "error", err)
	_ = r.Cache.Delete(ctx, key)
	return graph.Layout{}, nil, nil, false
}
