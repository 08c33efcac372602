package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/erchart/pkg/cache"
	"github.com/matzehuels/erchart/pkg/erd"
	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/observability"
	"github.com/matzehuels/erchart/pkg/schema"
)

// Load fetches records from opts.Source and turns them into an unpositioned
// diagram. A fetch failure aborts with SCHEMA_FETCH_ERROR; anomalies in the
// records only produce warnings.
func (r *Runner) Load(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if opts.Source == nil {
		return nil, errors.New(errors.ErrCodeInvalidSource, "a schema source is required")
	}
	hooks := observability.Pipeline()
	name := opts.Source.Name()

	fetchStart := time.Now()
	hooks.OnFetchStart(ctx, name)
	records, err := opts.Source.Fetch(ctx)
	fetchTime := time.Since(fetchStart)
	hooks.OnFetchComplete(ctx, name, len(records), fetchTime, err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSchemaFetch, err, "fetch schema from %s", name)
	}
	opts.Logger.Debug("fetched schema", "source", name, "records", len(records), "duration", fetchTime)

	res := &Result{Records: records}
	res.Stats.FetchTime = fetchTime
	if data, err := schema.EncodeRecords(records); err == nil {
		res.SchemaHash = cache.Hash(data)
	}

	buildStart := time.Now()
	entities, warnings := schema.Normalize(records, schema.NormalizeOptions{Logger: opts.Logger})
	res.Warnings = append(res.Warnings, warnings...)

	if opts.Filter != "" {
		f, err := schema.NewFilter(opts.Filter)
		if err != nil {
			return nil, err
		}
		before := len(entities)
		if entities, err = f.Apply(entities); err != nil {
			return nil, err
		}
		opts.Logger.Debug("applied view filter", "filter", f.String(), "kept", len(entities), "dropped", before-len(entities))
	}
	res.Entities = entities

	d, warnings := erd.Build(entities, erd.BuildOptions{Logger: opts.Logger})
	res.Warnings = append(res.Warnings, warnings...)
	res.Diagram = d
	res.Stats.BuildTime = time.Since(buildStart)
	res.Stats.EntityCount = len(entities)
	res.Stats.NodeCount = len(d.Nodes)
	res.Stats.EdgeCount = len(d.Edges)
	hooks.OnBuildComplete(ctx, len(d.Nodes), len(d.Edges), len(res.Warnings), res.Stats.BuildTime)

	return res, nil
}
