package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/observability"
)

// ErrStale is returned by [Loader.Load] when a newer load started before this
// one finished. Its result is discarded.
var ErrStale = errors.New(errors.ErrCodeStaleLoad, "load superseded by a newer load")

// Loader runs the pipeline for a host that may trigger overlapping loads
// (page mounts, file watcher events). The last load to start wins: a result
// is only applied if no other load started after it, so two schema versions
// are never mixed.
type Loader struct {
	Runner  *Runner
	Options Options

	// Apply, if set, receives every result that becomes current. It runs
	// under the loader's lock, so applications never interleave.
	Apply func(ctx context.Context, res *Result) error

	gen     atomic.Uint64
	mu      sync.Mutex
	current *Result
}

// NewLoader returns a loader running opts through r.
func NewLoader(r *Runner, opts Options) *Loader {
	return &Loader{Runner: r, Options: opts}
}

// Load starts a new generation and runs the full pipeline. It returns
// ErrStale, wrapped, if another Load started in the meantime.
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	gen := l.gen.Add(1)
	id := uuid.NewString()

	opts := l.Options
	l.Runner.applyLogger(&opts)
	opts.Logger = opts.Logger.With("generation", gen, "load", id)
	opts.Logger.Debug("load started")

	res, err := l.Runner.Execute(ctx, opts)
	if l.gen.Load() != gen {
		return nil, l.stale(ctx, gen, opts)
	}
	if err != nil {
		return nil, err
	}
	res.Generation, res.LoadID = gen, id

	l.mu.Lock()
	defer l.mu.Unlock()
	// A newer load may have finished while this one waited for the lock.
	if l.gen.Load() != gen || (l.current != nil && l.current.Generation > gen) {
		return nil, l.stale(ctx, gen, opts)
	}
	if l.Apply != nil {
		if err := l.Apply(ctx, res); err != nil {
			return nil, err
		}
	}
	l.current = res
	opts.Logger.Debug("load applied")
	return res, nil
}

func (l *Loader) stale(ctx context.Context, gen uint64, opts Options) error {
	observability.Pipeline().OnStaleLoad(ctx, gen)
	opts.Logger.Debug("discarding superseded load")
	return fmt.Errorf("load %d: %w", gen, ErrStale)
}

// Current returns the last applied result, or nil before the first
// successful load.
func (l *Loader) Current() *Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Generation returns the number of loads started so far.
func (l *Loader) Generation() uint64 { return l.gen.Load() }
