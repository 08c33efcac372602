package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/erchart/pkg/cache"
	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/graph"
	"github.com/matzehuels/erchart/pkg/observability"
	"github.com/matzehuels/erchart/pkg/schema"
	"github.com/matzehuels/erchart/pkg/source"
)

func shopRecords() []schema.Record {
	return []schema.Record{
		schema.NewRecord("products", "Products",
			schema.Scalar("title", "string"),
			schema.Relation("supplier", "api::supplier.suppliers", "manyToOne", "products"),
			schema.Relation("category", "api::category.categories", "manyToOne", ""),
			schema.Relation("ghost", "api::ghost.ghosts", "oneToOne", ""),
			schema.NamedAttribute{Name: "broken"},
		),
		schema.NewRecord("suppliers", "Suppliers",
			schema.Relation("products", "api::product.products", "oneToMany", "supplier"),
		),
		schema.NewRecord("categories", "Categories"),
	}
}

func shopOptions(formats ...string) Options {
	return Options{
		Source:  source.NewMemory("shop", shopRecords()),
		Formats: formats,
	}
}

type failingProvider struct{ err error }

func (p failingProvider) Fetch(context.Context) ([]schema.Record, error) { return nil, p.err }
func (failingProvider) Name() string                                     { return "failing" }

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Invalid format error = %v", err)
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptions_Defaults(t *testing.T) {
	opts := shopOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.RankDir != "RL" || opts.RankSep != 50 || opts.NodeSep != 50 ||
		opts.MarginX != 25 || opts.MarginY != 25 || opts.Passes != 4 {
		t.Errorf("layout defaults = %+v", opts.LayoutKeyOpts())
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != "svg" {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestOptions_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		code   errors.Code
	}{
		{"no source", func(o *Options) { o.Source = nil }, errors.ErrCodeInvalidSource},
		{"bad rankdir", func(o *Options) { o.RankDir = "diagonal" }, errors.ErrCodeInvalidRankDir},
		{"negative ranksep", func(o *Options) { o.RankSep = -1 }, errors.ErrCodeInvalidInput},
		{"negative passes", func(o *Options) { o.Passes = -2 }, errors.ErrCodeInvalidInput},
		{"bad format", func(o *Options) { o.Formats = []string{"gif"} }, errors.ErrCodeInvalidFormat},
		{"bad filter", func(o *Options) { o.Filter = "relations >" }, errors.ErrCodeInvalidFilter},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := shopOptions()
			tt.modify(&opts)
			if err := opts.ValidateAndSetDefaults(); !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.code)
			}
		})
	}

	opts := shopOptions()
	opts.RankDir = "lr"
	if err := opts.ValidateAndSetDefaults(); err != nil || opts.RankDir != "LR" {
		t.Errorf("rankdir lr: %q, %v", opts.RankDir, err)
	}
}

func TestRunner_Execute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), shopOptions("json", "dot"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Stats.NodeCount != 3 || res.Stats.EdgeCount != 3 {
		t.Errorf("stats = %+v, want 3 nodes and 3 edges", res.Stats)
	}
	var codes []errors.Code
	for _, w := range res.Warnings {
		codes = append(codes, w.Code)
	}
	want := []errors.Code{errors.ErrCodeMalformedAttribute, errors.ErrCodeUnresolvedRelation}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("warning codes mismatch (-want +got):\n%s", diff)
	}

	if unplaced := res.Diagram.Unplaced(); len(unplaced) != 0 {
		t.Errorf("unplaced nodes: %v", unplaced)
	}
	if res.Scene == nil || len(res.Scene.Snapshot().Nodes) != 3 {
		t.Error("result was not presented onto a scene")
	}

	doc, err := graph.UnmarshalLayout(res.Artifacts["json"])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if diff := cmp.Diff(res.Document, doc); diff != "" {
		t.Errorf("json artifact differs from document (-want +got):\n%s", diff)
	}
	if dot := string(res.Artifacts["dot"]); !strings.Contains(dot, "digraph") {
		t.Errorf("dot artifact = %q", dot)
	}
}

func TestRunner_Deterministic(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	a, err := r.Execute(context.Background(), shopOptions("json"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(context.Background(), shopOptions("json"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a.Document, b.Document); diff != "" {
		t.Errorf("layouts differ between runs (-first +second):\n%s", diff)
	}
}

func TestRunner_FetchError(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Source: failingProvider{cause}})
	if !errors.Is(err, errors.ErrCodeSchemaFetch) {
		t.Fatalf("Execute() error = %v, want SCHEMA_FETCH_ERROR", err)
	}
	chain := errors.Chain(err)
	if last := chain[len(chain)-1]; last != "connection refused" {
		t.Errorf("chain = %v", chain)
	}
}

func TestRunner_Filter(t *testing.T) {
	opts := shopOptions("json")
	opts.Filter = `id != "categories"`
	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entities) != 2 || res.Stats.NodeCount != 2 {
		t.Errorf("filtered entities = %d, nodes = %d", len(res.Entities), res.Stats.NodeCount)
	}
	for _, e := range res.Diagram.Edges {
		if e.Target == "categories" {
			t.Errorf("edge %s points at a filtered entity", e.ID)
		}
	}
}

func TestRunner_Cache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	first, err := r.Execute(ctx, shopOptions("json"))
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("cold run cache info = %+v", first.CacheInfo)
	}

	second, err := r.Execute(ctx, shopOptions("json"))
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("warm run cache info = %+v", second.CacheInfo)
	}
	if diff := cmp.Diff(first.Document, second.Document); diff != "" {
		t.Errorf("cached layout differs (-cold +warm):\n%s", diff)
	}
	if len(second.Warnings) != len(first.Warnings) {
		t.Errorf("warm run lost warnings: %d, want %d", len(second.Warnings), len(first.Warnings))
	}

	opts := shopOptions("json")
	opts.RankDir = "TB"
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit {
		t.Error("different rankdir hit the layout cache")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
	stale  []uint64
}

func (h *recordingHooks) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnFetchStart(context.Context, string) { h.add("fetch") }
func (h *recordingHooks) OnBuildComplete(context.Context, int, int, int, time.Duration) {
	h.add("build")
}
func (h *recordingHooks) OnLayoutStart(context.Context, string, int) { h.add("layout") }
func (h *recordingHooks) OnRenderStart(context.Context, []string)    { h.add("render") }
func (h *recordingHooks) OnStaleLoad(_ context.Context, gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stale = append(h.stale, gen)
}

func TestRunner_Hooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	t.Cleanup(observability.Reset)

	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), shopOptions("json")); err != nil {
		t.Fatal(err)
	}
	want := []string{"fetch", "build", "layout", "render"}
	if diff := cmp.Diff(want, h.events); diff != "" {
		t.Errorf("hook events mismatch (-want +got):\n%s", diff)
	}
}

// gatedProvider blocks its first Fetch until release is closed.
type gatedProvider struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	first   []schema.Record
	later   []schema.Record
}

func (p *gatedProvider) Fetch(ctx context.Context) ([]schema.Record, error) {
	if p.calls.Add(1) == 1 {
		close(p.started)
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return p.first, nil
	}
	return p.later, nil
}

func (p *gatedProvider) Name() string { return "gated" }

func TestLoader_LastWriteWins(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	t.Cleanup(observability.Reset)

	p := &gatedProvider{
		started: make(chan struct{}),
		release: make(chan struct{}),
		first:   []schema.Record{schema.NewRecord("old", "Old")},
		later:   shopRecords(),
	}
	l := NewLoader(NewRunner(nil, nil, nil), Options{Source: p, Formats: []string{"json"}})

	var applied []uint64
	l.Apply = func(_ context.Context, res *Result) error {
		applied = append(applied, res.Generation)
		return nil
	}

	ctx := context.Background()
	errc := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx)
		errc <- err
	}()
	<-p.started

	res, err := l.Load(ctx)
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if res.Generation != 2 || res.LoadID == "" {
		t.Errorf("second load generation = %d, id = %q", res.Generation, res.LoadID)
	}

	close(p.release)
	if err := <-errc; !errors.Is(err, errors.ErrCodeStaleLoad) {
		t.Errorf("first Load() error = %v, want STALE_LOAD", err)
	}

	if diff := cmp.Diff([]uint64{2}, applied); diff != "" {
		t.Errorf("applied generations (-want +got):\n%s", diff)
	}
	if cur := l.Current(); cur == nil || cur.Stats.NodeCount != 3 {
		t.Errorf("current result is not the newest load: %+v", cur)
	}
	if diff := cmp.Diff([]uint64{1}, h.stale); diff != "" {
		t.Errorf("stale hook generations (-want +got):\n%s", diff)
	}
	if l.Generation() != 2 {
		t.Errorf("Generation() = %d", l.Generation())
	}
}

func TestLoader_ApplyError(t *testing.T) {
	l := NewLoader(NewRunner(nil, nil, nil), shopOptions("json"))
	l.Apply = func(context.Context, *Result) error { return fmt.Errorf("surface gone") }
	if _, err := l.Load(context.Background()); err == nil {
		t.Fatal("Load() succeeded although Apply failed")
	}
	if l.Current() != nil {
		t.Error("failed application became current")
	}
}
