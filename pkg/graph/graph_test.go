package graph

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/erchart/pkg/erd"
	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/layout"
	"github.com/matzehuels/erchart/pkg/schema"
)

func cyclic(t *testing.T) (*erd.Diagram, *layout.Result) {
	t.Helper()
	ents, _ := schema.Normalize([]schema.Record{
		schema.NewRecord("products", "Products",
			schema.Scalar("title", "string"),
			schema.Relation("supplier", "suppliers", "manyToOne", "products"),
			schema.Relation("shortcut", "regions", "", ""),
		),
		schema.NewRecord("suppliers", "Suppliers",
			schema.Relation("products", "products", "oneToMany", "supplier"),
			schema.Relation("region", "regions", "manyToOne", ""),
		),
		schema.NewRecord("regions", "Regions"),
	}, schema.NormalizeOptions{})
	d, _ := erd.Build(ents, erd.BuildOptions{})
	res, err := layout.Layout(d, layout.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return d, res
}

func TestExport(t *testing.T) {
	d, res := cyclic(t)

	doc, err := Export(d, res)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if doc.Version != FormatVersion || doc.RankDir != "RL" {
		t.Errorf("header = v%d %s", doc.Version, doc.RankDir)
	}
	if len(doc.Entities) != 3 || len(doc.Nodes) != 3 || len(doc.Edges) != len(d.Edges) {
		t.Fatalf("document has %d entities %d nodes %d edges", len(doc.Entities), len(doc.Nodes), len(doc.Edges))
	}

	var broken []string
	for _, e := range doc.Edges {
		if e.Broken {
			broken = append(broken, e.ID)
		}
	}
	if diff := cmp.Diff(res.Broken, broken); diff != "" {
		t.Errorf("broken edges (-want +got):\n%s", diff)
	}

	products, ok := doc.Node("products")
	if !ok {
		t.Fatal("products missing")
	}
	var labels []string
	for _, p := range products.Ports {
		labels = append(labels, p.Label)
	}
	want := []string{"Products", "title: string", "supplier → suppliers", "shortcut → regions"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("port labels (-want +got):\n%s", diff)
	}
}

func TestExport_Errors(t *testing.T) {
	d, res := cyclic(t)
	if _, err := Export(d, nil); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Export(nil result) error = %v", err)
	}

	ents, _ := schema.Normalize([]schema.Record{schema.NewRecord("a", "A")}, schema.NormalizeOptions{})
	unplaced, _ := erd.Build(ents, erd.BuildOptions{})
	if _, err := Export(unplaced, res); !errors.Is(err, errors.ErrCodeLayoutInvariant) {
		t.Errorf("Export(unplaced) error = %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	d, res := cyclic(t)
	doc, err := Export(d, res)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteLayout(doc, &buf); err != nil {
		t.Fatalf("WriteLayout() error = %v", err)
	}
	parsed, err := ReadLayout(&buf)
	if err != nil {
		t.Fatalf("ReadLayout() error = %v", err)
	}
	if diff := cmp.Diff(doc, parsed); diff != "" {
		t.Errorf("document changed (-want +got):\n%s", diff)
	}

	d2, res2, err := Import(parsed, erd.BuildOptions{})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	for _, n := range d.Nodes {
		x, y, _ := n.Position()
		m, ok := d2.Node(n.ID)
		if !ok {
			t.Fatalf("node %s missing after import", n.ID)
		}
		x2, y2, _ := m.Position()
		if x != x2 || y != y2 || n.Width != m.Width || n.Height != m.Height {
			t.Errorf("%s: (%v,%v %vx%v) became (%v,%v %vx%v)", n.ID, x, y, n.Width, n.Height, x2, y2, m.Width, m.Height)
		}
	}
	if diff := cmp.Diff(res, res2); diff != "" {
		t.Errorf("result changed (-want +got):\n%s", diff)
	}
}

func TestImport_Mismatch(t *testing.T) {
	d, res := cyclic(t)
	doc, err := Export(d, res)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		mutate func(l *Layout)
		code   errors.Code
	}{
		{"BadRankDir", func(l *Layout) { l.RankDir = "XY" }, errors.ErrCodeInvalidRankDir},
		{"ExtraNode", func(l *Layout) { l.Nodes = append(l.Nodes, Node{ID: "ghost"}) }, errors.ErrCodeInvalidInput},
		{"UnknownNode", func(l *Layout) { l.Nodes[0].ID = "ghost" }, errors.ErrCodeInvalidInput},
		{"UnknownEdge", func(l *Layout) { l.Edges[0].ID = "ghost.edge" }, errors.ErrCodeInvalidInput},
		{"MissingEdge", func(l *Layout) { l.Edges = l.Edges[1:] }, errors.ErrCodeInvalidInput},
		{"Overlap", func(l *Layout) { l.Nodes[1].X, l.Nodes[1].Y = l.Nodes[0].X, l.Nodes[0].Y }, errors.ErrCodeLayoutInvariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, _ := MarshalLayout(doc)
			l, err := UnmarshalLayout(data)
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(&l)
			if _, _, err := Import(l, erd.BuildOptions{}); !errors.Is(err, tt.code) {
				t.Errorf("Import() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestUnmarshalLayout(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Empty", `{"rankdir": "TB"}`, false},
		{"Invalid", `{invalid json}`, true},
		{"FutureVersion", `{"version": 99}`, true},
		{"NodesWithoutEntities", `{"nodes": [{"id": "a"}]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := UnmarshalLayout([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("UnmarshalLayout() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && l.Version != FormatVersion {
				t.Errorf("Version = %d, want %d", l.Version, FormatVersion)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %s", errors.GetCode(err))
			}
		})
	}
}

func TestLayoutFile(t *testing.T) {
	d, res := cyclic(t)
	doc, _ := Export(d, res)
	path := filepath.Join(t.TempDir(), "layout.json")

	if err := WriteLayoutFile(doc, path); err != nil {
		t.Fatalf("WriteLayoutFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"from_port": "supplier"`) {
		t.Errorf("file content missing from_port:\n%s", data)
	}

	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error = %v", err)
	}
	if len(got.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(got.Nodes))
	}
}

func TestReadLayoutFileNotFound(t *testing.T) {
	if _, err := ReadLayoutFile("nonexistent.json"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}
