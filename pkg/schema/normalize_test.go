package schema

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/erchart/pkg/errors"
)

const productsJSON = `[
  {"name": "Products", "key": "products", "attributes": {
    "title":    {"type": "string"},
    "supplier": {"type": "relation", "target": "api::suppliers.suppliers", "inversedBy": "products", "relation": "manyToOne"},
    "category": {"type": "relation", "target": "api::categories.categories", "relation": "manyToMany"},
    "broken":   {"target": "api::x.x"},
    "weird":    42,
    "orphan":   {"type": "relation", "relation": "oneToOne"}
  }},
  {"name": "Suppliers", "key": "suppliers", "attributes": {
    "products": {"type": "relation", "target": "api::products.products", "mappedBy": "supplier", "relation": "oneToMany"}
  }},
  {"key": "product-category"}
]`

func TestNormalize_JSON(t *testing.T) {
	var records []Record
	if err := json.Unmarshal([]byte(productsJSON), &records); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	entities, warnings := Normalize(records, NormalizeOptions{})

	if len(entities) != 3 {
		t.Fatalf("entities = %d, want 3", len(entities))
	}
	products := entities[0]
	var names []string
	for _, a := range products.Attributes {
		names = append(names, a.Name)
	}
	if diff := cmp.Diff([]string{"title", "supplier", "category"}, names); diff != "" {
		t.Errorf("attribute order (-want +got):\n%s", diff)
	}

	want := Attribute{
		Name: "supplier", Kind: KindRelation, Type: TypeRelation,
		Relation: &RelationInfo{TargetEntityID: "suppliers", Cardinality: "manyToOne", Inverse: "products"},
	}
	if diff := cmp.Diff(want, products.Attributes[1]); diff != "" {
		t.Errorf("supplier (-want +got):\n%s", diff)
	}
	if products.Attributes[0].Relation != nil {
		t.Error("scalar attribute carries RelationInfo")
	}

	if inv := entities[1].Attributes[0].Relation.Inverse; inv != "supplier" {
		t.Errorf("mappedBy inverse = %q, want supplier", inv)
	}
	if entities[2].DisplayName != "ProductCategory" {
		t.Errorf("DisplayName = %q, want ProductCategory", entities[2].DisplayName)
	}

	if len(warnings) != 3 {
		t.Fatalf("warnings = %v, want 3", warnings)
	}
	for _, w := range warnings {
		if w.Code != errors.ErrCodeMalformedAttribute || w.Entity != "products" {
			t.Errorf("unexpected warning %v", w)
		}
	}
}

func TestNormalize_YAMLKeepsOrder(t *testing.T) {
	doc := `
- key: orders
  name: Orders
  attributes:
    zeta: {type: string}
    alpha: {type: relation, target: customers, relation: manyToOne}
    mid: [1, 2]
    beta: {type: integer}
`
	var records []Record
	if err := yaml.Unmarshal([]byte(doc), &records); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}

	entities, warnings := Normalize(records, NormalizeOptions{})

	var names []string
	for _, a := range entities[0].Attributes {
		names = append(names, a.Name)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "beta"}, names); diff != "" {
		t.Errorf("attribute order (-want +got):\n%s", diff)
	}
	if len(warnings) != 1 || warnings[0].Attribute != "mid" {
		t.Errorf("warnings = %v, want one for mid", warnings)
	}
}

func TestNormalize_SkipsBadRecords(t *testing.T) {
	records := []Record{
		NewRecord("", ""),
		NewRecord("products", "Products"),
		NewRecord("products", "Products again"),
		NewRecord("bad\"id", ""),
	}

	entities, warnings := Normalize(records, NormalizeOptions{})

	if len(entities) != 1 || entities[0].DisplayName != "Products" {
		t.Errorf("entities = %+v", entities)
	}
	if len(warnings) != 3 {
		t.Errorf("warnings = %v, want 3", warnings)
	}
}

func TestTargetID(t *testing.T) {
	tests := []struct{ in, want string }{
		{"api::supplier.supplier", "supplier"},
		{"plugin::users-permissions.user", "user"},
		{"suppliers", "suppliers"},
		{" padded ", "padded"},
		{"", ""},
		{"trailing.", ""},
	}
	for _, tt := range tests {
		if got := TargetID(tt.in); got != tt.want {
			t.Errorf("TargetID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		rec  Record
		want string
	}{
		{Record{Name: "Products", Key: "products"}, "Products"},
		{Record{Key: "products"}, "Products"},
		{Record{Key: "product_category"}, "ProductCategory"},
		{Record{Name: "  ", Key: "tags"}, "Tags"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.rec); got != tt.want {
			t.Errorf("DisplayName(%+v) = %q, want %q", tt.rec, got, tt.want)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	var records []Record
	if err := json.Unmarshal([]byte(productsJSON), &records); err != nil {
		t.Fatal(err)
	}
	data, err := EncodeRecords(records)
	if err != nil {
		t.Fatalf("EncodeRecords() error = %v", err)
	}
	decoded, err := DecodeRecords(data)
	if err != nil {
		t.Fatalf("DecodeRecords() error = %v", err)
	}

	want, wantWarn := Normalize(records, NormalizeOptions{})
	got, gotWarn := Normalize(decoded, NormalizeOptions{})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entities after round trip (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantWarn, gotWarn); diff != "" {
		t.Errorf("warnings after round trip (-want +got):\n%s", diff)
	}

	if _, err := DecodeRecords([]byte("garbage")); err == nil {
		t.Error("DecodeRecords(garbage) succeeded")
	}
}

func TestFilter(t *testing.T) {
	entities := []Entity{
		{ID: "products", DisplayName: "Products", Attributes: []Attribute{
			{Name: "title", Kind: KindScalar, Type: "string"},
			{Name: "supplier", Kind: KindRelation, Type: TypeRelation, Relation: &RelationInfo{TargetEntityID: "suppliers"}},
		}},
		{ID: "suppliers", DisplayName: "Suppliers"},
		{ID: "tags", DisplayName: "Tags", Attributes: []Attribute{{Name: "label", Kind: KindScalar, Type: "string"}}},
	}

	tests := []struct {
		expr string
		want []string
	}{
		{"", []string{"products", "suppliers", "tags"}},
		{"relations > 0", []string{"products"}},
		{`id in ["suppliers", "tags"]`, []string{"suppliers", "tags"}},
		{`"suppliers" in targets`, []string{"products"}},
		{`name startsWith "T"`, []string{"tags"}},
		{`"label" in fields or attributes == 0`, []string{"suppliers", "tags"}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			f, err := NewFilter(tt.expr)
			if err != nil {
				t.Fatalf("NewFilter() error = %v", err)
			}
			out, err := f.Apply(entities)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			var ids []string
			for _, e := range out {
				ids = append(ids, e.ID)
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilter_Invalid(t *testing.T) {
	for _, src := range []string{"relations >", "name + 1", "unknownVar == 1"} {
		if _, err := NewFilter(src); !errors.Is(err, errors.ErrCodeInvalidFilter) {
			t.Errorf("NewFilter(%q) error = %v, want INVALID_FILTER", src, err)
		}
	}
}
