package schema

import (
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// TypeRelation is the attribute type discriminator that marks a relation.
const TypeRelation = "relation"

// Attributes is an insertion-ordered attribute mapping. Decoding from JSON or
// YAML preserves document order, which defines the display order of ports.
type Attributes = orderedmap.OrderedMap[string, RawAttribute]

// Record is one entity as returned by a schema provider:
//
//	{ "name": "Products", "key": "products",
//	  "attributes": { "supplier": { "type": "relation", "target": "api::supplier.supplier",
//	                                "inversedBy": "products", "relation": "manyToOne" } } }
type Record struct {
	Name       string      `json:"name,omitempty" yaml:"name,omitempty"`
	Key        string      `json:"key,omitempty" yaml:"key,omitempty"`
	UID        string      `json:"uid,omitempty" yaml:"uid,omitempty"`
	Attributes *Attributes `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// ID returns the entity identifier of the record: Key, falling back to Name.
func (r Record) ID() string {
	if r.Key != "" {
		return r.Key
	}
	return r.Name
}

// Len returns the number of raw attributes, including malformed ones.
func (r Record) Len() int {
	if r.Attributes == nil {
		return 0
	}
	return r.Attributes.Len()
}

// Each calls fn for every attribute in insertion order.
func (r Record) Each(fn func(name string, a RawAttribute)) {
	if r.Attributes == nil {
		return
	}
	for p := r.Attributes.Oldest(); p != nil; p = p.Next() {
		fn(p.Key, p.Value)
	}
}

// RawAttribute is the provider-side description of one attribute.
// Fields other than Type are only meaningful for relations.
type RawAttribute struct {
	Type       string `json:"type,omitempty" yaml:"type,omitempty" msgpack:"type,omitempty"`
	Target     string `json:"target,omitempty" yaml:"target,omitempty" msgpack:"target,omitempty"`
	InversedBy string `json:"inversedBy,omitempty" yaml:"inversedBy,omitempty" msgpack:"inversedBy,omitempty"`
	MappedBy   string `json:"mappedBy,omitempty" yaml:"mappedBy,omitempty" msgpack:"mappedBy,omitempty"`
	Relation   string `json:"relation,omitempty" yaml:"relation,omitempty" msgpack:"relation,omitempty"`

	// Invalid is set when the attribute value could not be decoded as an
	// object. Such attributes are reported and skipped by Normalize.
	Invalid string `json:"-" yaml:"-" msgpack:"invalid,omitempty"`
}

// UnmarshalJSON decodes an attribute object. Values that are not objects do
// not fail the whole document; they are flagged through Invalid instead.
func (a *RawAttribute) UnmarshalJSON(data []byte) error {
	type plain RawAttribute
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		*a = RawAttribute{Invalid: fmt.Sprintf("not an attribute object: %s", truncate(string(data), 40))}
		return nil
	}
	*a = RawAttribute(p)
	return nil
}

// UnmarshalYAML is the YAML counterpart of UnmarshalJSON.
func (a *RawAttribute) UnmarshalYAML(node *yaml.Node) error {
	type plain RawAttribute
	var p plain
	if node.Kind != yaml.MappingNode {
		*a = RawAttribute{Invalid: fmt.Sprintf("not an attribute mapping (line %d)", node.Line)}
		return nil
	}
	if err := node.Decode(&p); err != nil {
		*a = RawAttribute{Invalid: err.Error()}
		return nil
	}
	*a = RawAttribute(p)
	return nil
}

// Inverse returns the counterpart field name on the target entity.
// inversedBy names it on the owning side, mappedBy on the other side.
func (a RawAttribute) Inverse() string {
	if a.InversedBy != "" {
		return a.InversedBy
	}
	return a.MappedBy
}

// NamedAttribute pairs an attribute name with its raw description.
type NamedAttribute struct {
	Name string       `msgpack:"name"`
	Attr RawAttribute `msgpack:"attr"`
}

// Scalar describes a non-relation attribute of the given type.
func Scalar(name, typ string) NamedAttribute {
	return NamedAttribute{Name: name, Attr: RawAttribute{Type: typ}}
}

// Relation describes a relation attribute. target is a dotted uid whose last
// segment is the target entity id; inverse may be empty.
func Relation(name, target, cardinality, inverse string) NamedAttribute {
	return NamedAttribute{Name: name, Attr: RawAttribute{
		Type:       TypeRelation,
		Target:     target,
		InversedBy: inverse,
		Relation:   cardinality,
	}}
}

// NewRecord builds a record with attributes in the given order.
func NewRecord(key, name string, attrs ...NamedAttribute) Record {
	m := orderedmap.New[string, RawAttribute]()
	for _, a := range attrs {
		m.Set(a.Name, a.Attr)
	}
	return Record{Key: key, Name: name, Attributes: m}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
