package schema

// Kind classifies an attribute.
type Kind int

const (
	// KindScalar is any attribute that does not reference another entity.
	KindScalar Kind = iota
	// KindRelation references another entity and carries a RelationInfo.
	KindRelation
)

// String returns "scalar" or "relation".
func (k Kind) String() string {
	if k == KindRelation {
		return "relation"
	}
	return "scalar"
}

// RelationInfo is present on every relation attribute and only there.
type RelationInfo struct {
	// TargetEntityID is the last dotted segment of the raw target uid.
	TargetEntityID string `json:"target" msgpack:"target"`
	// Cardinality is a free-form label such as "oneToMany". May be empty.
	Cardinality string `json:"cardinality,omitempty" msgpack:"cardinality,omitempty"`
	// Inverse names the counterpart attribute on the target entity, if any.
	Inverse string `json:"inverse,omitempty" msgpack:"inverse,omitempty"`
}

// Attribute is one normalized entity attribute.
type Attribute struct {
	Name     string        `json:"name" msgpack:"name"`
	Kind     Kind          `json:"kind" msgpack:"kind"`
	Type     string        `json:"type" msgpack:"type"`
	Relation *RelationInfo `json:"relation,omitempty" msgpack:"relation,omitempty"`
}

// IsRelation reports whether the attribute references another entity.
func (a Attribute) IsRelation() bool { return a.Kind == KindRelation && a.Relation != nil }

// Entity is a normalized content type. Entities are created once per schema
// load and are not modified afterwards.
type Entity struct {
	ID          string      `json:"id" msgpack:"id"`
	DisplayName string      `json:"displayName" msgpack:"displayName"`
	Attributes  []Attribute `json:"attributes" msgpack:"attributes"`
}

// Attribute returns the attribute with the given name.
func (e Entity) Attribute(name string) (Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Relations returns the relation attributes in declaration order.
func (e Entity) Relations() []Attribute {
	var out []Attribute
	for _, a := range e.Attributes {
		if a.IsRelation() {
			out = append(out, a)
		}
	}
	return out
}
