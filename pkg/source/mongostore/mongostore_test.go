package mongostore

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/schema"
)

func marshal(t *testing.T, d bson.D) bson.Raw {
	t.Helper()
	raw, err := bson.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestDecodeRecord(t *testing.T) {
	raw := marshal(t, bson.D{
		{Key: "key", Value: "products"},
		{Key: "name", Value: "Products"},
		{Key: "uid", Value: "api::product.product"},
		{Key: "attributes", Value: bson.D{
			{Key: "title", Value: bson.D{{Key: "type", Value: "string"}}},
			{Key: "supplier", Value: bson.D{
				{Key: "type", Value: "relation"},
				{Key: "target", Value: "api::supplier.supplier"},
				{Key: "mappedBy", Value: "products"},
				{Key: "relation", Value: "manyToOne"},
			}},
			{Key: "broken", Value: "oops"},
			{Key: "amount", Value: bson.D{{Key: "type", Value: "decimal"}}},
		}},
	})

	r, err := DecodeRecord(raw)
	if err != nil {
		t.Fatalf("DecodeRecord() error = %v", err)
	}
	if r.ID() != "products" || r.Name != "Products" || r.UID != "api::product.product" {
		t.Errorf("record = %+v", r)
	}

	var names []string
	var supplier, broken schema.RawAttribute
	r.Each(func(name string, a schema.RawAttribute) {
		names = append(names, name)
		switch name {
		case "supplier":
			supplier = a
		case "broken":
			broken = a
		}
	})
	if got := len(names); got != 4 || names[0] != "title" || names[3] != "amount" {
		t.Errorf("attribute order = %v", names)
	}
	if supplier.Inverse() != "products" || supplier.Relation != "manyToOne" {
		t.Errorf("supplier = %+v", supplier)
	}
	if broken.Invalid == "" {
		t.Error("non-document attribute not flagged invalid")
	}
}

func TestDecodeRecord_NoAttributes(t *testing.T) {
	r, err := DecodeRecord(marshal(t, bson.D{{Key: "name", Value: "Tags"}}))
	if err != nil {
		t.Fatal(err)
	}
	if r.ID() != "Tags" || r.Len() != 0 {
		t.Errorf("record = %+v", r)
	}
}

func TestDecodeRecord_BadAttributes(t *testing.T) {
	_, err := DecodeRecord(marshal(t, bson.D{{Key: "key", Value: "x"}, {Key: "attributes", Value: 42}}))
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("DecodeRecord() error = %v", err)
	}
}
