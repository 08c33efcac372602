// Package mongostore reads schema records from a MongoDB collection, one
// document per entity:
//
//	{ "key": "products", "name": "Products", "uid": "api::product.product",
//	  "attributes": { "title": { "type": "string" }, ... } }
//
// Attribute order follows the stored document.
package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/schema"
)

// DefaultCollection is used when Options.Collection is empty.
const DefaultCollection = "er_models"

// Options configures the store.
type Options struct {
	// Filter restricts the documents read. Nil means all.
	Filter bson.D
	// SortKey orders the documents. Defaults to "key".
	SortKey string
}

// Store is a source.Provider backed by a collection.
type Store struct {
	coll   *mongo.Collection
	opts   Options
	client *mongo.Client
}

// New wraps an existing collection.
func New(coll *mongo.Collection, opts Options) *Store {
	if opts.SortKey == "" {
		opts.SortKey = "key"
	}
	return &Store{coll: coll, opts: opts}
}

// Connect dials uri and returns a store for database.collection. Close
// disconnects the client.
func Connect(ctx context.Context, uri, database, collection string, opts Options) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSource, err, "connect mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}
	s := New(client.Database(database).Collection(collection), opts)
	s.client = client
	return s, nil
}

// Fetch implements source.Provider.
func (s *Store) Fetch(ctx context.Context) ([]schema.Record, error) {
	filter := s.opts.Filter
	if filter == nil {
		filter = bson.D{}
	}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: s.opts.SortKey, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", s.coll.Name(), err)
	}
	defer cur.Close(ctx)

	var out []schema.Record
	for cur.Next(ctx) {
		r, err := DecodeRecord(cur.Current)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.coll.Name(), err)
	}
	return out, nil
}

// Name implements source.Provider.
func (s *Store) Name() string {
	return fmt.Sprintf("mongo:%s.%s", s.coll.Database().Name(), s.coll.Name())
}

// Close disconnects the client if the store was created by [Connect].
func (s *Store) Close(ctx context.Context) error {
	if s.client != nil {
		return s.client.Disconnect(ctx)
	}
	return nil
}

type rawAttribute struct {
	Type       string `bson:"type"`
	Target     string `bson:"target"`
	InversedBy string `bson:"inversedBy"`
	MappedBy   string `bson:"mappedBy"`
	Relation   string `bson:"relation"`
}

// DecodeRecord converts one BSON document into a record, keeping the
// element order of its attributes sub-document. Attribute values that are
// not documents are flagged invalid rather than failing the record.
func DecodeRecord(doc bson.Raw) (schema.Record, error) {
	str := func(key string) string {
		v, err := doc.LookupErr(key)
		if err != nil {
			return ""
		}
		s, _ := v.StringValueOK()
		return s
	}

	var attrs []schema.NamedAttribute
	if v, err := doc.LookupErr("attributes"); err == nil {
		sub, ok := v.DocumentOK()
		if !ok {
			return schema.Record{}, errors.New(errors.ErrCodeInvalidFormat, "record %q: attributes is %s, not a document", str("key"), v.Type)
		}
		elems, err := sub.Elements()
		if err != nil {
			return schema.Record{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "record %q", str("key"))
		}
		for _, e := range elems {
			attrs = append(attrs, schema.NamedAttribute{Name: e.Key(), Attr: decodeAttribute(e.Value())})
		}
	}

	r := schema.NewRecord(str("key"), str("name"), attrs...)
	r.UID = str("uid")
	return r, nil
}

func decodeAttribute(v bson.RawValue) schema.RawAttribute {
	if v.Type != bsontype.EmbeddedDocument {
		return schema.RawAttribute{Invalid: fmt.Sprintf("not an attribute document: %s", v.Type)}
	}
	var ra rawAttribute
	if err := v.Unmarshal(&ra); err != nil {
		return schema.RawAttribute{Invalid: err.Error()}
	}
	return schema.RawAttribute{
		Type:       ra.Type,
		Target:     ra.Target,
		InversedBy: ra.InversedBy,
		MappedBy:   ra.MappedBy,
		Relation:   ra.Relation,
	}
}
