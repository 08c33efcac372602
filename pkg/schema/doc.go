// Package schema turns content-type records into the normalized entity model.
//
// A schema provider returns [Record] values, one per content type:
//
//	{ "name": "Products", "key": "products",
//	  "attributes": {
//	    "title":    { "type": "string" },
//	    "supplier": { "type": "relation", "target": "api::suppliers.suppliers",
//	                  "inversedBy": "products", "relation": "manyToOne" } } }
//
// [Normalize] converts them into [Entity] values. Attribute order is the
// document order, for JSON and YAML alike. The "type" field discriminates
// relations from scalars; relation targets are dotted references whose last
// segment is the target entity id. Malformed attributes and records are
// skipped with a warning, never fatal.
//
// [Filter] narrows a normalized schema to a view with a boolean expression,
// and [EncodeRecords] / [DecodeRecords] produce the msgpack snapshots stored
// in the schema cache.
package schema
