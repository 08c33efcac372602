// Package source provides schema providers: the places entity records are
// fetched from before normalization.
//
// # Providers
//
// Every provider implements [Provider]:
//
//   - [Memory]: a fixed record list
//   - [File]: a JSON or YAML document on disk ("-" reads stdin)
//   - [HTTP]: an endpoint returning the er-data document, with bearer token
//     and retry of transient failures
//   - sqlstore and mongostore subpackages: records kept in a database
//
// [Cached] wraps any provider with a [cache.Cache], storing msgpack
// snapshots of the records under a key derived from the provider name.
//
// # Selection
//
// When the records are nested inside a larger document, a [Selector] picks
// them with a jq expression:
//
//	sel, _ := source.NewSelector(".data.contentTypes")
//	p := source.NewFile("export.json", sel)
//
// Attribute order is always taken from the original document, because it
// decides the order of attribute rows in the diagram.
//
// [cache.Cache]: github.com/matzehuels/erchart/pkg/cache.Cache
package source
