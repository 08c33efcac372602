package source

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/erchart/pkg/errors"
	"github.com/matzehuels/erchart/pkg/schema"
)

// Provider delivers the raw schema records of one content store.
type Provider interface {
	// Fetch returns the records in provider order. Errors are reported
	// as-is; callers classify them as schema fetch failures.
	Fetch(ctx context.Context) ([]schema.Record, error)
	// Name identifies the provider in logs and cache keys, e.g.
	// "file:schema.json".
	Name() string
}

// Document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// FormatFromPath derives the document format from a file extension.
// Unknown extensions are treated as JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a schema document. The document, or with a selector every
// value the selector picks, must be a record or a list of records; the
// results are concatenated.
//
// Attribute order is taken from the document in both cases.
func Decode(data []byte, format string, sel *Selector) ([]schema.Record, error) {
	switch format {
	case FormatJSON, "":
		return decodeJSON(data, sel)
	case FormatYAML:
		return decodeYAML(data, sel)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q", format)
	}
}

func decodeJSON(data []byte, sel *Selector) ([]schema.Record, error) {
	values := []json.RawMessage{data}
	if sel != nil {
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse JSON")
		}
		paths, err := sel.paths(doc)
		if err != nil {
			return nil, err
		}
		values = values[:0]
		for _, p := range paths {
			v, err := walkJSON(data, p)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
	}

	var out []schema.Record
	for _, v := range values {
		v = bytes.TrimSpace(v)
		if len(v) > 0 && v[0] == '{' {
			var r schema.Record
			if err := json.Unmarshal(v, &r); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode record")
			}
			out = append(out, r)
			continue
		}
		var rs []schema.Record
		if err := json.Unmarshal(v, &rs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode records")
		}
		out = append(out, rs...)
	}
	return out, nil
}

// walkJSON follows a jq path through raw JSON without decoding the value at
// its end, which keeps object key order intact.
func walkJSON(data json.RawMessage, path []any) (json.RawMessage, error) {
	cur := data
	for _, step := range path {
		switch s := step.(type) {
		case string:
			var obj map[string]json.RawMessage
			if err := json.Unmarshal(cur, &obj); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "select %q", s)
			}
			cur = obj[s]
		case int:
			var arr []json.RawMessage
			if err := json.Unmarshal(cur, &arr); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "select [%d]", s)
			}
			if s < 0 || s >= len(arr) {
				return json.RawMessage("null"), nil
			}
			cur = arr[s]
		default:
			return nil, errors.New(errors.ErrCodeInvalidFilter, "unsupported path step %v", step)
		}
		if cur == nil {
			return json.RawMessage("null"), nil
		}
	}
	return cur, nil
}

func decodeYAML(data []byte, sel *Selector) ([]schema.Record, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse YAML")
	}
	if root.Kind == 0 {
		return nil, nil
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		doc = doc.Content[0]
	}

	nodes := []*yaml.Node{doc}
	if sel != nil {
		var generic any
		if err := doc.Decode(&generic); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse YAML")
		}
		paths, err := sel.paths(generic)
		if err != nil {
			return nil, err
		}
		nodes = nodes[:0]
		for _, p := range paths {
			if n := walkYAML(doc, p); n != nil {
				nodes = append(nodes, n)
			}
		}
	}

	var out []schema.Record
	for _, n := range nodes {
		if n.Kind == yaml.MappingNode {
			var r schema.Record
			if err := n.Decode(&r); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode record")
			}
			out = append(out, r)
			continue
		}
		var rs []schema.Record
		if err := n.Decode(&rs); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode records")
		}
		out = append(out, rs...)
	}
	return out, nil
}

func walkYAML(n *yaml.Node, path []any) *yaml.Node {
	for _, step := range path {
		for n != nil && n.Kind == yaml.AliasNode {
			n = n.Alias
		}
		if n == nil {
			return nil
		}
		switch s := step.(type) {
		case string:
			if n.Kind != yaml.MappingNode {
				return nil
			}
			var next *yaml.Node
			for i := 0; i+1 < len(n.Content); i += 2 {
				if n.Content[i].Value == s {
					next = n.Content[i+1]
				}
			}
			n = next
		case int:
			if n.Kind != yaml.SequenceNode || s < 0 || s >= len(n.Content) {
				return nil
			}
			n = n.Content[s]
		default:
			return nil
		}
	}
	return n
}

// cloneRecords returns a copy of the record slice; attribute maps are
// shared because records are never modified after decoding.
func cloneRecords(in []schema.Record) []schema.Record { return slices.Clone(in) }
