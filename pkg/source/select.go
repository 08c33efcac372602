package source

import (
	"fmt"

	"github.com/itchyny/gojq"

	"github.com/matzehuels/erchart/pkg/errors"
)

// Selector is a jq expression that picks the record list out of a larger
// response document, e.g. ".data" or ".contentTypes[] | select(.kind == \"collectionType\")".
//
// Only the paths of the selected values are computed with jq; the values
// themselves are read from the original document so attribute order
// survives selection. Expressions that construct new values rather than
// select existing ones are therefore rejected at evaluation time.
type Selector struct {
	expr  string
	query *gojq.Query
}

// NewSelector parses expr. An empty or "." expression returns a nil
// selector, meaning the whole document.
func NewSelector(expr string) (*Selector, error) {
	if expr == "" || expr == "." {
		return nil, nil
	}
	if _, err := gojq.Parse(expr); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFilter, err, "invalid jq expression %q", expr)
	}
	query, err := gojq.Parse(fmt.Sprintf("path(%s)", expr))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFilter, err, "invalid jq expression %q", expr)
	}
	return &Selector{expr: expr, query: query}, nil
}

// String returns the source expression.
func (s *Selector) String() string {
	if s == nil {
		return "."
	}
	return s.expr
}

func (s *Selector) paths(doc any) ([][]any, error) {
	var out [][]any
	iter := s.query.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			if err, ok := err.(*gojq.HaltError); ok && err.Value() == nil {
				break
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidFilter, err, "evaluate %q", s.expr)
		}
		p, ok := v.([]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidFilter, "evaluate %q: unexpected path %v", s.expr, v)
		}
		out = append(out, p)
	}
	return out, nil
}
