package schema

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/matzehuels/erchart/pkg/errors"
)

// FilterEnv is the environment a view filter expression is evaluated in,
// once per entity. Example expressions:
//
//	relations > 0
//	id in ["products", "suppliers"]
//	"category" in targets
//	name startsWith "Prod"
type FilterEnv struct {
	ID         string   `expr:"id"`
	Name       string   `expr:"name"`
	Attributes int      `expr:"attributes"`
	Relations  int      `expr:"relations"`
	Fields     []string `expr:"fields"`
	Targets    []string `expr:"targets"`
}

// Filter selects the entities that belong to the current view. Relations
// pointing at filtered-out entities are dropped by the graph builder like any
// other reference to an entity outside the snapshot.
type Filter struct {
	source  string
	program *vm.Program
}

// NewFilter compiles a boolean expression over [FilterEnv].
// An empty source yields a nil filter, which keeps every entity.
func NewFilter(source string) (*Filter, error) {
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.Env(FilterEnv{}), expr.AsBool())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFilter, err, "compile filter %q", source)
	}
	return &Filter{source: source, program: program}, nil
}

// String returns the filter source.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Match evaluates the filter for one entity.
func (f *Filter) Match(e Entity) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, envFor(e))
	if err != nil {
		return false, errors.Wrap(errors.ErrCodeInvalidFilter, err, "evaluate filter on %s", e.ID)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, errors.New(errors.ErrCodeInvalidFilter, "filter returned %T, want bool", out)
	}
	return ok, nil
}

// Apply returns the matching entities in input order.
func (f *Filter) Apply(entities []Entity) ([]Entity, error) {
	if f == nil {
		return entities, nil
	}
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		ok, err := f.Match(e)
		if err != nil {
			return nil, fmt.Errorf("filter: %w", err)
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func envFor(e Entity) FilterEnv {
	env := FilterEnv{
		ID:         e.ID,
		Name:       e.DisplayName,
		Attributes: len(e.Attributes),
		Fields:     make([]string, 0, len(e.Attributes)),
	}
	for _, a := range e.Attributes {
		env.Fields = append(env.Fields, a.Name)
		if a.IsRelation() {
			env.Relations++
			env.Targets = append(env.Targets, a.Relation.TargetEntityID)
		}
	}
	return env
}
