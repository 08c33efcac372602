package schema

import (
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/erchart/pkg/errors"
)

// NormalizeOptions configures [Normalize].
type NormalizeOptions struct {
	// Logger receives one WARN line per skipped record or attribute.
	// A nil Logger discards output.
	Logger *log.Logger
}

// Normalize converts provider records into entities.
//
// Records keep their input order, and attributes keep their insertion order.
// Malformed attributes (no type discriminator, a value that is not an
// object, a relation without target) are skipped and reported as
// MALFORMED_ATTRIBUTE warnings. Records without an identifier and records
// repeating an earlier identifier are skipped as well. Normalize never fails:
// a partial schema still yields a partial model.
func Normalize(records []Record, opts NormalizeOptions) ([]Entity, []errors.Warning) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var (
		entities = make([]Entity, 0, len(records))
		warnings []errors.Warning
		seen     = make(map[string]bool, len(records))
	)
	warn := func(w errors.Warning) {
		warnings = append(warnings, w)
		logger.Warn(w.Message, "code", w.Code, "entity", w.Entity, "attribute", w.Attribute)
	}

	for i, rec := range records {
		id := rec.ID()
		if err := errors.ValidateEntityID(id); err != nil {
			warn(errors.Warning{
				Code:    errors.ErrCodeInvalidInput,
				Message: "skipping record " + strconv.Itoa(i) + ": " + errors.UserMessage(err),
			})
			continue
		}
		if seen[id] {
			warn(errors.Warning{
				Code:    errors.ErrCodeInvalidInput,
				Entity:  id,
				Message: "duplicate entity id, keeping the first record",
			})
			continue
		}
		seen[id] = true

		e := Entity{
			ID:          id,
			DisplayName: DisplayName(rec),
			Attributes:  make([]Attribute, 0, rec.Len()),
		}
		rec.Each(func(name string, raw RawAttribute) {
			attr, ok, w := normalizeAttribute(id, name, raw)
			if !ok {
				warn(w)
				return
			}
			e.Attributes = append(e.Attributes, attr)
		})
		logger.Debug("normalized entity", "entity", id, "attributes", len(e.Attributes))
		entities = append(entities, e)
	}
	return entities, warnings
}

func normalizeAttribute(entity, name string, raw RawAttribute) (Attribute, bool, errors.Warning) {
	switch {
	case name == "":
		return Attribute{}, false, errors.MalformedAttribute(entity, name, "attribute has an empty name")
	case raw.Invalid != "":
		return Attribute{}, false, errors.MalformedAttribute(entity, name, "%s", raw.Invalid)
	case raw.Type == "":
		return Attribute{}, false, errors.MalformedAttribute(entity, name, "missing type discriminator")
	case raw.Type != TypeRelation:
		return Attribute{Name: name, Kind: KindScalar, Type: raw.Type}, true, errors.Warning{}
	}

	target := TargetID(raw.Target)
	if target == "" {
		return Attribute{}, false, errors.MalformedAttribute(entity, name, "relation has no target")
	}
	return Attribute{
		Name: name,
		Kind: KindRelation,
		Type: raw.Type,
		Relation: &RelationInfo{
			TargetEntityID: target,
			Cardinality:    raw.Relation,
			Inverse:        raw.Inverse(),
		},
	}, true, errors.Warning{}
}

// TargetID extracts the entity id from a dotted target reference:
// "api::supplier.supplier" yields "supplier". A reference without dots is
// returned unchanged.
func TargetID(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndexByte(ref, '.'); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
