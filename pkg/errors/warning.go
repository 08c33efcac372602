package errors

import "fmt"

// Warning describes a non-fatal anomaly found while loading a schema or
// building the diagram. Warnings never abort the pipeline; they are logged
// and collected so hosts can show them next to the diagram.
type Warning struct {
	Code      Code   `json:"code"`
	Entity    string `json:"entity,omitempty"`
	Attribute string `json:"attribute,omitempty"`
	Message   string `json:"message"`
}

// String formats the warning as "CODE entity.attribute: message".
func (w Warning) String() string {
	switch {
	case w.Entity != "" && w.Attribute != "":
		return fmt.Sprintf("%s %s.%s: %s", w.Code, w.Entity, w.Attribute, w.Message)
	case w.Entity != "":
		return fmt.Sprintf("%s %s: %s", w.Code, w.Entity, w.Message)
	default:
		return fmt.Sprintf("%s: %s", w.Code, w.Message)
	}
}

// MalformedAttribute creates a MALFORMED_ATTRIBUTE warning.
func MalformedAttribute(entity, attr, format string, args ...any) Warning {
	return Warning{
		Code:      ErrCodeMalformedAttribute,
		Entity:    entity,
		Attribute: attr,
		Message:   fmt.Sprintf(format, args...),
	}
}

// UnresolvedRelation creates an UNRESOLVED_RELATION warning.
func UnresolvedRelation(entity, attr, format string, args ...any) Warning {
	return Warning{
		Code:      ErrCodeUnresolvedRelation,
		Entity:    entity,
		Attribute: attr,
		Message:   fmt.Sprintf(format, args...),
	}
}
