package schema

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// DisplayName returns the title shown on an entity's node: the record's
// name when set, otherwise the camelized id ("product-category" becomes
// "ProductCategory").
func DisplayName(r Record) string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return inflect.Camelize(TargetID(r.ID()))
}
