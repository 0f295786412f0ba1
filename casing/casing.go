// Package casing implements the identifier casing policy from spec.md §4.6:
// entity/type names become PascalCase generated identifiers; attribute and
// enumeration item names become snake_case field identifiers.
package casing

import "strings"

// TypeName converts an EXPRESS entity or type name (conventionally
// lower_snake_case, e.g. "cartesian_point") to a PascalCase Go identifier
// ("CartesianPoint").
func TypeName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(strings.ToLower(p[1:]))
	}
	if b.Len() == 0 {
		return name
	}
	return b.String()
}

// FieldName converts an EXPRESS attribute or enumeration item name to an
// exported Go field identifier that keeps its snake_case shape, only
// capitalizing the leading rune so the result is still exported
// (e.g. "m_ref" -> "M_ref").
func FieldName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
