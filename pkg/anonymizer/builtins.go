package anonymizer

import (
	"strings"
)

var introspectionTypes = map[string]struct{}{
	"__Schema":            {},
	"__Type":              {},
	"__TypeKind":          {},
	"__Field":             {},
	"__InputValue":        {},
	"__EnumValue":         {},
	"__Directive":         {},
	"__DirectiveLocation": {},
}

var builtinScalars = map[string]struct{}{
	"String":  {},
	"Int":     {},
	"Float":   {},
	"Boolean": {},
	"ID":      {},
}

var builtinDirectives = map[string]struct{}{
	"include":     {},
	"skip":        {},
	"deprecated":  {},
	"specifiedBy": {},
	"oneOf":       {},
	"defer":       {},
	"stream":      {},
}

func isIntrospectionType(name string) bool {
	_, ok := introspectionTypes[name]
	return ok
}

func isBuiltinScalar(name string) bool {
	_, ok := builtinScalars[name]
	return ok
}

func isBuiltinDirective(name string) bool {
	_, ok := builtinDirectives[name]
	return ok
}

// isMetaName reports names reserved for introspection, e.g. __typename or __Type.
func isMetaName(name string) bool {
	return strings.HasPrefix(name, "__")
}
