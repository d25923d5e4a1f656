package anonymizer

import (
	"github.com/pkg/errors"
)

var (
	// ErrMultipleOperations is returned for a query document with more than one operation definition.
	ErrMultipleOperations = errors.New("query must have exactly one operation")

	// ErrUnresolved is returned when a query references a field, argument, fragment or type
	// the schema does not define. Queries are expected to be valid against the schema.
	ErrUnresolved = errors.New("unresolved name")

	ErrInvalidVariables = errors.New("variables must be a JSON object")

	ErrUnsupportedSchemaDocument = errors.New("schema document must only contain type system definitions")
)
