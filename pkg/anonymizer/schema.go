package anonymizer

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astparser"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astprinter"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/asttransform"
)

// Schema is a parsed GraphQL schema definition language document.
type Schema struct {
	input []byte
	hash  uint64

	// definition is the parsed input merged with the base schema. Refs of user defined
	// elements are identical to those of a plain parse of input.
	definition           ast.Document
	directiveDefinitions map[string]int
}

func NewSchemaFromString(schema string) (*Schema, error) {
	return NewSchemaFromBytes([]byte(schema))
}

func NewSchemaFromReader(reader io.Reader) (*Schema, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "reading schema")
	}

	return NewSchemaFromBytes(content)
}

func NewSchemaFromFile(path string) (*Schema, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading schema file %s", path)
	}

	return NewSchemaFromBytes(content)
}

func NewSchemaFromBytes(schema []byte) (*Schema, error) {
	input := make([]byte, len(schema))
	copy(input, schema)

	definition, report := astparser.ParseGraphqlDocumentBytes(input)
	if report.HasErrors() {
		return nil, report
	}

	if err := checkTypeSystemOnly(&definition); err != nil {
		return nil, err
	}

	if err := asttransform.MergeDefinitionWithBaseSchema(&definition); err != nil {
		return nil, errors.Wrap(err, "merging base schema")
	}

	s := &Schema{
		input:                input,
		hash:                 xxhash.Sum64(input),
		definition:           definition,
		directiveDefinitions: make(map[string]int, len(definition.DirectiveDefinitions)),
	}

	for ref := range definition.DirectiveDefinitions {
		name := definition.Input.ByteSliceString(definition.DirectiveDefinitions[ref].Name)
		if _, exists := s.directiveDefinitions[name]; !exists {
			s.directiveDefinitions[name] = ref
		}
	}

	return s, nil
}

func checkTypeSystemOnly(document *ast.Document) error {
	for _, node := range document.RootNodes {
		switch node.Kind {
		case ast.NodeKindOperationDefinition, ast.NodeKindFragmentDefinition:
			return errors.Wrap(ErrUnsupportedSchemaDocument, "executable definition")
		case ast.NodeKindSchemaExtension,
			ast.NodeKindObjectTypeExtension,
			ast.NodeKindInterfaceTypeExtension,
			ast.NodeKindUnionTypeExtension,
			ast.NodeKindEnumTypeExtension,
			ast.NodeKindInputObjectTypeExtension,
			ast.NodeKindScalarTypeExtension:
			return errors.Wrapf(ErrUnsupportedSchemaDocument, "type extension of %s", document.NodeNameBytes(node))
		}
	}

	return nil
}

// String returns the schema as it was given.
func (s *Schema) String() string {
	return string(s.input)
}

func (s *Schema) Bytes() []byte {
	return s.input
}

// Hash is a fingerprint of the schema input.
func (s *Schema) Hash() uint64 {
	return s.hash
}

// Document parses a fresh copy of the schema without the base schema definitions.
// Changes to the returned document never affect s.
func (s *Schema) Document() (*ast.Document, error) {
	document, report := astparser.ParseGraphqlDocumentBytes(s.input)
	if report.HasErrors() {
		return nil, report
	}
	return &document, nil
}

// Pretty prints the schema without the base schema definitions.
func (s *Schema) Pretty() (string, error) {
	document, err := s.Document()
	if err != nil {
		return "", err
	}

	return astprinter.PrintStringIndent(document, "  ")
}

// typeNode finds the type definition with the given name, including base schema types.
func (s *Schema) typeNode(name []byte) (ast.Node, bool) {
	return s.definition.Index.FirstNonExtensionNodeByNameBytes(name)
}
