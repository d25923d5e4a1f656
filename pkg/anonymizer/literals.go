package anonymizer

import (
	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
)

// literalCollector walks a value of document and records new names for the enum literals
// and input object field names it contains. Input types are resolved in definition.
type literalCollector struct {
	definition *ast.Document
	document   *ast.Document
	names      ElementNames

	enumValues   map[int]string
	objectFields map[int]string
}

func newLiteralCollector(definition, document *ast.Document, names ElementNames) *literalCollector {
	return &literalCollector{
		definition:   definition,
		document:     document,
		names:        names,
		enumValues:   make(map[int]string),
		objectFields: make(map[int]string),
	}
}

// collect handles a value whose input type is the definition type typeRef.
func (c *literalCollector) collect(value ast.Value, typeRef int) {
	if typeRef == ast.InvalidRef {
		c.collectNamed(value, ast.InvalidNode)
		return
	}
	c.collectNamed(value, c.namedType(c.definition.ResolveTypeNameBytes(typeRef)))
}

// collectDocumentTyped handles a value whose input type is the document type typeRef,
// e.g. the default value of a variable definition.
func (c *literalCollector) collectDocumentTyped(value ast.Value, typeRef int) {
	c.collectNamed(value, c.namedType(c.document.ResolveTypeNameBytes(typeRef)))
}

func (c *literalCollector) namedType(name ast.ByteSlice) ast.Node {
	node, exists := c.definition.Index.FirstNonExtensionNodeByNameBytes(name)
	if !exists {
		return ast.InvalidNode
	}
	return node
}

func (c *literalCollector) collectNamed(value ast.Value, typeNode ast.Node) {
	switch value.Kind {
	case ast.ValueKindList:
		for _, ref := range c.document.ListValues[value.Ref].Refs {
			c.collectNamed(c.document.Values[ref], typeNode)
		}
	case ast.ValueKindObject:
		for _, ref := range c.document.ObjectValues[value.Ref].Refs {
			fieldType := ast.InvalidNode
			if typeNode.Kind == ast.NodeKindInputObjectTypeDefinition {
				if inputField, exists := c.inputField(typeNode.Ref, c.document.ObjectFieldNameString(ref)); exists {
					if name, renamed := c.names.lookup(ast.NodeKindInputValueDefinition, inputField); renamed {
						c.objectFields[ref] = name
					}
					fieldType = c.namedType(c.definition.ResolveTypeNameBytes(c.definition.InputValueDefinitions[inputField].Type))
				}
			}
			c.collectNamed(c.document.ObjectFields[ref].Value, fieldType)
		}
	case ast.ValueKindEnum:
		if typeNode.Kind != ast.NodeKindEnumTypeDefinition {
			return
		}
		literal := c.document.EnumValueNameString(value.Ref)
		for _, ref := range c.definition.EnumTypeDefinitions[typeNode.Ref].EnumValuesDefinition.Refs {
			if c.definition.Input.ByteSliceString(c.definition.EnumValueDefinitions[ref].EnumValue) != literal {
				continue
			}
			if name, renamed := c.names.lookup(ast.NodeKindEnumValueDefinition, ref); renamed {
				c.enumValues[value.Ref] = name
			}
			return
		}
	}
}

func (c *literalCollector) inputField(inputObject int, name string) (int, bool) {
	for _, ref := range c.definition.InputObjectTypeDefinitions[inputObject].InputFieldsDefinition.Refs {
		if c.definition.Input.ByteSliceString(c.definition.InputValueDefinitions[ref].Name) == name {
			return ref, true
		}
	}
	return ast.InvalidRef, false
}

// apply writes the collected names into document.
func (c *literalCollector) apply() {
	for ref, name := range c.enumValues {
		c.document.EnumValues[ref].Name = c.document.Input.AppendInputString(name)
	}
	for ref, name := range c.objectFields {
		c.document.ObjectFields[ref].Name = c.document.Input.AppendInputString(name)
	}
}
