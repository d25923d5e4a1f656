package anonymizer

import (
	"bytes"
	"strconv"

	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
)

// schemaMaterializer writes the names collected by the schemaRenamer into the document.
// plan resolves everything that depends on original names, apply only writes.
type schemaMaterializer struct {
	document  *ast.Document
	names     ElementNames
	allocator *nameAllocator

	stringDefaults map[int]string
	intDefaults    map[int]int

	typeNames            map[string]string
	directiveNames       map[string]string
	directiveDefinitions map[string]int
	argumentNames        map[int]string
	stringArguments      map[int]string
	literals             *literalCollector
}

func newSchemaMaterializer(document *ast.Document, names ElementNames, allocator *nameAllocator) *schemaMaterializer {
	return &schemaMaterializer{
		document:             document,
		names:                names,
		allocator:            allocator,
		stringDefaults:       make(map[int]string),
		intDefaults:          make(map[int]int),
		typeNames:            make(map[string]string),
		directiveNames:       make(map[string]string),
		directiveDefinitions: make(map[string]int),
		argumentNames:        make(map[int]string),
		stringArguments:      make(map[int]string),
		literals:             newLiteralCollector(document, document, names),
	}
}

func (m *schemaMaterializer) materialize() {
	m.plan()
	m.apply()
}

func (m *schemaMaterializer) name(ref ast.ByteSliceReference) string {
	return m.document.Input.ByteSliceString(ref)
}

func (m *schemaMaterializer) plan() {
	m.ensureSchemaDefinition()

	for element, newName := range m.names {
		switch element.Kind {
		case ast.NodeKindObjectTypeDefinition:
			m.typeNames[m.name(m.document.ObjectTypeDefinitions[element.Ref].Name)] = newName
		case ast.NodeKindInterfaceTypeDefinition:
			m.typeNames[m.name(m.document.InterfaceTypeDefinitions[element.Ref].Name)] = newName
		case ast.NodeKindUnionTypeDefinition:
			m.typeNames[m.name(m.document.UnionTypeDefinitions[element.Ref].Name)] = newName
		case ast.NodeKindEnumTypeDefinition:
			m.typeNames[m.name(m.document.EnumTypeDefinitions[element.Ref].Name)] = newName
		case ast.NodeKindInputObjectTypeDefinition:
			m.typeNames[m.name(m.document.InputObjectTypeDefinitions[element.Ref].Name)] = newName
		case ast.NodeKindScalarTypeDefinition:
			m.typeNames[m.name(m.document.ScalarTypeDefinitions[element.Ref].Name)] = newName
		case ast.NodeKindDirectiveDefinition:
			m.directiveNames[m.name(m.document.DirectiveDefinitions[element.Ref].Name)] = newName
		}
	}

	for ref := range m.document.DirectiveDefinitions {
		name := m.name(m.document.DirectiveDefinitions[ref].Name)
		if _, exists := m.directiveDefinitions[name]; !exists {
			m.directiveDefinitions[name] = ref
		}
	}

	for ref := range m.document.Directives {
		m.planDirective(ref)
	}

	for ref := range m.document.InputValueDefinitions {
		defaultValue := m.document.InputValueDefinitions[ref].DefaultValue
		if !defaultValue.IsDefined {
			continue
		}
		if _, renamed := m.names.lookup(ast.NodeKindInputValueDefinition, ref); !renamed {
			continue
		}
		m.literals.collect(defaultValue.Value, m.document.InputValueDefinitions[ref].Type)
	}
}

// planDirective resolves the arguments of a directive applied somewhere in the schema.
func (m *schemaMaterializer) planDirective(ref int) {
	definition, exists := m.directiveDefinitions[m.name(m.document.Directives[ref].Name)]

	for _, argument := range m.document.Directives[ref].Arguments.Refs {
		argumentName := m.name(m.document.Arguments[argument].Name)
		value := m.document.Arguments[argument].Value

		m.planStrings(value)

		if !exists {
			continue
		}

		for _, inputValue := range m.document.DirectiveDefinitions[definition].ArgumentsDefinition.Refs {
			if m.name(m.document.InputValueDefinitions[inputValue].Name) != argumentName {
				continue
			}
			if newName, renamed := m.names.lookup(ast.NodeKindInputValueDefinition, inputValue); renamed {
				m.argumentNames[argument] = newName
			}
			m.literals.collect(value, m.document.InputValueDefinitions[inputValue].Type)
			break
		}
	}
}

// planStrings replaces every string inside value, including those nested in lists and
// input objects.
func (m *schemaMaterializer) planStrings(value ast.Value) {
	switch value.Kind {
	case ast.ValueKindString:
		m.stringArguments[value.Ref] = m.allocator.next(categoryStringValue)
	case ast.ValueKindList:
		for _, ref := range m.document.ListValues[value.Ref].Refs {
			m.planStrings(m.document.Values[ref])
		}
	case ast.ValueKindObject:
		for _, ref := range m.document.ObjectValues[value.Ref].Refs {
			m.planStrings(m.document.ObjectFields[ref].Value)
		}
	}
}

// ensureSchemaDefinition adds a schema definition when root operation types are only
// recognized by their default names, which are about to be replaced.
func (m *schemaMaterializer) ensureSchemaDefinition() {
	if m.document.HasSchemaDefinition() {
		return
	}

	var rootOperationTypeRefs []int
	for i := range m.document.RootNodes {
		if m.document.RootNodes[i].Kind != ast.NodeKindObjectTypeDefinition {
			continue
		}

		typeName := m.document.ObjectTypeDefinitionNameBytes(m.document.RootNodes[i].Ref)
		switch {
		case bytes.Equal(typeName, ast.DefaultQueryTypeName):
			rootOperationTypeRefs = append(rootOperationTypeRefs, m.document.CreateRootOperationTypeDefinition(ast.OperationTypeQuery, i))
		case bytes.Equal(typeName, ast.DefaultMutationTypeName):
			rootOperationTypeRefs = append(rootOperationTypeRefs, m.document.CreateRootOperationTypeDefinition(ast.OperationTypeMutation, i))
		case bytes.Equal(typeName, ast.DefaultSubscriptionTypeName):
			rootOperationTypeRefs = append(rootOperationTypeRefs, m.document.CreateRootOperationTypeDefinition(ast.OperationTypeSubscription, i))
		}
	}

	if len(rootOperationTypeRefs) == 0 {
		return
	}

	m.document.AddSchemaDefinitionRootNode(ast.SchemaDefinition{})
	m.document.SchemaDefinitions[m.document.SchemaDefinitionRef()].AddRootOperationTypeDefinitionRefs(rootOperationTypeRefs...)
}

func (m *schemaMaterializer) apply() {
	input := &m.document.Input

	for element, newName := range m.names {
		name := input.AppendInputString(newName)
		switch element.Kind {
		case ast.NodeKindObjectTypeDefinition:
			m.document.ObjectTypeDefinitions[element.Ref].Name = name
			m.document.ObjectTypeDefinitions[element.Ref].Description = ast.Description{}
		case ast.NodeKindInterfaceTypeDefinition:
			m.document.InterfaceTypeDefinitions[element.Ref].Name = name
			m.document.InterfaceTypeDefinitions[element.Ref].Description = ast.Description{}
		case ast.NodeKindUnionTypeDefinition:
			m.document.UnionTypeDefinitions[element.Ref].Name = name
			m.document.UnionTypeDefinitions[element.Ref].Description = ast.Description{}
		case ast.NodeKindEnumTypeDefinition:
			m.document.EnumTypeDefinitions[element.Ref].Name = name
			m.document.EnumTypeDefinitions[element.Ref].Description = ast.Description{}
		case ast.NodeKindEnumValueDefinition:
			m.document.EnumValueDefinitions[element.Ref].EnumValue = name
			m.document.EnumValueDefinitions[element.Ref].Description = ast.Description{}
		case ast.NodeKindInputObjectTypeDefinition:
			m.document.InputObjectTypeDefinitions[element.Ref].Name = name
			m.document.InputObjectTypeDefinitions[element.Ref].Description = ast.Description{}
		case ast.NodeKindScalarTypeDefinition:
			m.document.ScalarTypeDefinitions[element.Ref].Name = name
			m.document.ScalarTypeDefinitions[element.Ref].Description = ast.Description{}
		case ast.NodeKindDirectiveDefinition:
			m.document.DirectiveDefinitions[element.Ref].Name = name
			m.document.DirectiveDefinitions[element.Ref].Description = ast.Description{}
		case ast.NodeKindFieldDefinition:
			m.document.FieldDefinitions[element.Ref].Name = name
			m.document.FieldDefinitions[element.Ref].Description = ast.Description{}
		case ast.NodeKindInputValueDefinition:
			m.document.InputValueDefinitions[element.Ref].Name = name
			m.document.InputValueDefinitions[element.Ref].Description = ast.Description{}
		}
	}

	for ref := range m.document.Types {
		if m.document.Types[ref].TypeKind != ast.TypeKindNamed {
			continue
		}
		if newName, ok := m.typeNames[m.name(m.document.Types[ref].Name)]; ok {
			m.document.Types[ref].Name = input.AppendInputString(newName)
		}
	}

	for ref := range m.document.RootOperationTypeDefinitions {
		namedType := &m.document.RootOperationTypeDefinitions[ref].NamedType
		if newName, ok := m.typeNames[m.name(namedType.Name)]; ok {
			namedType.Name = input.AppendInputString(newName)
		}
	}

	for ref := range m.document.Directives {
		if newName, ok := m.directiveNames[m.name(m.document.Directives[ref].Name)]; ok {
			m.document.Directives[ref].Name = input.AppendInputString(newName)
		}
	}

	for ref, newName := range m.argumentNames {
		m.document.Arguments[ref].Name = input.AppendInputString(newName)
	}

	for ref, value := range m.stringArguments {
		m.document.StringValues[ref].Content = input.AppendInputString(value)
		m.document.StringValues[ref].BlockString = false
	}

	for ref, value := range m.stringDefaults {
		m.document.StringValues[ref].Content = input.AppendInputString(value)
		m.document.StringValues[ref].BlockString = false
	}

	for ref, value := range m.intDefaults {
		m.document.IntValues[ref].Raw = input.AppendInputString(strconv.Itoa(value))
		m.document.IntValues[ref].Negative = false
	}

	m.literals.apply()
}
