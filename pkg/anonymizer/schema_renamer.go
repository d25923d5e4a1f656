package anonymizer

import (
	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astprinter"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astvisitor"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/operationreport"
)

// Element identifies a named schema element by its node kind and ref inside the parsed schema.
type Element struct {
	Kind ast.NodeKind
	Ref  int
}

// ElementNames associates every renamed schema element with its new name.
// It is complete once RenameSchema returns and must not be modified afterwards.
type ElementNames map[Element]string

func (e ElementNames) lookup(kind ast.NodeKind, ref int) (string, bool) {
	name, ok := e[Element{Kind: kind, Ref: ref}]
	return name, ok
}

// SchemaRenaming is the result of RenameSchema.
type SchemaRenaming struct {
	Schema *Schema
	Names  ElementNames
}

// RenameSchema assigns a new name to every schema element that is not part of the
// introspection system and not a builtin scalar or directive. schema is not modified.
func RenameSchema(schema *Schema) (*SchemaRenaming, error) {
	document, err := schema.Document()
	if err != nil {
		return nil, err
	}

	report := operationreport.Report{}
	renamer := newSchemaRenamer()
	names := renamer.rename(document, &report)
	if report.HasErrors() {
		return nil, report
	}

	printed, err := astprinter.PrintStringIndent(document, "  ")
	if err != nil {
		return nil, err
	}

	renamed, err := NewSchemaFromString(printed)
	if err != nil {
		return nil, err
	}

	return &SchemaRenaming{
		Schema: renamed,
		Names:  names,
	}, nil
}

// schemaRenamer visits the schema in declaration order and collects the new names.
// Nothing is written to the document before the walk has finished.
type schemaRenamer struct {
	walker    *astvisitor.Walker
	document  *ast.Document
	allocator *nameAllocator
	names     ElementNames

	stringDefaults map[int]string
	intDefaults    map[int]int
}

func newSchemaRenamer() *schemaRenamer {
	walker := astvisitor.NewWalker(48)
	renamer := &schemaRenamer{
		walker: &walker,
	}

	walker.RegisterEnterObjectTypeDefinitionVisitor(renamer)
	walker.RegisterEnterInterfaceTypeDefinitionVisitor(renamer)
	walker.RegisterEnterUnionTypeDefinitionVisitor(renamer)
	walker.RegisterEnterEnumTypeDefinitionVisitor(renamer)
	walker.RegisterEnterEnumValueDefinitionVisitor(renamer)
	walker.RegisterEnterInputObjectTypeDefinitionVisitor(renamer)
	walker.RegisterEnterScalarTypeDefinitionVisitor(renamer)
	walker.RegisterEnterDirectiveDefinitionVisitor(renamer)
	walker.RegisterEnterFieldDefinitionVisitor(renamer)
	walker.RegisterEnterInputValueDefinitionVisitor(renamer)

	return renamer
}

func (r *schemaRenamer) rename(document *ast.Document, report *operationreport.Report) ElementNames {
	r.document = document
	r.allocator = newNameAllocator()
	r.names = make(ElementNames)
	r.stringDefaults = make(map[int]string)
	r.intDefaults = make(map[int]int)

	r.walker.Walk(document, nil, report)
	if report.HasErrors() {
		return nil
	}

	m := newSchemaMaterializer(document, r.names, r.allocator)
	m.stringDefaults = r.stringDefaults
	m.intDefaults = r.intDefaults
	m.materialize()

	return r.names
}

func (r *schemaRenamer) assign(kind ast.NodeKind, ref int, c category) {
	r.names[Element{Kind: kind, Ref: ref}] = r.allocator.next(c)
}

func (r *schemaRenamer) name(ref ast.ByteSliceReference) string {
	return r.document.Input.ByteSliceString(ref)
}

func (r *schemaRenamer) EnterObjectTypeDefinition(ref int) {
	if isIntrospectionType(r.name(r.document.ObjectTypeDefinitions[ref].Name)) {
		r.walker.SkipNode()
		return
	}
	r.assign(ast.NodeKindObjectTypeDefinition, ref, categoryObject)
}

func (r *schemaRenamer) EnterInterfaceTypeDefinition(ref int) {
	if isIntrospectionType(r.name(r.document.InterfaceTypeDefinitions[ref].Name)) {
		r.walker.SkipNode()
		return
	}
	r.assign(ast.NodeKindInterfaceTypeDefinition, ref, categoryInterface)
}

func (r *schemaRenamer) EnterUnionTypeDefinition(ref int) {
	if isIntrospectionType(r.name(r.document.UnionTypeDefinitions[ref].Name)) {
		r.walker.SkipNode()
		return
	}
	r.assign(ast.NodeKindUnionTypeDefinition, ref, categoryUnion)
}

func (r *schemaRenamer) EnterEnumTypeDefinition(ref int) {
	if isIntrospectionType(r.name(r.document.EnumTypeDefinitions[ref].Name)) {
		r.walker.SkipNode()
		return
	}
	r.assign(ast.NodeKindEnumTypeDefinition, ref, categoryEnum)
}

func (r *schemaRenamer) EnterEnumValueDefinition(ref int) {
	r.assign(ast.NodeKindEnumValueDefinition, ref, categoryEnumValue)
}

func (r *schemaRenamer) EnterInputObjectTypeDefinition(ref int) {
	if isIntrospectionType(r.name(r.document.InputObjectTypeDefinitions[ref].Name)) {
		r.walker.SkipNode()
		return
	}
	r.assign(ast.NodeKindInputObjectTypeDefinition, ref, categoryInputObject)
}

func (r *schemaRenamer) EnterScalarTypeDefinition(ref int) {
	if isBuiltinScalar(r.name(r.document.ScalarTypeDefinitions[ref].Name)) {
		r.walker.SkipNode()
		return
	}
	r.assign(ast.NodeKindScalarTypeDefinition, ref, categoryScalar)
}

func (r *schemaRenamer) EnterDirectiveDefinition(ref int) {
	if isBuiltinDirective(r.name(r.document.DirectiveDefinitions[ref].Name)) {
		r.walker.SkipNode()
		return
	}
	r.assign(ast.NodeKindDirectiveDefinition, ref, categoryDirective)
}

func (r *schemaRenamer) EnterFieldDefinition(ref int) {
	if isMetaName(r.name(r.document.FieldDefinitions[ref].Name)) {
		r.walker.SkipNode()
		return
	}
	r.assign(ast.NodeKindFieldDefinition, ref, categoryField)
}

func (r *schemaRenamer) EnterInputValueDefinition(ref int) {
	if r.walker.Ancestors[len(r.walker.Ancestors)-1].Kind != ast.NodeKindInputObjectTypeDefinition {
		r.assign(ast.NodeKindInputValueDefinition, ref, categoryArgument)
		return
	}

	r.assign(ast.NodeKindInputValueDefinition, ref, categoryInputField)

	defaultValue := r.document.InputValueDefinitions[ref].DefaultValue
	if !defaultValue.IsDefined {
		return
	}
	switch defaultValue.Value.Kind {
	case ast.ValueKindString:
		r.stringDefaults[defaultValue.Value.Ref] = r.allocator.next(categoryDefaultString)
	case ast.ValueKindInteger:
		r.intDefaults[defaultValue.Value.Ref] = r.allocator.nextInt(categoryDefaultInt)
	}
}
