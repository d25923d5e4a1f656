package anonymizer

import (
	"github.com/pkg/errors"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astvisitor"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/operationreport"
)

// queryNames holds the new names of one query document.
type queryNames struct {
	// nodes maps fields, arguments, directives, fragment spreads and fragment definitions
	nodes     map[ast.Node]string
	variables map[string]string
	aliases   map[int]string

	enumValues   map[int]string
	objectFields map[int]string
}

func newQueryNames() *queryNames {
	return &queryNames{
		nodes:     make(map[ast.Node]string),
		variables: make(map[string]string),
		aliases:   make(map[int]string),
	}
}

// queryResolver resolves every name of a query document against the original schema.
// It never modifies the operation.
type queryResolver struct {
	walker     *astvisitor.Walker
	operation  *ast.Document
	schema     *Schema
	names      ElementNames
	allocator  *nameAllocator
	literals   *literalCollector
	result     *queryNames
	keptFields map[int]struct{}

	renameDirectives bool
}

func newQueryResolver(schema *Schema, names ElementNames, renameDirectives bool) *queryResolver {
	walker := astvisitor.NewWalker(48)
	resolver := &queryResolver{
		walker:           &walker,
		schema:           schema,
		names:            names,
		renameDirectives: renameDirectives,
	}

	walker.RegisterEnterFieldVisitor(resolver)
	walker.RegisterEnterArgumentVisitor(resolver)
	walker.RegisterEnterDirectiveVisitor(resolver)
	walker.RegisterEnterFragmentSpreadVisitor(resolver)
	walker.RegisterEnterVariableDefinitionVisitor(resolver)
	walker.RegisterLeaveDocumentVisitor(resolver)

	return resolver
}

func (r *queryResolver) resolve(operation *ast.Document, allocator *nameAllocator) (*queryNames, error) {
	operations := 0
	for _, node := range operation.RootNodes {
		if node.Kind == ast.NodeKindOperationDefinition {
			operations++
		}
	}
	if operations > 1 {
		return nil, ErrMultipleOperations
	}

	r.operation = operation
	r.allocator = allocator
	r.result = newQueryNames()
	r.keptFields = make(map[int]struct{})
	r.literals = newLiteralCollector(&r.schema.definition, operation, r.names)
	r.result.enumValues = r.literals.enumValues
	r.result.objectFields = r.literals.objectFields

	for _, node := range operation.RootNodes {
		if node.Kind == ast.NodeKindOperationDefinition {
			r.numberOperation(node.Ref)
		}
	}

	report := operationreport.Report{}
	r.walker.Walk(operation, &r.schema.definition, &report)
	if report.HasErrors() {
		if len(report.InternalErrors) > 0 {
			return nil, report.InternalErrors[0]
		}
		return nil, errors.Wrap(ErrUnresolved, report.Error())
	}

	return r.result, nil
}

func (r *queryResolver) unresolved(format string, args ...interface{}) {
	r.walker.StopWithInternalErr(errors.Wrapf(ErrUnresolved, format, args...))
}

func (r *queryResolver) EnterField(ref int) {
	if r.operation.Fields[ref].Alias.IsDefined {
		r.result.aliases[ref] = r.allocator.next(categoryAlias)
	}

	fieldName := r.operation.FieldNameString(ref)
	typeName := string(r.schema.definition.NodeNameBytes(r.walker.EnclosingTypeDefinition))

	field := ast.Node{Kind: ast.NodeKindField, Ref: ref}
	if definition, exists := r.walker.FieldDefinition(ref); exists {
		if newName, renamed := r.names.lookup(ast.NodeKindFieldDefinition, definition); renamed {
			r.result.nodes[field] = newName
			return
		}
	}

	if !isMetaName(fieldName) && !isMetaName(typeName) {
		r.unresolved("field %s on type %s", fieldName, typeName)
		return
	}

	r.result.nodes[field] = fieldName
	r.keptFields[ref] = struct{}{}
}

func (r *queryResolver) EnterArgument(ref int) {
	argumentName := r.operation.ArgumentNameString(ref)

	definition, exists := r.walker.ArgumentInputValueDefinition(ref)
	if !exists {
		r.unresolved("argument %s", argumentName)
		return
	}

	r.literals.collect(r.operation.Arguments[ref].Value, r.schema.definition.InputValueDefinitions[definition].Type)

	argument := ast.Node{Kind: ast.NodeKindArgument, Ref: ref}
	if newName, renamed := r.names.lookup(ast.NodeKindInputValueDefinition, definition); renamed {
		r.result.nodes[argument] = newName
		return
	}

	if !r.keepsArgumentNames(r.walker.Ancestor()) {
		r.unresolved("argument %s", argumentName)
		return
	}

	r.result.nodes[argument] = argumentName
}

// keepsArgumentNames reports whether the arguments of ancestor belong to an element
// that is not renamed, like a builtin directive or an introspection field.
func (r *queryResolver) keepsArgumentNames(ancestor ast.Node) bool {
	switch ancestor.Kind {
	case ast.NodeKindField:
		_, kept := r.keptFields[ancestor.Ref]
		return kept
	case ast.NodeKindDirective:
		return isBuiltinDirective(r.operation.DirectiveNameString(ancestor.Ref))
	default:
		return false
	}
}

func (r *queryResolver) EnterDirective(ref int) {
	if !r.renameDirectives {
		return
	}

	definition, exists := r.schema.directiveDefinitions[r.operation.DirectiveNameString(ref)]
	if !exists {
		return
	}

	if newName, renamed := r.names.lookup(ast.NodeKindDirectiveDefinition, definition); renamed {
		r.result.nodes[ast.Node{Kind: ast.NodeKindDirective, Ref: ref}] = newName
	}
}

func (r *queryResolver) EnterFragmentSpread(ref int) {
	spreadName := r.operation.FragmentSpreadNameBytes(ref)

	definition, exists := r.operation.FragmentDefinitionRef(spreadName)
	if !exists {
		r.unresolved("fragment %s", spreadName)
		return
	}

	r.result.nodes[ast.Node{Kind: ast.NodeKindFragmentSpread, Ref: ref}] = r.fragmentName(definition)
}

func (r *queryResolver) EnterVariableDefinition(ref int) {
	variableDefinition := r.operation.VariableDefinitions[ref]
	if variableDefinition.DefaultValue.IsDefined {
		r.literals.collectDocumentTyped(variableDefinition.DefaultValue.Value, variableDefinition.Type)
	}
}

// numberOperation names fragments and variables in the order a depth first traversal of
// the operation reaches them. A fragment is entered at its first spread.
func (r *queryResolver) numberOperation(ref int) {
	operation := r.operation.OperationDefinitions[ref]
	r.numberDirectives(operation.Directives.Refs)
	if operation.HasSelections {
		r.numberSelectionSet(operation.SelectionSet)
	}
}

func (r *queryResolver) numberSelectionSet(ref int) {
	for _, selectionRef := range r.operation.SelectionSets[ref].SelectionRefs {
		selection := r.operation.Selections[selectionRef]
		switch selection.Kind {
		case ast.SelectionKindField:
			field := r.operation.Fields[selection.Ref]
			r.numberArguments(field.Arguments.Refs)
			r.numberDirectives(field.Directives.Refs)
			if field.HasSelections {
				r.numberSelectionSet(field.SelectionSet)
			}
		case ast.SelectionKindInlineFragment:
			inlineFragment := r.operation.InlineFragments[selection.Ref]
			r.numberDirectives(inlineFragment.Directives.Refs)
			if inlineFragment.HasSelections {
				r.numberSelectionSet(inlineFragment.SelectionSet)
			}
		case ast.SelectionKindFragmentSpread:
			r.numberDirectives(r.operation.FragmentSpreads[selection.Ref].Directives.Refs)
			r.numberFragmentSpread(selection.Ref)
		}
	}
}

func (r *queryResolver) numberFragmentSpread(ref int) {
	definition, exists := r.operation.FragmentDefinitionRef(r.operation.FragmentSpreadNameBytes(ref))
	if !exists {
		return
	}

	if _, named := r.result.nodes[ast.Node{Kind: ast.NodeKindFragmentDefinition, Ref: definition}]; named {
		return
	}
	r.fragmentName(definition)

	fragment := r.operation.FragmentDefinitions[definition]
	r.numberDirectives(fragment.Directives.Refs)
	if fragment.HasSelections {
		r.numberSelectionSet(fragment.SelectionSet)
	}
}

func (r *queryResolver) numberDirectives(refs []int) {
	for _, ref := range refs {
		r.numberArguments(r.operation.Directives[ref].Arguments.Refs)
	}
}

func (r *queryResolver) numberArguments(refs []int) {
	for _, ref := range refs {
		r.numberValue(r.operation.Arguments[ref].Value)
	}
}

func (r *queryResolver) numberValue(value ast.Value) {
	switch value.Kind {
	case ast.ValueKindVariable:
		r.variableName(r.operation.VariableValueNameString(value.Ref))
	case ast.ValueKindList:
		for _, ref := range r.operation.ListValues[value.Ref].Refs {
			r.numberValue(r.operation.Values[ref])
		}
	case ast.ValueKindObject:
		for _, ref := range r.operation.ObjectValues[value.Ref].Refs {
			r.numberValue(r.operation.ObjectFields[ref].Value)
		}
	}
}

// LeaveDocument names fragments that are never spread and variables that are not used
// inside an argument, so every node of the document has a name.
func (r *queryResolver) LeaveDocument(operation, definition *ast.Document) {
	for ref := range r.operation.FragmentDefinitions {
		r.fragmentName(ref)
	}
	for ref := range r.operation.VariableValues {
		r.variableName(r.operation.VariableValueNameString(ref))
	}
}

func (r *queryResolver) fragmentName(definition int) string {
	node := ast.Node{Kind: ast.NodeKindFragmentDefinition, Ref: definition}
	if name, ok := r.result.nodes[node]; ok {
		return name
	}

	name := r.allocator.next(categoryFragment)
	r.result.nodes[node] = name
	return name
}

func (r *queryResolver) variableName(original string) {
	if _, ok := r.result.variables[original]; ok {
		return
	}
	r.result.variables[original] = r.allocator.next(categoryVariable)
}
