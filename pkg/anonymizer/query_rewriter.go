package anonymizer

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astprinter"
)

const operationName = "operation"

// queryRewriter writes the names resolved by the queryResolver into the operation
// and replaces every string and integer literal.
type queryRewriter struct {
	operation *ast.Document
	schema    *Schema
	names     ElementNames
	query     *queryNames
	allocator *nameAllocator
}

func (r *queryRewriter) rewrite() (string, error) {
	input := &r.operation.Input

	for ref := range r.operation.OperationDefinitions {
		if r.operation.OperationDefinitions[ref].Name.Length() > 0 {
			r.operation.OperationDefinitions[ref].Name = input.AppendInputString(operationName)
		}
	}

	// type names are resolved before anything else is renamed
	for ref := range r.operation.Types {
		if r.operation.Types[ref].TypeKind != ast.TypeKindNamed {
			continue
		}
		newName, err := r.typeName(r.operation.TypeNameBytes(ref))
		if err != nil {
			return "", err
		}
		r.operation.Types[ref].Name = input.AppendInputString(newName)
	}

	for ref := range r.operation.Fields {
		newName, ok := r.query.nodes[ast.Node{Kind: ast.NodeKindField, Ref: ref}]
		if !ok {
			return "", errors.Wrapf(ErrUnresolved, "field %s", r.operation.FieldNameString(ref))
		}
		r.operation.Fields[ref].Name = input.AppendInputString(newName)

		if alias, ok := r.query.aliases[ref]; ok {
			r.operation.Fields[ref].Alias.Name = input.AppendInputString(alias)
		}
	}

	for ref := range r.operation.Arguments {
		newName, ok := r.query.nodes[ast.Node{Kind: ast.NodeKindArgument, Ref: ref}]
		if !ok {
			return "", errors.Wrapf(ErrUnresolved, "argument %s", r.operation.ArgumentNameString(ref))
		}
		r.operation.Arguments[ref].Name = input.AppendInputString(newName)
	}

	for ref := range r.operation.Directives {
		if newName, ok := r.query.nodes[ast.Node{Kind: ast.NodeKindDirective, Ref: ref}]; ok {
			r.operation.Directives[ref].Name = input.AppendInputString(newName)
		}
	}

	for ref := range r.operation.FragmentSpreads {
		newName, ok := r.query.nodes[ast.Node{Kind: ast.NodeKindFragmentSpread, Ref: ref}]
		if !ok {
			return "", errors.Wrapf(ErrUnresolved, "fragment %s", r.operation.FragmentSpreadNameBytes(ref))
		}
		r.operation.FragmentSpreads[ref].FragmentName = input.AppendInputString(newName)
	}

	for ref := range r.operation.FragmentDefinitions {
		newName, ok := r.query.nodes[ast.Node{Kind: ast.NodeKindFragmentDefinition, Ref: ref}]
		if !ok {
			return "", errors.Wrapf(ErrUnresolved, "fragment %s", r.operation.FragmentDefinitionNameString(ref))
		}
		r.operation.FragmentDefinitions[ref].Name = input.AppendInputString(newName)
	}

	for ref := range r.operation.VariableValues {
		original := r.operation.VariableValueNameString(ref)
		newName, ok := r.query.variables[original]
		if !ok {
			return "", errors.Wrapf(ErrUnresolved, "variable $%s", original)
		}
		r.operation.VariableValues[ref].Name = input.AppendInputString(newName)
	}

	for ref := range r.operation.StringValues {
		r.operation.StringValues[ref].Content = input.AppendInputString(r.allocator.next(categoryStringValue))
		r.operation.StringValues[ref].BlockString = false
	}

	for ref := range r.operation.IntValues {
		r.operation.IntValues[ref].Raw = input.AppendInputString(strconv.Itoa(r.allocator.nextInt(categoryIntValue)))
		r.operation.IntValues[ref].Negative = false
	}

	for ref, newName := range r.query.enumValues {
		r.operation.EnumValues[ref].Name = input.AppendInputString(newName)
	}

	for ref, newName := range r.query.objectFields {
		r.operation.ObjectFields[ref].Name = input.AppendInputString(newName)
	}

	return astprinter.PrintString(r.operation)
}

// typeName returns the new name of the schema type called name. Types that are not
// renamed, like builtin scalars, keep their name.
func (r *queryRewriter) typeName(name ast.ByteSlice) (string, error) {
	node, exists := r.schema.typeNode(name)
	if !exists {
		return "", errors.Wrapf(ErrUnresolved, "type %s", name)
	}

	if newName, renamed := r.names.lookup(node.Kind, node.Ref); renamed {
		return newName, nil
	}

	return string(name), nil
}
