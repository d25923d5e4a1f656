// Package verify validates anonymized queries against the anonymized schema with an
// independent GraphQL implementation.
package verify

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
	"github.com/vektah/gqlparser/v2/validator/rules"
)

// Problem is a validation error of the query at Index.
type Problem struct {
	Index   int    `json:"index" yaml:"index"`
	Message string `json:"message" yaml:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("query %d: %s", p.Index, p.Message)
}

// Verify loads schema and validates every query against it.
// An invalid schema is returned as error, invalid queries as problems.
func Verify(schema string, queries []string) ([]Problem, error) {
	loaded, err := LoadSchema(schema)
	if err != nil {
		return nil, errors.Wrap(err, "loading anonymized schema")
	}

	var problems []Problem
	for i, query := range queries {
		_, list := gqlparser.LoadQueryWithRules(loaded, query, rules.NewDefaultRules())
		for _, queryErr := range list {
			problems = append(problems, Problem{
				Index:   i,
				Message: queryErr.Message,
			})
		}
	}

	return problems, nil
}

type implementation struct {
	definition *ast.Definition
	interfaces []string
}

// LoadSchema loads and validates schema like gqlparser.LoadSchema, except that types
// are not required to repeat the field names of the interfaces they implement.
// Every field of an anonymized schema has its own name, so an implementing type never
// shares a field name with its interface.
func LoadSchema(schema string) (*ast.Schema, error) {
	document, err := parser.ParseSchemas(validator.Prelude, &ast.Source{
		Name:  "schema.graphql",
		Input: schema,
	})
	if err != nil {
		return nil, err
	}

	var implementations []implementation
	for _, definition := range document.Definitions {
		if len(definition.Interfaces) == 0 {
			continue
		}
		implementations = append(implementations, implementation{
			definition: definition,
			interfaces: definition.Interfaces,
		})
		definition.Interfaces = nil
	}

	loaded, err := validator.ValidateSchemaDocument(document)
	if err != nil {
		return nil, err
	}

	for _, impl := range implementations {
		impl.definition.Interfaces = impl.interfaces
		for _, name := range impl.interfaces {
			intf := loaded.Types[name]
			if intf == nil || intf.Kind != ast.Interface {
				return nil, errors.Errorf("%s implements %s which is not an interface", impl.definition.Name, name)
			}
			loaded.AddPossibleType(name, impl.definition)
			loaded.AddImplements(impl.definition.Name, intf)
		}
	}

	return loaded, nil
}
