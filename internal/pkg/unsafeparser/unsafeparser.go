// Package unsafeparser is for testing purposes only when error handling is overhead and panics are ok
package unsafeparser

import (
	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astparser"
)

func ParseGraphqlDocumentString(input string) ast.Document {
	doc, report := astparser.ParseGraphqlDocumentString(input)
	if report.HasErrors() {
		panic(report.Error())
	}
	return doc
}
