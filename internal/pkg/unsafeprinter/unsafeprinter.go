// Package unsafeprinter prints documents in tests and panics on failure.
package unsafeprinter

import (
	"github.com/wundergraph/graphql-anonymizer/internal/pkg/unsafeparser"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/ast"
	"github.com/wundergraph/graphql-go-tools/v2/pkg/astprinter"
)

func Print(document *ast.Document) string {
	str, err := astprinter.PrintString(document)
	if err != nil {
		panic(err)
	}
	return str
}

func PrettyPrint(document *ast.Document) string {
	str, err := astprinter.PrintStringIndent(document, "  ")
	if err != nil {
		panic(err)
	}
	return str
}

// Prettify normalizes a document so two documents can be compared as strings.
func Prettify(document string) string {
	doc := unsafeparser.ParseGraphqlDocumentString(document)
	return PrettyPrint(&doc)
}

// Minify prints a document without any indentation.
func Minify(document string) string {
	doc := unsafeparser.ParseGraphqlDocumentString(document)
	return Print(&doc)
}
