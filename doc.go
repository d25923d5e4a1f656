// Command graphql-anonymizer replaces every user chosen name and literal of a GraphQL schema
// and the queries written against it with sequentially numbered placeholders.
//
// The shape of the schema and of every query is kept: the same type, field or argument gets
// the same new name everywhere, fragments stay reused where they were reused before and the
// anonymized queries are valid against the anonymized schema. This allows to share a schema and
// its queries in bug reports or performance investigations without exposing business specific
// naming or data.
//
// Types, fields and directives that are part of the GraphQL specification keep their names,
// e.g. String, @include or __typename.
//
// See the anonymizer package to embed the renaming into other tools.
package main
