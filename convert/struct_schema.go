package convert

import (
	"github.com/dweve-ai/hedl/document"
	"github.com/dweve-ai/hedl/herr"
	"github.com/google/jsonschema-go/jsonschema"
)

// StructSchema derives a JSON Schema object describing typeName's
// `%STRUCT` column layout, for `stats`/`describe`-style tooling. Every
// column is schematized as the union of scalar kinds a HEDL matrix
// cell may hold; the id column is additionally marked required,
// matching the invariant that every row's first column is a non-null
// string.
func StructSchema(doc *document.Document, typeName string) (*jsonschema.Schema, error) {
	cols, ok := doc.Schema(typeName)
	if !ok {
		return nil, herr.New(herr.Schema, "no %STRUCT definition for type "+typeName)
	}

	props := make(map[string]*jsonschema.Schema, len(cols))
	for _, col := range cols {
		props[col] = cellSchema()
	}

	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   []string{cols[0]},
	}, nil
}

// cellSchema returns the schema for a single matrix-list cell: any of
// HEDL's scalar kinds, since a %STRUCT column carries no declared
// value type of its own.
func cellSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		AnyOf: []*jsonschema.Schema{
			{Type: "null"},
			{Type: "boolean"},
			{Type: "integer"},
			{Type: "number"},
			{Type: "string"},
		},
	}
}
