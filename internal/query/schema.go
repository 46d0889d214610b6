package query

import _ "embed"

const (
	// DefaultMaxResults caps the result argument of the search operations
	// when no limit is configured.
	DefaultMaxResults = 100

	maxQueryDepth = 20
)

//go:embed schema.graphql
var schemaSDL string

// Schema returns the schema definition served to clients.
func Schema() string {
	return schemaSDL
}
