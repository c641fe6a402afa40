// Package restql translates SQL statements into PostgREST HTTP requests.
//
// The package parses a single PostgreSQL statement with the real PostgreSQL
// grammar, lowers it into a renderer-agnostic Statement, then renders the
// statement to an HTTP request or a client-code snippet. Schema validation
// is available through DBML integration.
//
// # Basic Usage
//
// Parse a statement once and render it as many times as needed:
//
//	import "github.com/zoobzio/restql/postgrest"
//
//	stmt, err := restql.Parse(`SELECT id, name FROM books WHERE pages > 100`)
//	if err != nil {
//		return err
//	}
//
//	req, err := postgrest.New().Render(stmt)
//	// req.Method:     "GET"
//	// req.FullPath(): "/books?select=id,name&pages=gt.100"
//
// # Supported Statements
//
// The translatable subset covers SELECT, INSERT ... VALUES, UPDATE, and
// DELETE. SELECT supports projection with aliases and casts, aggregates,
// embedded resources (spelled either as relation(col, ...) targets or as
// INNER/LEFT JOINs with a simple equality condition), WHERE trees of
// AND/OR/NOT, ORDER BY with NULLS placement, and LIMIT/OFFSET. UPDATE and
// DELETE filters are restricted to the basic comparison operators, matching
// what PostgREST accepts on mutation routes.
//
// Statements outside the subset fail with an UnsupportedError; syntax errors
// fail with a ParsingError carrying the parser's cursor position.
//
// # Output Formats
//
// The postgrest package renders Request values and formats them as raw HTTP
// or as a curl invocation. The supabase package renders the same statements
// as supabase-js client code.
//
// # Schema-Validated Usage
//
// Create an Instance from a DBML schema to reject statements that reference
// unknown tables or columns before they are rendered:
//
//	instance, err := restql.NewFromDBML(project)
//	if err != nil {
//		return err
//	}
//
//	stmt, err := instance.Parse(`SELECT title FROM books`)
package restql
