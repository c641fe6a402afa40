// Package supabase renders translated statements as supabase-js client code.
package supabase

import (
	"fmt"
	"strings"

	"github.com/zoobzio/restql"
	"github.com/zoobzio/restql/postgrest"
)

// Renderer implements the supabase-js code renderer.
type Renderer struct{}

// New creates a new supabase-js renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render converts a statement into a supabase-js snippet. Filters the client
// API cannot chain, such as a negated logical group at the root, fail with a
// RenderError rather than producing a query with different semantics.
func (r *Renderer) Render(stmt restql.Statement) (string, error) {
	if stmt == nil {
		return "", &restql.RenderError{Message: "cannot render a nil statement"}
	}
	if err := stmt.Validate(); err != nil {
		return "", err
	}

	switch s := stmt.(type) {
	case restql.Select:
		return renderSelect(s)
	case restql.Insert:
		return renderInsert(s)
	case restql.Update:
		return renderUpdate(s)
	case restql.Delete:
		return renderDelete(s)
	default:
		return "", &restql.RenderError{Message: fmt.Sprintf("cannot render %T statements", stmt)}
	}
}

func renderSelect(s restql.Select) (string, error) {
	chain := []string{fmt.Sprintf(".from(%s)", jsString(s.From))}

	if s.HasProjection() {
		chain = append(chain, fmt.Sprintf(".select(%s)", jsString(postgrest.SelectList(s.Targets))))
	} else {
		chain = append(chain, ".select()")
	}

	var err error
	chain, err = appendFilters(chain, s.Filter)
	if err != nil {
		return "", err
	}

	for _, o := range s.Sorts {
		chain = append(chain, orderCall(o))
	}

	if s.Limit != nil {
		calls, err := limitCalls(s.Limit)
		if err != nil {
			return "", err
		}
		chain = append(chain, calls...)
	}
	return snippet(chain), nil
}

func renderInsert(s restql.Insert) (string, error) {
	if len(s.Columns) == 0 {
		return "", &restql.RenderError{Message: "INSERT requires a column list to build row objects"}
	}

	chain := []string{fmt.Sprintf(".from(%s)", jsString(s.Into))}

	rows := make([]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		rows = append(rows, jsObject(s.Columns, row))
	}
	if len(rows) == 1 {
		chain = append(chain, fmt.Sprintf(".insert(%s)", rows[0]))
	} else {
		chain = append(chain, fmt.Sprintf(".insert([%s])", strings.Join(rows, ", ")))
	}

	chain = appendReturning(chain, s.Returning)
	return snippet(chain), nil
}

func renderUpdate(s restql.Update) (string, error) {
	chain := []string{fmt.Sprintf(".from(%s)", jsString(s.Table))}

	columns := make([]string, 0, len(s.Set))
	values := make([]restql.Atom, 0, len(s.Set))
	for _, a := range s.Set {
		columns = append(columns, a.Column)
		values = append(values, a.Value)
	}
	chain = append(chain, fmt.Sprintf(".update(%s)", jsObject(columns, values)))

	var err error
	chain, err = appendFilters(chain, s.Filter)
	if err != nil {
		return "", err
	}
	chain = appendReturning(chain, s.Returning)
	return snippet(chain), nil
}

func renderDelete(s restql.Delete) (string, error) {
	chain := []string{fmt.Sprintf(".from(%s)", jsString(s.From)), ".delete()"}

	var err error
	chain, err = appendFilters(chain, s.Filter)
	if err != nil {
		return "", err
	}
	chain = appendReturning(chain, s.Returning)
	return snippet(chain), nil
}

func appendReturning(chain []string, returning []string) []string {
	if len(returning) == 0 {
		return chain
	}
	return append(chain, fmt.Sprintf(".select(%s)", jsString(strings.Join(returning, ","))))
}

// snippet joins the call chain into the canonical client snippet.
func snippet(chain []string) string {
	var b strings.Builder
	b.WriteString("const { data, error } = await supabase")
	for _, call := range chain {
		b.WriteString("\n  ")
		b.WriteString(call)
	}
	return b.String()
}
