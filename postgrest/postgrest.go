// Package postgrest renders translated statements as PostgREST HTTP
// requests.
package postgrest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zoobzio/restql"
)

// Renderer implements the PostgREST HTTP renderer.
type Renderer struct{}

// New creates a new PostgREST renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render converts a statement into a Request. The statement is re-validated
// first so hand-built IR gets the same checks as parsed IR.
func (r *Renderer) Render(stmt restql.Statement) (*Request, error) {
	if stmt == nil {
		return nil, &restql.RenderError{Message: "cannot render a nil statement"}
	}
	if err := stmt.Validate(); err != nil {
		return nil, err
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
		return nil, &restql.RenderError{Message: fmt.Sprintf("cannot render %T statements", stmt)}
	}
}

func renderSelect(s restql.Select) (*Request, error) {
	req := &Request{Method: "GET", Path: "/" + s.From}

	if s.HasProjection() {
		req.Params.Add("select", SelectList(s.Targets))
	}
	if s.Filter != nil {
		appendFilterParams(&req.Params, s.Filter)
	}
	if len(s.Sorts) > 0 {
		req.Params.Add("order", renderSorts(s.Sorts))
	}
	if s.Limit != nil {
		if s.Limit.Count != nil {
			req.Params.Add("limit", strconv.FormatInt(*s.Limit.Count, 10))
		}
		if s.Limit.Offset != nil {
			req.Params.Add("offset", strconv.FormatInt(*s.Limit.Offset, 10))
		}
	}
	return req, nil
}

func renderInsert(s restql.Insert) (*Request, error) {
	if len(s.Columns) == 0 {
		return nil, &restql.RenderError{Message: "INSERT requires a column list to build a JSON body"}
	}

	req := &Request{Method: "POST", Path: "/" + s.Into}
	addReturning(req, s.Returning)

	bodies := make([]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		bodies = append(bodies, jsonObject(s.Columns, row))
	}
	if len(bodies) == 1 {
		req.Body = bodies[0]
	} else {
		req.Body = "[" + strings.Join(bodies, ",") + "]"
	}
	return req, nil
}

func renderUpdate(s restql.Update) (*Request, error) {
	req := &Request{Method: "PATCH", Path: "/" + s.Table}
	addReturning(req, s.Returning)
	if s.Filter != nil {
		appendFilterParams(&req.Params, s.Filter)
	}

	columns := make([]string, 0, len(s.Set))
	values := make([]restql.Atom, 0, len(s.Set))
	for _, a := range s.Set {
		columns = append(columns, a.Column)
		values = append(values, a.Value)
	}
	req.Body = jsonObject(columns, values)
	return req, nil
}

func renderDelete(s restql.Delete) (*Request, error) {
	req := &Request{Method: "DELETE", Path: "/" + s.From}
	addReturning(req, s.Returning)
	if s.Filter != nil {
		appendFilterParams(&req.Params, s.Filter)
	}
	return req, nil
}

func addReturning(req *Request, returning []string) {
	if len(returning) == 0 {
		return
	}
	req.Params.Add("select", strings.Join(returning, ","))
}

// SelectList joins a projection list in select-parameter syntax: columns as
// [alias:]name[::cast], aggregates as [alias:]col.agg()[::cast], embeds as
// [alias:]rel[!inner](...). The supabase renderer shares this syntax.
func SelectList(targets []restql.Target) string {
	parts := make([]string, 0, len(targets))
	for _, t := range targets {
		parts = append(parts, renderTarget(t))
	}
	return strings.Join(parts, ",")
}

func renderTarget(t restql.Target) string {
	switch tt := t.(type) {
	case restql.ColumnTarget:
		var b strings.Builder
		if tt.Alias != "" {
			b.WriteString(tt.Alias)
			b.WriteByte(':')
		}
		b.WriteString(tt.Column)
		if tt.Cast != "" {
			b.WriteString("::")
			b.WriteString(tt.Cast)
		}
		return b.String()
	case restql.AggregateTarget:
		var b strings.Builder
		if tt.Alias != "" {
			b.WriteString(tt.Alias)
			b.WriteByte(':')
		}
		if tt.Column == "*" {
			// count(*) renders as a bare count().
			b.WriteString(string(tt.Function))
			b.WriteString("()")
		} else {
			b.WriteString(tt.Column)
			b.WriteByte('.')
			b.WriteString(string(tt.Function))
			b.WriteString("()")
		}
		if tt.Cast != "" {
			b.WriteString("::")
			b.WriteString(tt.Cast)
		}
		return b.String()
	case restql.ResourceTarget:
		var b strings.Builder
		if tt.Alias != "" {
			b.WriteString(tt.Alias)
			b.WriteByte(':')
		}
		b.WriteString(tt.Relation)
		if tt.Inner {
			b.WriteString("!inner")
		}
		b.WriteByte('(')
		b.WriteString(SelectList(tt.Targets))
		b.WriteByte(')')
		return b.String()
	default:
		return ""
	}
}

func renderSorts(sorts []restql.Sort) string {
	parts := make([]string, 0, len(sorts))
	for _, o := range sorts {
		part := o.Column
		if o.Direction != "" {
			part += "." + string(o.Direction)
		}
		if o.Nulls != "" {
			part += "." + string(o.Nulls)
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ",")
}
