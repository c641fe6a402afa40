package postgrest

import (
	"strings"

	"github.com/zoobzio/restql"
)

// appendFilterParams is the query-string root routine. A non-negated AND at
// the root is flattened into one parameter per child, recursively, so
// `a = 1 AND b = 2` becomes `a=eq.1&b=eq.2`. Everything else renders as a
// single (key, value) pair.
func appendFilterParams(params *Params, f restql.Filter) {
	f = collapseSingles(f)
	if lf, ok := f.(restql.LogicalFilter); ok && lf.Operator == restql.AND && !lf.Negate {
		for _, child := range lf.Filters {
			appendFilterParams(params, child)
		}
		return
	}
	params.Add(filterPair(f))
}

// collapseSingles replaces a one-element logical group with its child, folding
// the group's negation into it.
func collapseSingles(f restql.Filter) restql.Filter {
	lf, ok := f.(restql.LogicalFilter)
	if !ok || len(lf.Filters) != 1 {
		return f
	}
	child := collapseSingles(lf.Filters[0])
	if lf.Negate {
		child = restql.Not(child)
	}
	return child
}

// filterPair renders one root-level filter as a query parameter. Column
// predicates key on the column name; logical groups key on "and" or "or" with
// the children serialized in nested form.
func filterPair(f restql.Filter) (key, value string) {
	switch t := f.(type) {
	case restql.ColumnFilter:
		return t.Column, predicateValue(t)
	case restql.LogicalFilter:
		var b strings.Builder
		if t.Negate {
			b.WriteString("not.")
		}
		b.WriteByte('(')
		writeChildren(&b, t.Filters)
		b.WriteByte(')')
		return string(t.Operator), b.String()
	default:
		return "", ""
	}
}

// FilterExpression renders one filter in nested syntax, the form used inside
// and=/or= groups and by the supabase-js or() method.
func FilterExpression(f restql.Filter) string {
	var b strings.Builder
	nestedFilter(&b, collapseSingles(f))
	return b.String()
}

// nestedFilter renders a filter inside a logical group, where the column name
// joins the predicate with a dot and child groups spell their operator.
func nestedFilter(b *strings.Builder, f restql.Filter) {
	switch t := f.(type) {
	case restql.ColumnFilter:
		b.WriteString(t.Column)
		b.WriteByte('.')
		b.WriteString(predicateValue(t))
	case restql.LogicalFilter:
		if t.Negate {
			b.WriteString("not.")
		}
		b.WriteString(string(t.Operator))
		b.WriteByte('(')
		writeChildren(b, t.Filters)
		b.WriteByte(')')
	}
}

func writeChildren(b *strings.Builder, filters []restql.Filter) {
	for i, child := range filters {
		if i > 0 {
			b.WriteByte(',')
		}
		nestedFilter(b, collapseSingles(child))
	}
}

// predicateValue renders the operator-and-value part of a column predicate:
// `[not.]op[.(config)].literal`, with the IN list parenthesized.
func predicateValue(f restql.ColumnFilter) string {
	var b strings.Builder
	if f.Negate {
		b.WriteString("not.")
	}
	b.WriteString(string(f.Operator))
	if f.Config != "" {
		b.WriteByte('(')
		b.WriteString(f.Config)
		b.WriteByte(')')
	}
	b.WriteByte('.')
	b.WriteString(atomLiteral(f.Value))
	return b.String()
}

// atomLiteral renders an atom for a filter value, quoting string literals
// that contain PostgREST reserved characters.
func atomLiteral(a restql.Atom) string {
	switch t := a.(type) {
	case restql.StringAtom:
		return quoteIfNeeded(string(t))
	case restql.ListAtom:
		var b strings.Builder
		b.WriteByte('(')
		for i, item := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(atomLiteral(item))
		}
		b.WriteByte(')')
		return b.String()
	default:
		return a.Literal()
	}
}

// quoteIfNeeded wraps a value in double quotes when it contains characters
// PostgREST treats as filter syntax, escaping embedded quotes and
// backslashes.
func quoteIfNeeded(s string) string {
	if !needsQuoting(s) {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	if s[0] == ' ' || s[len(s)-1] == ' ' {
		return true
	}
	return strings.ContainsAny(s, `,.:()"\`)
}
