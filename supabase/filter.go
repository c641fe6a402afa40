package supabase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zoobzio/restql"
	"github.com/zoobzio/restql/postgrest"
)

// filterMethods maps operators onto their dedicated client methods. The fts
// family routes through textSearch and is handled separately.
var filterMethods = map[restql.Operator]string{
	restql.EQ:    "eq",
	restql.NEQ:   "neq",
	restql.GT:    "gt",
	restql.GTE:   "gte",
	restql.LT:    "lt",
	restql.LTE:   "lte",
	restql.LIKE:  "like",
	restql.ILIKE: "ilike",
	restql.IS:    "is",
	restql.IN:    "in",
	restql.CS:    "contains",
	restql.CD:    "containedBy",
	restql.OV:    "overlaps",
	restql.SL:    "rangeLt",
	restql.SR:    "rangeGt",
	restql.NXR:   "rangeGte",
	restql.NXL:   "rangeLte",
	restql.ADJ:   "rangeAdjacent",
}

var textSearchTypes = map[restql.Operator]string{
	restql.FTS:   "",
	restql.PLFTS: "plain",
	restql.PHFTS: "phrase",
	restql.WFTS:  "websearch",
}

// appendFilters translates a filter tree into chained method calls. A
// non-negated AND flattens into consecutive calls; a non-negated OR becomes
// one or() call carrying the nested filter syntax.
func appendFilters(chain []string, f restql.Filter) ([]string, error) {
	if f == nil {
		return chain, nil
	}

	switch t := collapse(f).(type) {
	case restql.ColumnFilter:
		call, err := filterCall(t)
		if err != nil {
			return nil, err
		}
		return append(chain, call), nil
	case restql.LogicalFilter:
		if t.Negate {
			return nil, &restql.RenderError{Message: fmt.Sprintf("the client API cannot negate %s groups", t.Operator)}
		}
		if t.Operator == restql.AND {
			var err error
			for _, child := range t.Filters {
				chain, err = appendFilters(chain, child)
				if err != nil {
					return nil, err
				}
			}
			return chain, nil
		}
		parts := make([]string, 0, len(t.Filters))
		for _, child := range t.Filters {
			parts = append(parts, postgrest.FilterExpression(child))
		}
		return append(chain, fmt.Sprintf(".or(%s)", jsString(strings.Join(parts, ",")))), nil
	default:
		return chain, nil
	}
}

// collapse replaces a one-element logical group with its child, folding the
// group's negation into it.
func collapse(f restql.Filter) restql.Filter {
	lf, ok := f.(restql.LogicalFilter)
	if !ok || len(lf.Filters) != 1 {
		return f
	}
	child := collapse(lf.Filters[0])
	if lf.Negate {
		child = restql.Not(child)
	}
	return child
}

// filterCall renders one column predicate as a method call. Negated
// predicates use not(); text search uses textSearch() with the statement's
// configuration.
func filterCall(f restql.ColumnFilter) (string, error) {
	if tsType, ok := textSearchTypes[f.Operator]; ok && !f.Negate {
		return textSearchCall(f, tsType), nil
	}

	if f.Negate {
		op := string(f.Operator)
		if f.Config != "" {
			op += "(" + f.Config + ")"
		}
		return fmt.Sprintf(".not(%s, %s, %s)", jsString(f.Column), jsString(op), notValue(f.Value)), nil
	}

	method, ok := filterMethods[f.Operator]
	if !ok {
		return "", &restql.RenderError{Message: fmt.Sprintf("the client API has no method for the %s operator", f.Operator)}
	}
	if f.Operator == restql.IN {
		return fmt.Sprintf(".in(%s, %s)", jsString(f.Column), jsValue(f.Value)), nil
	}
	return fmt.Sprintf(".%s(%s, %s)", method, jsString(f.Column), jsValue(f.Value)), nil
}

func textSearchCall(f restql.ColumnFilter, tsType string) string {
	var opts []string
	if f.Config != "" {
		opts = append(opts, fmt.Sprintf("config: %s", jsString(f.Config)))
	}
	if tsType != "" {
		opts = append(opts, fmt.Sprintf("type: %s", jsString(tsType)))
	}
	if len(opts) == 0 {
		return fmt.Sprintf(".textSearch(%s, %s)", jsString(f.Column), jsValue(f.Value))
	}
	return fmt.Sprintf(".textSearch(%s, %s, { %s })", jsString(f.Column), jsValue(f.Value), strings.Join(opts, ", "))
}

// notValue renders the third argument of not(). Lists keep PostgREST's
// parenthesized form, which the client passes through verbatim.
func notValue(a restql.Atom) string {
	if list, ok := a.(restql.ListAtom); ok {
		return jsString("(" + list.Literal() + ")")
	}
	return jsValue(a)
}

func orderCall(o restql.Sort) string {
	var opts []string
	switch o.Direction {
	case restql.Ascending:
		opts = append(opts, "ascending: true")
	case restql.Descending:
		opts = append(opts, "ascending: false")
	}
	switch o.Nulls {
	case restql.NullsFirst:
		opts = append(opts, "nullsFirst: true")
	case restql.NullsLast:
		opts = append(opts, "nullsFirst: false")
	}
	if len(opts) == 0 {
		return fmt.Sprintf(".order(%s)", jsString(o.Column))
	}
	return fmt.Sprintf(".order(%s, { %s })", jsString(o.Column), strings.Join(opts, ", "))
}

// limitCalls renders limit/offset. The client API has no bare offset method,
// so an offset is expressed as an inclusive range over the limited window.
func limitCalls(l *restql.Limit) ([]string, error) {
	switch {
	case l.Count != nil && l.Offset != nil:
		return []string{fmt.Sprintf(".range(%d, %d)", *l.Offset, *l.Offset+*l.Count-1)}, nil
	case l.Count != nil:
		return []string{fmt.Sprintf(".limit(%d)", *l.Count)}, nil
	case l.Offset != nil:
		return nil, &restql.RenderError{Message: "the client API cannot express OFFSET without LIMIT"}
	default:
		return nil, nil
	}
}

// jsString renders a single-quoted JavaScript string literal.
func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// jsValue renders an atom as a JavaScript literal.
func jsValue(a restql.Atom) string {
	switch t := a.(type) {
	case restql.StringAtom:
		return jsString(string(t))
	case restql.IntegerAtom:
		return strconv.FormatInt(int64(t), 10)
	case restql.FloatAtom:
		return string(t)
	case restql.BooleanAtom:
		if t {
			return "true"
		}
		return "false"
	case restql.NullAtom:
		return "null"
	case restql.ListAtom:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, jsValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "null"
	}
}

// jsObject renders a row as an object literal with keys in column order.
func jsObject(columns []string, values []restql.Atom) string {
	parts := make([]string, 0, len(columns))
	for i, col := range columns {
		parts = append(parts, fmt.Sprintf("%s: %s", jsKey(col), jsValue(values[i])))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// jsKey quotes an object key only when it is not a plain identifier.
func jsKey(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := c == '_' || c == '$' ||
			('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') ||
			(i > 0 && '0' <= c && c <= '9')
		if !ok {
			return jsString(s)
		}
	}
	if s == "" {
		return jsString(s)
	}
	return s
}
