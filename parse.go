package restql

import (
	"errors"
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"github.com/pganalyze/pg_query_go/v6/parser"
)

// Parse translates one SQL statement into its Statement IR. It fails with a
// ParsingError when the PostgreSQL parser rejects the text, and with an
// UnsupportedError or UnimplementedError when the statement falls outside
// the translatable subset.
func Parse(sql string) (Statement, error) {
	result, err := pg_query.Parse(sql)
	if err != nil {
		return nil, adaptParseError(err)
	}

	stmts := result.GetStmts()
	if len(stmts) == 0 {
		return nil, unsupportedf("Expected a statement, but received none")
	}
	if len(stmts) > 1 {
		return nil, unsupportedf("Expected a single statement, but received multiple")
	}

	return lowerStatement(stmts[0].GetStmt())
}

// lowerStatement dispatches on the parse-tree node kind.
func lowerStatement(node *pg_query.Node) (Statement, error) {
	if node == nil {
		return nil, unsupportedf("Expected a statement, but received none")
	}

	switch {
	case node.GetSelectStmt() != nil:
		return lowerSelect(node.GetSelectStmt())
	case node.GetInsertStmt() != nil:
		return lowerInsert(node.GetInsertStmt())
	case node.GetUpdateStmt() != nil:
		return lowerUpdate(node.GetUpdateStmt())
	case node.GetDeleteStmt() != nil:
		return lowerDelete(node.GetDeleteStmt())
	case node.GetExplainStmt() != nil:
		return nil, unimplementedf("EXPLAIN statements are not supported yet")
	default:
		return nil, unsupportedf("%s statements are not supported", statementKind(node))
	}
}

// adaptParseError exposes the parser's cursor offset and classifies the
// message into a short hint.
func adaptParseError(err error) error {
	var pqErr *parser.Error
	if !errors.As(err, &pqErr) {
		return &ParsingError{Message: err.Error()}
	}
	return &ParsingError{
		Message:   pqErr.Message,
		CursorPos: pqErr.Cursorpos,
		Hint:      classifyParseHint(pqErr.Message),
	}
}

// classifyParseHint derives a human hint from the parser message.
func classifyParseHint(message string) string {
	switch {
	case strings.Contains(message, `at or near ","`):
		return "Did you add an extra comma?"
	case strings.Contains(message, "at end of input"):
		return "The statement appears to be incomplete"
	case strings.Contains(message, "syntax error at or near"):
		if tok := parseNearToken(message); tok != "" {
			return fmt.Sprintf("Check the syntax near %s", tok)
		}
	}
	return ""
}

// parseNearToken pulls the quoted token out of a "syntax error at or near"
// message.
func parseNearToken(message string) string {
	const marker = "at or near "
	i := strings.Index(message, marker)
	if i < 0 {
		return ""
	}
	return strings.Trim(message[i+len(marker):], `"`)
}

// statementKind names an out-of-subset statement node for error messages:
// Node_CreateTableAsStmt becomes "CREATE TABLE AS".
func statementKind(node *pg_query.Node) string {
	name := fmt.Sprintf("%T", node.Node)
	if i := strings.LastIndex(name, "Node_"); i >= 0 {
		name = name[i+len("Node_"):]
	}
	name = strings.TrimSuffix(name, "Stmt")
	if name == "" {
		return "These"
	}

	var words []string
	start := 0
	for i := 1; i < len(name); i++ {
		if name[i] >= 'A' && name[i] <= 'Z' {
			words = append(words, name[start:i])
			start = i
		}
	}
	words = append(words, name[start:])
	return strings.ToUpper(strings.Join(words, " "))
}

// stringValues extracts the String segments of a name list such as
// ColumnRef.Fields or FuncCall.Funcname.
func stringValues(nodes []*pg_query.Node) ([]string, bool) {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		s := n.GetString_()
		if s == nil {
			return nil, false
		}
		out = append(out, s.GetSval())
	}
	return out, true
}

// lastName returns the final segment of a dotted name list.
func lastName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[len(names)-1]
}

// castName returns the bare type name of a TypeCast, without the pg_catalog
// qualification the parser adds to built-in types. Keyword types that the
// grammar rewrites to internal names map back to a SQL spelling (int4 becomes
// int).
func castName(tn *pg_query.TypeName) (string, error) {
	names, ok := stringValues(tn.GetNames())
	if !ok || len(names) == 0 {
		return "", unsupportedf("unsupported type name in cast")
	}
	name := lastName(names)
	if len(names) == 2 && names[0] == "pg_catalog" {
		switch name {
		case "int4":
			name = "int"
		case "int2":
			name = "smallint"
		case "int8":
			name = "bigint"
		case "float4":
			name = "real"
		case "bool":
			name = "boolean"
		}
	}
	return name, nil
}

// lowerAtom lowers a constant expression into a scalar atom. Casts are
// unwrapped to their constant; anything non-constant fails.
func lowerAtom(node *pg_query.Node) (Atom, error) {
	if node == nil {
		return nil, unsupportedf("expected a constant value")
	}

	switch {
	case node.GetAConst() != nil:
		return atomFromConst(node.GetAConst())
	case node.GetTypeCast() != nil:
		return lowerAtom(node.GetTypeCast().GetArg())
	case node.GetColumnRef() != nil:
		return nil, unsupportedf("column references are not supported here, only constant values")
	case node.GetFuncCall() != nil:
		return nil, unsupportedf("function calls are not supported here, only constant values")
	case node.GetSubLink() != nil:
		return nil, unsupportedf("subqueries are not supported here, only constant values")
	case node.GetSetToDefault() != nil:
		return nil, unsupportedf("DEFAULT values are not supported, only constant values")
	default:
		return nil, unsupportedf("expected a constant value")
	}
}

// atomFromConst converts an A_Const node by its primitive tag.
func atomFromConst(c *pg_query.A_Const) (Atom, error) {
	if c.GetIsnull() {
		return NullAtom{}, nil
	}
	switch v := c.Val.(type) {
	case *pg_query.A_Const_Sval:
		return StringAtom(v.Sval.GetSval()), nil
	case *pg_query.A_Const_Ival:
		return IntegerAtom(v.Ival.GetIval()), nil
	case *pg_query.A_Const_Fval:
		return FloatAtom(v.Fval.GetFval()), nil
	case *pg_query.A_Const_Boolval:
		return BooleanAtom(v.Boolval.GetBoolval()), nil
	case *pg_query.A_Const_Bsval:
		return nil, unsupportedf("bit-string constants are not supported")
	default:
		return nil, unsupportedf("expected a constant value")
	}
}

// lowerReturning lowers a RETURNING list into simple column names. Qualified
// references keep only their last segment; anything aliased, aggregated, or
// computed is rejected.
func lowerReturning(nodes []*pg_query.Node) ([]string, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	columns := make([]string, 0, len(nodes))
	for _, n := range nodes {
		rt := n.GetResTarget()
		if rt == nil {
			return nil, unsupportedf("RETURNING only supports column references")
		}
		if rt.GetName() != "" {
			return nil, unsupportedf("aliases are not supported in RETURNING")
		}

		ref := rt.GetVal().GetColumnRef()
		if ref == nil {
			return nil, unsupportedf("RETURNING only supports column references")
		}

		fields := ref.GetFields()
		if len(fields) > 0 && fields[len(fields)-1].GetAStar() != nil {
			columns = append(columns, "*")
			continue
		}
		names, ok := stringValues(fields)
		if !ok || len(names) == 0 {
			return nil, unsupportedf("RETURNING only supports column references")
		}
		columns = append(columns, lastName(names))
	}
	return columns, nil
}
