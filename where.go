package restql

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// relationScope resolves qualified column references against the statement's
// primary relation and any embedded relations. Columns qualified with the
// primary relation (or its alias) lose the qualifier; columns qualified with
// an embedded relation keep it as a dotted path.
type relationScope struct {
	primary string
	alias   string
	embeds  map[string]string // alias or relation name -> rendered qualifier
}

func newRelationScope(primary, alias string) *relationScope {
	return &relationScope{primary: primary, alias: alias, embeds: make(map[string]string)}
}

// addEmbed registers an embedded relation under its alias when present,
// otherwise under its relation name.
func (s *relationScope) addEmbed(relation, alias string) {
	key := relation
	if alias != "" {
		key = alias
	}
	s.embeds[key] = key
}

// resolveColumn lowers ColumnRef name segments to the column name a renderer
// should emit.
func (s *relationScope) resolveColumn(names []string) (string, error) {
	switch len(names) {
	case 1:
		return names[0], nil
	case 2:
		qualifier, column := names[0], names[1]
		if qualifier == s.primary || (s.alias != "" && qualifier == s.alias) {
			return column, nil
		}
		if rendered, ok := s.embeds[qualifier]; ok {
			return rendered + "." + column, nil
		}
		return "", unsupportedf("unknown relation %s in column reference", qualifier)
	default:
		return "", unsupportedf("column references must have at most two parts")
	}
}

// lowerFilter walks a WHERE-clause expression into a Filter tree. NOT is
// absorbed into the negation flag of the enclosed node rather than becoming
// a wrapper.
func lowerFilter(node *pg_query.Node, scope *relationScope) (Filter, error) {
	if node == nil {
		return nil, unsupportedf("expected a WHERE-clause expression")
	}

	switch {
	case node.GetBoolExpr() != nil:
		return lowerBoolExpr(node.GetBoolExpr(), scope)
	case node.GetAExpr() != nil:
		return lowerComparison(node.GetAExpr(), scope)
	case node.GetNullTest() != nil:
		return lowerNullTest(node.GetNullTest(), scope)
	case node.GetBooleanTest() != nil:
		return lowerBooleanTest(node.GetBooleanTest(), scope)
	case node.GetSubLink() != nil:
		return nil, unsupportedf("subqueries are not supported in WHERE clauses")
	case node.GetAConst() != nil:
		return nil, unsupportedf("constant WHERE conditions are not supported")
	default:
		return nil, unsupportedf("unsupported WHERE-clause expression")
	}
}

func lowerBoolExpr(expr *pg_query.BoolExpr, scope *relationScope) (Filter, error) {
	switch expr.GetBoolop() {
	case pg_query.BoolExprType_AND_EXPR, pg_query.BoolExprType_OR_EXPR:
		op := AND
		if expr.GetBoolop() == pg_query.BoolExprType_OR_EXPR {
			op = OR
		}
		children := make([]Filter, 0, len(expr.GetArgs()))
		for _, arg := range expr.GetArgs() {
			child, err := lowerFilter(arg, scope)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return LogicalFilter{Operator: op, Filters: children}, nil

	case pg_query.BoolExprType_NOT_EXPR:
		child, err := lowerFilter(expr.GetArgs()[0], scope)
		if err != nil {
			return nil, err
		}
		return Not(child), nil

	default:
		return nil, unsupportedf("unsupported boolean expression")
	}
}

func lowerComparison(expr *pg_query.A_Expr, scope *relationScope) (Filter, error) {
	switch expr.GetKind() {
	case pg_query.A_Expr_Kind_AEXPR_OP:
		return lowerOperatorExpr(expr, scope)
	case pg_query.A_Expr_Kind_AEXPR_IN:
		return lowerInExpr(expr, scope)
	case pg_query.A_Expr_Kind_AEXPR_LIKE:
		return lowerPatternExpr(expr, scope, LIKE, "!~~")
	case pg_query.A_Expr_Kind_AEXPR_ILIKE:
		return lowerPatternExpr(expr, scope, ILIKE, "!~~*")
	case pg_query.A_Expr_Kind_AEXPR_BETWEEN,
		pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN,
		pg_query.A_Expr_Kind_AEXPR_BETWEEN_SYM,
		pg_query.A_Expr_Kind_AEXPR_NOT_BETWEEN_SYM:
		return nil, unsupportedf("BETWEEN is not supported, use two comparisons")
	case pg_query.A_Expr_Kind_AEXPR_DISTINCT, pg_query.A_Expr_Kind_AEXPR_NOT_DISTINCT:
		return nil, unsupportedf("IS DISTINCT FROM is not supported")
	case pg_query.A_Expr_Kind_AEXPR_SIMILAR:
		return nil, unsupportedf("SIMILAR TO is not supported")
	case pg_query.A_Expr_Kind_AEXPR_OP_ANY, pg_query.A_Expr_Kind_AEXPR_OP_ALL:
		return nil, unsupportedf("ANY and ALL are not supported")
	default:
		return nil, unsupportedf("unsupported comparison expression")
	}
}

func lowerOperatorExpr(expr *pg_query.A_Expr, scope *relationScope) (Filter, error) {
	names, ok := stringValues(expr.GetName())
	if !ok || len(names) == 0 {
		return nil, unsupportedf("unsupported comparison operator")
	}
	opName := lastName(names)

	if opName == "@@" {
		return lowerTextSearch(expr, scope)
	}

	op, ok := sqlOperators[opName]
	if !ok {
		return nil, unsupportedf("operator %s is not supported", opName)
	}

	column, err := filterColumn(expr.GetLexpr(), scope)
	if err != nil {
		return nil, err
	}
	value, err := lowerAtom(expr.GetRexpr())
	if err != nil {
		return nil, err
	}
	return ColumnFilter{Column: column, Operator: op, Value: value}, nil
}

func lowerInExpr(expr *pg_query.A_Expr, scope *relationScope) (Filter, error) {
	column, err := filterColumn(expr.GetLexpr(), scope)
	if err != nil {
		return nil, err
	}

	list := expr.GetRexpr().GetList()
	if list == nil {
		return nil, unsupportedf("IN requires a list of constant values")
	}
	values := make(ListAtom, 0, len(list.GetItems()))
	for _, item := range list.GetItems() {
		atom, err := lowerAtom(item)
		if err != nil {
			return nil, err
		}
		values = append(values, atom)
	}

	f := ColumnFilter{Column: column, Operator: IN, Value: values}
	// NOT IN arrives as the same node kind with the negated operator name.
	if names, ok := stringValues(expr.GetName()); ok && lastName(names) == "<>" {
		f.Negate = true
	}
	return f, nil
}

func lowerPatternExpr(expr *pg_query.A_Expr, scope *relationScope, op Operator, negatedName string) (Filter, error) {
	column, err := filterColumn(expr.GetLexpr(), scope)
	if err != nil {
		return nil, err
	}
	value, err := lowerAtom(expr.GetRexpr())
	if err != nil {
		return nil, err
	}
	if _, ok := value.(StringAtom); !ok {
		return nil, unsupportedf("%s requires a string pattern", op)
	}

	f := ColumnFilter{Column: column, Operator: op, Value: value}
	if names, ok := stringValues(expr.GetName()); ok && lastName(names) == negatedName {
		f.Negate = true
	}
	return f, nil
}

// tsQueryFunctions maps text-search query constructors to the PostgREST
// full-text operator family.
var tsQueryFunctions = map[string]Operator{
	"to_tsquery":           FTS,
	"plainto_tsquery":      PLFTS,
	"phraseto_tsquery":     PHFTS,
	"websearch_to_tsquery": WFTS,
}

func lowerTextSearch(expr *pg_query.A_Expr, scope *relationScope) (Filter, error) {
	column, err := textSearchColumn(expr.GetLexpr(), scope)
	if err != nil {
		return nil, err
	}

	rexpr := expr.GetRexpr()
	if c := rexpr.GetAConst(); c != nil {
		atom, err := atomFromConst(c)
		if err != nil {
			return nil, err
		}
		if _, ok := atom.(StringAtom); !ok {
			return nil, unsupportedf("text search requires a string query")
		}
		return ColumnFilter{Column: column, Operator: FTS, Value: atom}, nil
	}

	call := rexpr.GetFuncCall()
	if call == nil {
		return nil, unsupportedf("text search requires a tsquery constructor or string")
	}
	names, ok := stringValues(call.GetFuncname())
	if !ok {
		return nil, unsupportedf("text search requires a tsquery constructor or string")
	}
	op, ok := tsQueryFunctions[lastName(names)]
	if !ok {
		return nil, unsupportedf("function %s is not supported in text search", lastName(names))
	}

	args := call.GetArgs()
	var config string
	var queryNode *pg_query.Node
	switch len(args) {
	case 1:
		queryNode = args[0]
	case 2:
		configAtom, err := lowerAtom(args[0])
		if err != nil {
			return nil, err
		}
		s, ok := configAtom.(StringAtom)
		if !ok {
			return nil, unsupportedf("text search configuration must be a string")
		}
		config = string(s)
		queryNode = args[1]
	default:
		return nil, unsupportedf("%s expects one or two arguments", lastName(names))
	}

	query, err := lowerAtom(queryNode)
	if err != nil {
		return nil, err
	}
	if _, ok := query.(StringAtom); !ok {
		return nil, unsupportedf("text search requires a string query")
	}
	return ColumnFilter{Column: column, Operator: op, Value: query, Config: config}, nil
}

// textSearchColumn accepts either a bare column or a to_tsvector(column)
// wrapper on the left of @@.
func textSearchColumn(node *pg_query.Node, scope *relationScope) (string, error) {
	if call := node.GetFuncCall(); call != nil {
		names, ok := stringValues(call.GetFuncname())
		if !ok || lastName(names) != "to_tsvector" {
			return "", unsupportedf("text search requires a column or to_tsvector(column)")
		}
		args := call.GetArgs()
		if len(args) == 0 {
			return "", unsupportedf("to_tsvector requires a column argument")
		}
		return filterColumn(args[len(args)-1], scope)
	}
	return filterColumn(node, scope)
}

func lowerNullTest(test *pg_query.NullTest, scope *relationScope) (Filter, error) {
	column, err := filterColumn(test.GetArg(), scope)
	if err != nil {
		return nil, err
	}
	f := ColumnFilter{Column: column, Operator: IS, Value: NullAtom{}}
	if test.GetNulltesttype() == pg_query.NullTestType_IS_NOT_NULL {
		f.Negate = true
	}
	return f, nil
}

func lowerBooleanTest(test *pg_query.BooleanTest, scope *relationScope) (Filter, error) {
	column, err := filterColumn(test.GetArg(), scope)
	if err != nil {
		return nil, err
	}

	f := ColumnFilter{Column: column, Operator: IS}
	switch test.GetBooltesttype() {
	case pg_query.BoolTestType_IS_TRUE:
		f.Value = BooleanAtom(true)
	case pg_query.BoolTestType_IS_NOT_TRUE:
		f.Value = BooleanAtom(true)
		f.Negate = true
	case pg_query.BoolTestType_IS_FALSE:
		f.Value = BooleanAtom(false)
	case pg_query.BoolTestType_IS_NOT_FALSE:
		f.Value = BooleanAtom(false)
		f.Negate = true
	case pg_query.BoolTestType_IS_UNKNOWN:
		f.Value = StringAtom("unknown")
	case pg_query.BoolTestType_IS_NOT_UNKNOWN:
		f.Value = StringAtom("unknown")
		f.Negate = true
	default:
		return nil, unsupportedf("unsupported boolean test")
	}
	return f, nil
}

// filterColumn lowers the left-hand side of a predicate to a column name.
// Casts are dropped.
func filterColumn(node *pg_query.Node, scope *relationScope) (string, error) {
	if node == nil {
		return "", unsupportedf("filter left-hand side must be a column")
	}
	if cast := node.GetTypeCast(); cast != nil {
		return filterColumn(cast.GetArg(), scope)
	}

	ref := node.GetColumnRef()
	if ref == nil {
		return "", unsupportedf("filter left-hand side must be a column")
	}
	names, ok := stringValues(ref.GetFields())
	if !ok || len(names) == 0 {
		return "", unsupportedf("filter left-hand side must be a column")
	}
	return scope.resolveColumn(names)
}
