package restql

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// joinedRelation records one relation folded into the statement as a
// PostgREST embed, in FROM-clause order.
type joinedRelation struct {
	relation string
	alias    string
	inner    bool
}

// key is the name targets and filters qualify the embed with.
func (j joinedRelation) key() string {
	if j.alias != "" {
		return j.alias
	}
	return j.relation
}

// lowerSelect builds a Select IR from a SelectStmt parse node. The processor
// is fail-fast: the first unsupported construct aborts the statement.
func lowerSelect(stmt *pg_query.SelectStmt) (Statement, error) {
	switch {
	case stmt.GetOp() != pg_query.SetOperation_SETOP_NONE:
		return nil, unsupportedf("UNION, INTERSECT and EXCEPT are not supported")
	case len(stmt.GetValuesLists()) > 0:
		return nil, unsupportedf("VALUES statements are not supported")
	case stmt.GetWithClause() != nil:
		return nil, unsupportedf("CTEs are not supported")
	case len(stmt.GetDistinctClause()) > 0:
		return nil, unsupportedf("SELECT DISTINCT is not supported")
	case stmt.GetIntoClause() != nil:
		return nil, unsupportedf("SELECT INTO is not supported")
	case stmt.GetHavingClause() != nil:
		return nil, unsupportedf("HAVING clauses are not supported")
	case len(stmt.GetWindowClause()) > 0:
		return nil, unsupportedf("window functions are not supported")
	case len(stmt.GetLockingClause()) > 0:
		return nil, unsupportedf("FOR UPDATE and FOR SHARE are not supported")
	}

	from, alias, joins, err := lowerFromClause(stmt.GetFromClause())
	if err != nil {
		return nil, err
	}

	scope := newRelationScope(from, alias)
	for _, j := range joins {
		scope.addEmbed(j.relation, j.alias)
	}

	targets, err := lowerTargetList(stmt.GetTargetList(), scope, joins)
	if err != nil {
		return nil, err
	}

	var filter Filter
	if stmt.GetWhereClause() != nil {
		filter, err = lowerFilter(stmt.GetWhereClause(), scope)
		if err != nil {
			return nil, err
		}
	}

	if err := checkGroupClause(stmt.GetGroupClause(), scope, targets); err != nil {
		return nil, err
	}

	sorts, err := lowerSortClause(stmt.GetSortClause(), scope)
	if err != nil {
		return nil, err
	}

	limit, err := lowerLimitClause(stmt)
	if err != nil {
		return nil, err
	}

	s := Select{From: from, Targets: targets, Filter: filter, Sorts: sorts, Limit: limit}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// lowerFromClause demands exactly one primary relation, folding INNER and
// LEFT joins into embedded relations when the join condition is a simple
// equality linking the joined table to the primary one.
func lowerFromClause(items []*pg_query.Node) (from, alias string, joins []joinedRelation, err error) {
	if len(items) == 0 {
		return "", "", nil, unsupportedf("SELECT requires a FROM clause with exactly one table")
	}
	if len(items) > 1 {
		return "", "", nil, unsupportedf("cross joins in FROM are not supported")
	}

	switch {
	case items[0].GetRangeVar() != nil:
		from, alias, err = relationName(items[0].GetRangeVar())
		return from, alias, nil, err

	case items[0].GetJoinExpr() != nil:
		return lowerJoinTree(items[0].GetJoinExpr())

	default:
		return "", "", nil, unsupportedf("FROM must reference a table")
	}
}

// lowerJoinTree walks a left-nested join tree. The innermost left argument
// is the primary relation; every right argument becomes an embed.
func lowerJoinTree(join *pg_query.JoinExpr) (from, alias string, joins []joinedRelation, err error) {
	switch {
	case join.GetLarg().GetRangeVar() != nil:
		from, alias, err = relationName(join.GetLarg().GetRangeVar())
	case join.GetLarg().GetJoinExpr() != nil:
		from, alias, joins, err = lowerJoinTree(join.GetLarg().GetJoinExpr())
	default:
		err = unsupportedf("FROM must reference a table")
	}
	if err != nil {
		return "", "", nil, err
	}

	j, err := lowerJoin(join, from, alias)
	if err != nil {
		return "", "", nil, err
	}
	return from, alias, append(joins, j), nil
}

// lowerJoin folds one JOIN into an embedded relation.
func lowerJoin(join *pg_query.JoinExpr, primary, primaryAlias string) (joinedRelation, error) {
	if join.GetIsNatural() {
		return joinedRelation{}, unsupportedf("NATURAL joins are not supported")
	}
	if len(join.GetUsingClause()) > 0 {
		return joinedRelation{}, unsupportedf("JOIN USING is not supported, spell out the ON condition")
	}

	var inner bool
	switch join.GetJointype() {
	case pg_query.JoinType_JOIN_INNER:
		inner = true
	case pg_query.JoinType_JOIN_LEFT:
		inner = false
	default:
		return joinedRelation{}, unsupportedf("only INNER and LEFT joins are supported")
	}

	rv := join.GetRarg().GetRangeVar()
	if rv == nil {
		return joinedRelation{}, unsupportedf("joined relations must be tables")
	}
	relation, alias, err := relationName(rv)
	if err != nil {
		return joinedRelation{}, err
	}

	j := joinedRelation{relation: relation, alias: alias, inner: inner}
	if err := checkJoinCondition(join.GetQuals(), primary, primaryAlias, j); err != nil {
		return joinedRelation{}, err
	}
	return j, nil
}

// checkJoinCondition requires a simple equality between one column of the
// joined relation and one column of the primary relation, the only join
// shape PostgREST's foreign-key embedding can express.
func checkJoinCondition(quals *pg_query.Node, primary, primaryAlias string, j joinedRelation) error {
	expr := quals.GetAExpr()
	if expr == nil || expr.GetKind() != pg_query.A_Expr_Kind_AEXPR_OP {
		return unsupportedf("join conditions must be a single equality")
	}
	if names, ok := stringValues(expr.GetName()); !ok || lastName(names) != "=" {
		return unsupportedf("join conditions must be a single equality")
	}

	left, lok := qualifierOf(expr.GetLexpr())
	right, rok := qualifierOf(expr.GetRexpr())
	if !lok || !rok {
		return unsupportedf("join conditions must compare two qualified columns")
	}

	matches := func(q string) bool {
		return q == j.relation || (j.alias != "" && q == j.alias)
	}
	primaryMatches := func(q string) bool {
		return q == primary || (primaryAlias != "" && q == primaryAlias)
	}
	if (matches(left) && primaryMatches(right)) || (matches(right) && primaryMatches(left)) {
		return nil
	}
	return unsupportedf("join conditions must link %s to %s", j.relation, primary)
}

// qualifierOf returns the table qualifier of a two-part column reference.
func qualifierOf(node *pg_query.Node) (string, bool) {
	ref := node.GetColumnRef()
	if ref == nil {
		return "", false
	}
	names, ok := stringValues(ref.GetFields())
	if !ok || len(names) != 2 {
		return "", false
	}
	return names[0], true
}

// relationName extracts the table name and optional alias from a RangeVar.
func relationName(rv *pg_query.RangeVar) (name, alias string, err error) {
	if rv.GetSchemaname() != "" {
		return "", "", unsupportedf("schema-qualified table names are not supported")
	}
	if rv.GetAlias() != nil {
		alias = rv.GetAlias().GetAliasname()
	}
	return rv.GetRelname(), alias, nil
}

// lowerTargetList lowers the projection list, grouping columns qualified
// with a joined relation under that relation's embed.
func lowerTargetList(items []*pg_query.Node, scope *relationScope, joins []joinedRelation) ([]Target, error) {
	if len(items) == 0 {
		return nil, unsupportedf("SELECT requires at least one target")
	}

	var targets []Target
	embedIndex := make(map[string]int)

	ensureEmbed := func(key string) int {
		if idx, ok := embedIndex[key]; ok {
			return idx
		}
		for _, j := range joins {
			if j.key() == key {
				targets = append(targets, ResourceTarget{Relation: j.relation, Alias: j.alias, Inner: j.inner})
				embedIndex[key] = len(targets) - 1
				return len(targets) - 1
			}
		}
		return -1
	}

	for _, item := range items {
		rt := item.GetResTarget()
		if rt == nil {
			return nil, unsupportedf("unsupported SELECT target")
		}
		target, embedKey, err := lowerTarget(rt, scope)
		if err != nil {
			return nil, err
		}

		if embedKey == "" {
			targets = append(targets, target)
			continue
		}
		idx := ensureEmbed(embedKey)
		if idx < 0 {
			return nil, unsupportedf("unknown relation %s in column reference", embedKey)
		}
		embed := targets[idx].(ResourceTarget)
		embed.Targets = append(embed.Targets, target)
		targets[idx] = embed
	}

	// An inner join constrains the result set even when nothing selects from
	// it, so its embed must still appear.
	for _, j := range joins {
		if j.inner {
			ensureEmbed(j.key())
		}
	}
	return targets, nil
}

// lowerTarget lowers one projection item. The returned embed key is non-empty
// when the column belongs to a joined relation and the target should nest
// under its embed.
func lowerTarget(rt *pg_query.ResTarget, scope *relationScope) (Target, string, error) {
	return lowerTargetValue(rt.GetVal(), rt.GetName(), scope)
}

func lowerTargetValue(val *pg_query.Node, alias string, scope *relationScope) (Target, string, error) {
	switch {
	case val.GetColumnRef() != nil:
		return lowerColumnTarget(val.GetColumnRef(), alias, scope)

	case val.GetTypeCast() != nil:
		cast := val.GetTypeCast()
		castTo, err := castName(cast.GetTypeName())
		if err != nil {
			return nil, "", err
		}
		target, embedKey, err := lowerTargetValue(cast.GetArg(), alias, scope)
		if err != nil {
			return nil, "", err
		}
		switch t := target.(type) {
		case ColumnTarget:
			t.Cast = castTo
			return t, embedKey, nil
		case AggregateTarget:
			t.Cast = castTo
			return t, embedKey, nil
		default:
			return nil, "", unsupportedf("casts on embedded resources are not supported")
		}

	case val.GetFuncCall() != nil:
		return lowerFuncTarget(val.GetFuncCall(), alias, scope)

	case val.GetAConst() != nil:
		return nil, "", unsupportedf("constant SELECT targets are not supported")

	case val.GetSubLink() != nil:
		return nil, "", unsupportedf("subqueries are not supported in SELECT targets")

	default:
		return nil, "", unsupportedf("unsupported SELECT target")
	}
}

// lowerColumnTarget resolves a (possibly qualified, possibly starred) column
// reference against the statement scope.
func lowerColumnTarget(ref *pg_query.ColumnRef, alias string, scope *relationScope) (Target, string, error) {
	fields := ref.GetFields()
	if len(fields) == 0 {
		return nil, "", unsupportedf("unsupported SELECT target")
	}

	star := fields[len(fields)-1].GetAStar() != nil
	if star {
		fields = fields[:len(fields)-1]
	}
	names, ok := stringValues(fields)
	if !ok {
		return nil, "", unsupportedf("unsupported SELECT target")
	}
	if star {
		names = append(names, "*")
	}

	column, embedKey, err := resolveTargetColumn(names, scope)
	if err != nil {
		return nil, "", err
	}
	return ColumnTarget{Column: column, Alias: alias}, embedKey, nil
}

// resolveTargetColumn splits a qualified name into the bare column plus the
// embed it belongs to, if any.
func resolveTargetColumn(names []string, scope *relationScope) (column, embedKey string, err error) {
	switch len(names) {
	case 1:
		return names[0], "", nil
	case 2:
		qualifier, col := names[0], names[1]
		if qualifier == scope.primary || (scope.alias != "" && qualifier == scope.alias) {
			return col, "", nil
		}
		if _, ok := scope.embeds[qualifier]; ok {
			return col, qualifier, nil
		}
		return "", "", unsupportedf("unknown relation %s in column reference", qualifier)
	default:
		return "", "", unsupportedf("column references must have at most two parts")
	}
}

// lowerFuncTarget lowers a function-call target: aggregates become
// AggregateTargets, everything else is treated as embedded-resource syntax
// with the arguments as the nested projection.
func lowerFuncTarget(call *pg_query.FuncCall, alias string, scope *relationScope) (Target, string, error) {
	names, ok := stringValues(call.GetFuncname())
	if !ok || len(names) == 0 {
		return nil, "", unsupportedf("unsupported SELECT target")
	}
	name := lastName(names)

	if call.GetOver() != nil {
		return nil, "", unsupportedf("window functions are not supported")
	}
	if agg, ok := aggregates[name]; ok {
		return lowerAggregateTarget(call, agg, alias, scope)
	}
	return lowerEmbedTarget(call, name, alias)
}

func lowerAggregateTarget(call *pg_query.FuncCall, agg Aggregate, alias string, scope *relationScope) (Target, string, error) {
	switch {
	case call.GetAggDistinct():
		return nil, "", unsupportedf("DISTINCT aggregates are not supported")
	case call.GetAggFilter() != nil:
		return nil, "", unsupportedf("FILTER clauses on aggregates are not supported")
	}

	if call.GetAggStar() {
		return AggregateTarget{Function: agg, Column: "*", Alias: alias}, "", nil
	}

	args := call.GetArgs()
	if len(args) != 1 {
		return nil, "", unsupportedf("%s expects exactly one column argument", agg)
	}
	ref := args[0].GetColumnRef()
	if ref == nil {
		return nil, "", unsupportedf("%s expects a column argument", agg)
	}
	names, ok := stringValues(ref.GetFields())
	if !ok || len(names) == 0 {
		return nil, "", unsupportedf("%s expects a column argument", agg)
	}
	column, embedKey, err := resolveTargetColumn(names, scope)
	if err != nil {
		return nil, "", err
	}
	if embedKey != "" {
		return nil, "", unsupportedf("aggregates over embedded columns are not supported")
	}
	return AggregateTarget{Function: agg, Column: column, Alias: alias}, "", nil
}

// lowerEmbedTarget lowers relation(col1, col2) syntax to a ResourceTarget.
// Arguments name columns of the embedded relation, so they stay unqualified;
// nested calls become nested embeds.
func lowerEmbedTarget(call *pg_query.FuncCall, relation, alias string) (Target, string, error) {
	children := make([]Target, 0, len(call.GetArgs()))
	if call.GetAggStar() {
		// relation(*) parses as a star call with no arguments.
		children = append(children, Star)
	}
	for _, arg := range call.GetArgs() {
		switch {
		case arg.GetColumnRef() != nil:
			fields := arg.GetColumnRef().GetFields()
			if len(fields) == 1 && fields[0].GetAStar() != nil {
				children = append(children, Star)
				continue
			}
			names, ok := stringValues(fields)
			if !ok || len(names) != 1 {
				return nil, "", unsupportedf("embedded columns must be unqualified")
			}
			children = append(children, ColumnTarget{Column: names[0]})

		case arg.GetFuncCall() != nil:
			nested := arg.GetFuncCall()
			names, ok := stringValues(nested.GetFuncname())
			if !ok || len(names) == 0 {
				return nil, "", unsupportedf("unsupported embedded resource target")
			}
			child, _, err := lowerEmbedTarget(nested, lastName(names), "")
			if err != nil {
				return nil, "", err
			}
			children = append(children, child)

		default:
			return nil, "", unsupportedf("embedded resources only support column references")
		}
	}
	return ResourceTarget{Relation: relation, Alias: alias, Targets: children}, "", nil
}

// checkGroupClause accepts GROUP BY only when every grouped column already
// appears as a plain projection target, which is how PostgREST groups
// implicitly when aggregates are selected.
func checkGroupClause(items []*pg_query.Node, scope *relationScope, targets []Target) error {
	for _, item := range items {
		ref := item.GetColumnRef()
		if ref == nil {
			return unsupportedf("GROUP BY expressions are not supported")
		}
		names, ok := stringValues(ref.GetFields())
		if !ok || len(names) == 0 {
			return unsupportedf("GROUP BY expressions are not supported")
		}
		column, embedKey, err := resolveTargetColumn(names, scope)
		if err != nil {
			return err
		}
		if !targetsContainColumn(targets, column, embedKey) {
			return unsupportedf("GROUP BY columns must appear in the SELECT list")
		}
	}
	return nil
}

func targetsContainColumn(targets []Target, column, embedKey string) bool {
	for _, t := range targets {
		switch tt := t.(type) {
		case ColumnTarget:
			if embedKey == "" && tt.Column == column {
				return true
			}
		case ResourceTarget:
			key := tt.Relation
			if tt.Alias != "" {
				key = tt.Alias
			}
			if key == embedKey && targetsContainColumn(tt.Targets, column, "") {
				return true
			}
		}
	}
	return false
}

// lowerSortClause lowers ORDER BY keys, keeping ASC/DESC and NULLS FIRST/LAST
// verbatim and leaving unspecified parts empty.
func lowerSortClause(items []*pg_query.Node, scope *relationScope) ([]Sort, error) {
	if len(items) == 0 {
		return nil, nil
	}

	sorts := make([]Sort, 0, len(items))
	for _, item := range items {
		sb := item.GetSortBy()
		if sb == nil {
			return nil, unsupportedf("unsupported ORDER BY clause")
		}

		column, err := filterColumn(sb.GetNode(), scope)
		if err != nil {
			return nil, unsupportedf("ORDER BY only supports column references")
		}

		sort := Sort{Column: column}
		switch sb.GetSortbyDir() {
		case pg_query.SortByDir_SORTBY_DEFAULT:
		case pg_query.SortByDir_SORTBY_ASC:
			sort.Direction = Ascending
		case pg_query.SortByDir_SORTBY_DESC:
			sort.Direction = Descending
		default:
			return nil, unsupportedf("ORDER BY USING is not supported")
		}
		switch sb.GetSortbyNulls() {
		case pg_query.SortByNulls_SORTBY_NULLS_DEFAULT:
		case pg_query.SortByNulls_SORTBY_NULLS_FIRST:
			sort.Nulls = NullsFirst
		case pg_query.SortByNulls_SORTBY_NULLS_LAST:
			sort.Nulls = NullsLast
		}
		sorts = append(sorts, sort)
	}
	return sorts, nil
}

// lowerLimitClause captures LIMIT and OFFSET as non-negative integers.
// LIMIT ALL lowers to no limit.
func lowerLimitClause(stmt *pg_query.SelectStmt) (*Limit, error) {
	if stmt.GetLimitOption() == pg_query.LimitOption_LIMIT_OPTION_WITH_TIES {
		return nil, unsupportedf("FETCH FIRST ... WITH TIES is not supported")
	}

	count, err := lowerLimitValue(stmt.GetLimitCount(), "LIMIT")
	if err != nil {
		return nil, err
	}
	offset, err := lowerLimitValue(stmt.GetLimitOffset(), "OFFSET")
	if err != nil {
		return nil, err
	}
	if count == nil && offset == nil {
		return nil, nil
	}
	return &Limit{Count: count, Offset: offset}, nil
}

func lowerLimitValue(node *pg_query.Node, keyword string) (*int64, error) {
	if node == nil {
		return nil, nil
	}
	atom, err := lowerAtom(node)
	if err != nil {
		return nil, unsupportedf("%s must be a literal integer", keyword)
	}
	switch v := atom.(type) {
	case IntegerAtom:
		n := int64(v)
		if n < 0 {
			return nil, unsupportedf("%s must not be negative", keyword)
		}
		return &n, nil
	case NullAtom:
		// LIMIT ALL parses as a null constant.
		return nil, nil
	default:
		return nil, unsupportedf("%s must be a literal integer", keyword)
	}
}
