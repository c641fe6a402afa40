package restql

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// lowerUpdate lowers an UpdateStmt into the Update IR. SET values must be
// constants and the filter is restricted to the basic comparison operators.
func lowerUpdate(stmt *pg_query.UpdateStmt) (Statement, error) {
	if stmt.GetWithClause() != nil {
		return nil, unsupportedf("CTEs are not supported")
	}
	if len(stmt.GetFromClause()) > 0 {
		return nil, unsupportedf("UPDATE ... FROM is not supported")
	}

	table, alias, err := relationName(stmt.GetRelation())
	if err != nil {
		return nil, err
	}

	set, err := lowerAssignments(stmt.GetTargetList())
	if err != nil {
		return nil, err
	}

	var filter Filter
	if where := stmt.GetWhereClause(); where != nil {
		scope := newRelationScope(table, alias)
		filter, err = lowerFilter(where, scope)
		if err != nil {
			return nil, err
		}
	}

	returning, err := lowerReturning(stmt.GetReturningList())
	if err != nil {
		return nil, err
	}

	upd := Update{
		Table:     table,
		Set:       set,
		Filter:    filter,
		Returning: returning,
	}
	if err := upd.Validate(); err != nil {
		return nil, err
	}
	return upd, nil
}

// lowerAssignments converts the SET list, keeping the written order. The
// parser spells SET (a, b) = (...) as a MultiAssignRef, which is rejected.
func lowerAssignments(nodes []*pg_query.Node) ([]Assignment, error) {
	set := make([]Assignment, 0, len(nodes))
	for _, n := range nodes {
		rt := n.GetResTarget()
		if rt == nil || rt.GetName() == "" {
			return nil, unsupportedf("SET only supports plain column assignments")
		}
		if len(rt.GetIndirection()) > 0 {
			return nil, unsupportedf("SET only supports plain column assignments")
		}
		if rt.GetVal().GetMultiAssignRef() != nil {
			return nil, unsupportedf("SET only supports plain column assignments")
		}
		value, err := lowerAtom(rt.GetVal())
		if err != nil {
			return nil, err
		}
		set = append(set, Assignment{Column: rt.GetName(), Value: value})
	}
	return set, nil
}
