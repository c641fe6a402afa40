package restql

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// lowerDelete lowers a DeleteStmt into the Delete IR, with the same filter
// restriction as UPDATE.
func lowerDelete(stmt *pg_query.DeleteStmt) (Statement, error) {
	if stmt.GetWithClause() != nil {
		return nil, unsupportedf("CTEs are not supported")
	}
	if len(stmt.GetUsingClause()) > 0 {
		return nil, unsupportedf("DELETE ... USING is not supported")
	}

	table, alias, err := relationName(stmt.GetRelation())
	if err != nil {
		return nil, err
	}

	var filter Filter
	if where := stmt.GetWhereClause(); where != nil {
		scope := newRelationScope(table, alias)
		var err error
		filter, err = lowerFilter(where, scope)
		if err != nil {
			return nil, err
		}
	}

	returning, err := lowerReturning(stmt.GetReturningList())
	if err != nil {
		return nil, err
	}

	del := Delete{
		From:      table,
		Filter:    filter,
		Returning: returning,
	}
	if err := del.Validate(); err != nil {
		return nil, err
	}
	return del, nil
}
