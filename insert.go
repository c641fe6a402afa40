package restql

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// lowerInsert lowers an InsertStmt into the Insert IR. Only VALUES-list
// inserts survive; INSERT ... SELECT, DEFAULT VALUES, and ON CONFLICT are
// rejected.
func lowerInsert(stmt *pg_query.InsertStmt) (Statement, error) {
	if stmt.GetWithClause() != nil {
		return nil, unsupportedf("CTEs are not supported")
	}
	if stmt.GetOnConflictClause() != nil {
		return nil, unsupportedf("ON CONFLICT clauses are not supported")
	}

	table, alias, err := relationName(stmt.GetRelation())
	if err != nil {
		return nil, err
	}
	if alias != "" {
		return nil, unsupportedf("aliases are not supported on INSERT tables")
	}

	columns, err := lowerInsertColumns(stmt.GetCols())
	if err != nil {
		return nil, err
	}

	rows, err := lowerInsertRows(stmt.GetSelectStmt())
	if err != nil {
		return nil, err
	}

	returning, err := lowerReturning(stmt.GetReturningList())
	if err != nil {
		return nil, err
	}

	ins := Insert{
		Into:      table,
		Columns:   columns,
		Rows:      rows,
		Returning: returning,
	}
	if err := ins.Validate(); err != nil {
		return nil, err
	}
	return ins, nil
}

// lowerInsertColumns extracts the optional column list. Indirection such as
// array subscripts or composite fields is rejected.
func lowerInsertColumns(nodes []*pg_query.Node) ([]string, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	columns := make([]string, 0, len(nodes))
	for _, n := range nodes {
		rt := n.GetResTarget()
		if rt == nil || rt.GetName() == "" {
			return nil, unsupportedf("INSERT column lists only support plain column names")
		}
		if len(rt.GetIndirection()) > 0 {
			return nil, unsupportedf("INSERT column lists only support plain column names")
		}
		columns = append(columns, rt.GetName())
	}
	return columns, nil
}

// lowerInsertRows pulls the VALUES lists out of the inner select node. The
// parser represents both DEFAULT VALUES (nil select) and INSERT ... SELECT
// (select without ValuesLists) through the same field.
func lowerInsertRows(node *pg_query.Node) ([][]Atom, error) {
	if node == nil {
		return nil, unsupportedf("INSERT ... DEFAULT VALUES is not supported")
	}
	sel := node.GetSelectStmt()
	if sel == nil {
		return nil, unsupportedf("INSERT only supports VALUES lists")
	}
	values := sel.GetValuesLists()
	if len(values) == 0 {
		return nil, unsupportedf("INSERT ... SELECT is not supported")
	}

	rows := make([][]Atom, 0, len(values))
	for _, list := range values {
		items := list.GetList().GetItems()
		row := make([]Atom, 0, len(items))
		for _, item := range items {
			atom, err := lowerAtom(item)
			if err != nil {
				return nil, err
			}
			row = append(row, atom)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
