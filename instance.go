package restql

import (
	"fmt"

	"github.com/zoobzio/dbml"
)

// Instance couples the parser with a DBML schema. Statements parsed through
// an Instance are checked against the schema before they are returned, so
// renderers never see a table or column the schema does not know about.
type Instance struct {
	project *dbml.Project
	tables  map[string]*dbml.Table
	columns map[string]map[string]*dbml.Column
}

// NewFromDBML creates an Instance from a DBML project.
func NewFromDBML(project *dbml.Project) (*Instance, error) {
	if project == nil {
		return nil, fmt.Errorf("project cannot be nil")
	}

	inst := &Instance{
		project: project,
		tables:  make(map[string]*dbml.Table),
		columns: make(map[string]map[string]*dbml.Column),
	}
	for _, table := range project.Tables {
		inst.tables[table.Name] = table
		inst.columns[table.Name] = make(map[string]*dbml.Column)
		for _, col := range table.Columns {
			inst.columns[table.Name][col.Name] = col
		}
	}
	return inst, nil
}

// Parse parses one SQL statement and validates it against the schema.
func (inst *Instance) Parse(sql string) (Statement, error) {
	stmt, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	if err := inst.validateStatement(stmt); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (inst *Instance) validateStatement(stmt Statement) error {
	switch s := stmt.(type) {
	case Select:
		if err := inst.validateTable(s.From); err != nil {
			return err
		}
		if err := inst.validateTargets(s.From, s.Targets); err != nil {
			return err
		}
		if err := inst.validateFilter(s.From, s.Filter); err != nil {
			return err
		}
		for _, o := range s.Sorts {
			if err := inst.validateSortColumn(s.From, o.Column); err != nil {
				return err
			}
		}
		return nil
	case Insert:
		if err := inst.validateTable(s.Into); err != nil {
			return err
		}
		for _, col := range s.Columns {
			if err := inst.validateColumn(s.Into, col); err != nil {
				return err
			}
		}
		return inst.validateReturning(s.Into, s.Returning)
	case Update:
		if err := inst.validateTable(s.Table); err != nil {
			return err
		}
		for _, a := range s.Set {
			if err := inst.validateColumn(s.Table, a.Column); err != nil {
				return err
			}
		}
		if err := inst.validateFilter(s.Table, s.Filter); err != nil {
			return err
		}
		return inst.validateReturning(s.Table, s.Returning)
	case Delete:
		if err := inst.validateTable(s.From); err != nil {
			return err
		}
		if err := inst.validateFilter(s.From, s.Filter); err != nil {
			return err
		}
		return inst.validateReturning(s.From, s.Returning)
	default:
		return nil
	}
}

func (inst *Instance) validateTable(name string) error {
	if _, ok := inst.tables[name]; !ok {
		return unsupportedf("table '%s' not found in schema", name)
	}
	return nil
}

func (inst *Instance) validateColumn(table, column string) error {
	if column == "*" {
		return nil
	}
	cols, ok := inst.columns[table]
	if !ok {
		return unsupportedf("table '%s' not found in schema", table)
	}
	if _, ok := cols[column]; !ok {
		return unsupportedf("column '%s' not found in table '%s'", column, table)
	}
	return nil
}

func (inst *Instance) validateTargets(table string, targets []Target) error {
	for _, t := range targets {
		switch tt := t.(type) {
		case ColumnTarget:
			if err := inst.validateColumn(table, tt.Column); err != nil {
				return err
			}
		case AggregateTarget:
			if err := inst.validateColumn(table, tt.Column); err != nil {
				return err
			}
		case ResourceTarget:
			if err := inst.validateTable(tt.Relation); err != nil {
				return err
			}
			if err := inst.validateTargets(tt.Relation, tt.Targets); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateFilter walks a filter tree. Embed-qualified columns carry a dotted
// prefix naming the embedded relation, so the lookup follows the prefix.
func (inst *Instance) validateFilter(table string, f Filter) error {
	switch t := f.(type) {
	case nil:
		return nil
	case ColumnFilter:
		relation, column := table, t.Column
		if i := lastDot(t.Column); i >= 0 {
			relation, column = t.Column[:i], t.Column[i+1:]
			if _, ok := inst.tables[relation]; !ok {
				// The prefix is an embed alias, which the schema cannot
				// resolve without the projection. Leave it to PostgREST.
				return nil
			}
		}
		return inst.validateColumn(relation, column)
	case LogicalFilter:
		for _, child := range t.Filters {
			if err := inst.validateFilter(table, child); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}

func (inst *Instance) validateSortColumn(table, column string) error {
	relation := table
	if i := lastDot(column); i >= 0 {
		relation, column = column[:i], column[i+1:]
		if _, ok := inst.tables[relation]; !ok {
			return nil
		}
	}
	return inst.validateColumn(relation, column)
}

func (inst *Instance) validateReturning(table string, columns []string) error {
	for _, col := range columns {
		if err := inst.validateColumn(table, col); err != nil {
			return err
		}
	}
	return nil
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
