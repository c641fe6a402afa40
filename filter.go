package restql

// Filter represents one node of a WHERE-clause tree. Filters form a strict
// tree with no sharing; negation is a flag on each node rather than a
// wrapper, which keeps root-level AND flattening simple for renderers.
type Filter interface {
	isFilter()

	// Negated reports whether the node carries a NOT.
	Negated() bool

	// Validate checks the structural invariants of the subtree.
	Validate() error
}

// ColumnFilter is a single column predicate. Column may be qualified with an
// embedded relation name ("authors.name"). Config carries the optional
// text-search configuration for the fts operator family.
type ColumnFilter struct {
	Column   string
	Operator Operator
	Value    Atom
	Config   string
	Negate   bool
}

// LogicalFilter combines child filters with AND or OR. A one-element group is
// legal and behaves as its child, except that it keeps the outer negation.
type LogicalFilter struct {
	Operator LogicOperator
	Filters  []Filter
	Negate   bool
}

func (ColumnFilter) isFilter()  {}
func (LogicalFilter) isFilter() {}

// Negated implements Filter.
func (f ColumnFilter) Negated() bool { return f.Negate }

// Negated implements Filter.
func (f LogicalFilter) Negated() bool { return f.Negate }

// Validate implements Filter.
func (f ColumnFilter) Validate() error {
	if f.Column == "" {
		return unsupportedf("filter predicates require a column reference")
	}
	if f.Operator == "" {
		return unsupportedf("filter predicate on %q is missing an operator", f.Column)
	}
	if f.Value == nil {
		return unsupportedf("filter predicate on %q is missing a value", f.Column)
	}
	return nil
}

// Validate implements Filter.
func (f LogicalFilter) Validate() error {
	if len(f.Filters) == 0 {
		return unsupportedf("%s groups require at least one condition", f.Operator)
	}
	for _, child := range f.Filters {
		if err := child.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// C creates a column predicate.
func C(column string, op Operator, value Atom) ColumnFilter {
	return ColumnFilter{Column: column, Operator: op, Value: value}
}

// And groups filters with AND logic.
func And(filters ...Filter) LogicalFilter {
	return LogicalFilter{Operator: AND, Filters: filters}
}

// Or groups filters with OR logic.
func Or(filters ...Filter) LogicalFilter {
	return LogicalFilter{Operator: OR, Filters: filters}
}

// Not returns the filter with its negation flag flipped. Double negation
// cancels, mirroring how the WHERE-clause walker absorbs NOT nodes.
func Not(f Filter) Filter {
	switch t := f.(type) {
	case ColumnFilter:
		t.Negate = !t.Negate
		return t
	case LogicalFilter:
		t.Negate = !t.Negate
		return t
	default:
		return f
	}
}

// validateBasicFilter recursively rejects any column predicate whose operator
// is outside the basic comparison set. Logical groups are traversed but not
// themselves restricted, so a negated OR of basic predicates passes.
func validateBasicFilter(f Filter) error {
	switch t := f.(type) {
	case ColumnFilter:
		if !t.Operator.IsBasic() {
			return unsupportedf("UPDATE and DELETE filters only support eq, neq, gt, gte, lt and lte operators, got %s", t.Operator)
		}
		return nil
	case LogicalFilter:
		for _, child := range t.Filters {
			if err := validateBasicFilter(child); err != nil {
				return err
			}
		}
		return nil
	default:
		return nil
	}
}
