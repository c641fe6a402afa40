package restql

import (
	"reflect"
	"testing"
)

func mustParseInsert(t *testing.T, sql string) Insert {
	t.Helper()
	stmt, err := Parse(sql)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", sql, err)
	}
	ins, ok := stmt.(Insert)
	if !ok {
		t.Fatalf("Expected Insert statement, got %T", stmt)
	}
	return ins
}

func TestInsertValues(t *testing.T) {
	t.Run("Single row", func(t *testing.T) {
		ins := mustParseInsert(t, "INSERT INTO books (title, year) VALUES ('Dune', 1965)")

		if ins.Into != "books" {
			t.Errorf("Expected table books, got %s", ins.Into)
		}
		wantColumns := []string{"title", "year"}
		if !reflect.DeepEqual(ins.Columns, wantColumns) {
			t.Errorf("Expected columns %v, got %v", wantColumns, ins.Columns)
		}
		wantRows := [][]Atom{{StringAtom("Dune"), IntegerAtom(1965)}}
		if !reflect.DeepEqual(ins.Rows, wantRows) {
			t.Errorf("Expected rows %v, got %v", wantRows, ins.Rows)
		}
		if ins.Returning != nil {
			t.Errorf("Expected no returning list, got %v", ins.Returning)
		}
	})

	t.Run("Multiple rows", func(t *testing.T) {
		ins := mustParseInsert(t,
			"INSERT INTO books (title, year) VALUES ('X', 1999), ('Y', 2001)")
		wantRows := [][]Atom{
			{StringAtom("X"), IntegerAtom(1999)},
			{StringAtom("Y"), IntegerAtom(2001)},
		}
		if !reflect.DeepEqual(ins.Rows, wantRows) {
			t.Errorf("Expected rows %v, got %v", wantRows, ins.Rows)
		}
	})

	t.Run("Mixed atom kinds", func(t *testing.T) {
		ins := mustParseInsert(t,
			"INSERT INTO books (title, rating, published, description) VALUES ('Z', 4.5, true, NULL)")
		wantRows := [][]Atom{{StringAtom("Z"), FloatAtom("4.5"), BooleanAtom(true), NullAtom{}}}
		if !reflect.DeepEqual(ins.Rows, wantRows) {
			t.Errorf("Expected rows %v, got %v", wantRows, ins.Rows)
		}
	})

	t.Run("No column list", func(t *testing.T) {
		ins := mustParseInsert(t, "INSERT INTO authors VALUES (1, 'Herbert')")
		if ins.Columns != nil {
			t.Errorf("Expected no column list, got %v", ins.Columns)
		}
		wantRows := [][]Atom{{IntegerAtom(1), StringAtom("Herbert")}}
		if !reflect.DeepEqual(ins.Rows, wantRows) {
			t.Errorf("Expected rows %v, got %v", wantRows, ins.Rows)
		}
	})

	t.Run("RETURNING columns", func(t *testing.T) {
		ins := mustParseInsert(t,
			"INSERT INTO books (title) VALUES ('Dune') RETURNING id, title")
		want := []string{"id", "title"}
		if !reflect.DeepEqual(ins.Returning, want) {
			t.Errorf("Expected returning %v, got %v", want, ins.Returning)
		}
	})

	t.Run("RETURNING star", func(t *testing.T) {
		ins := mustParseInsert(t,
			"INSERT INTO books (title) VALUES ('Dune') RETURNING *")
		want := []string{"*"}
		if !reflect.DeepEqual(ins.Returning, want) {
			t.Errorf("Expected returning %v, got %v", want, ins.Returning)
		}
	})
}

func TestInsertUnsupportedForms(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want string
	}{
		{"DEFAULT VALUES", "INSERT INTO books DEFAULT VALUES",
			"INSERT ... DEFAULT VALUES is not supported"},
		{"INSERT SELECT", "INSERT INTO books (title) SELECT title FROM books",
			"INSERT ... SELECT is not supported"},
		{"ON CONFLICT", "INSERT INTO books (title) VALUES ('X') ON CONFLICT DO NOTHING",
			"ON CONFLICT clauses are not supported"},
		{"CTE", "WITH t AS (SELECT 1) INSERT INTO books (title) VALUES ('X')",
			"CTEs are not supported"},
		{"Table alias", "INSERT INTO books AS b (title) VALUES ('X')",
			"aliases are not supported on INSERT tables"},
		{"Schema-qualified table", "INSERT INTO public.books (title) VALUES ('X')",
			"schema-qualified table names are not supported"},
		{"Indirection in column list", "INSERT INTO books (tags[1]) VALUES ('X')",
			"INSERT column lists only support plain column names"},
		{"DEFAULT value", "INSERT INTO books (title, year) VALUES ('X', DEFAULT)",
			"DEFAULT values are not supported, only constant values"},
		{"Expression value", "INSERT INTO books (title) VALUES (upper('x'))",
			"function calls are not supported here, only constant values"},
		{"Ragged rows", "INSERT INTO books (title, year) VALUES ('X', 1999), ('Y')",
			"INSERT rows must be uniform in length"},
		{"Width mismatch", "INSERT INTO books (title, year) VALUES ('X')",
			"INSERT rows must match the column list, expected 2 values but got 1"},
		{"RETURNING alias", "INSERT INTO books (title) VALUES ('X') RETURNING id AS book_id",
			"aliases are not supported in RETURNING"},
		{"RETURNING expression", "INSERT INTO books (title) VALUES ('X') RETURNING id + 1",
			"RETURNING only supports column references"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertUnsupported(t, tc.sql, tc.want)
		})
	}
}
