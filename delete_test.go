package restql

import (
	"reflect"
	"testing"
)

func mustParseDelete(t *testing.T, sql string) Delete {
	t.Helper()
	stmt, err := Parse(sql)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", sql, err)
	}
	del, ok := stmt.(Delete)
	if !ok {
		t.Fatalf("Expected Delete statement, got %T", stmt)
	}
	return del
}

func TestDelete(t *testing.T) {
	t.Run("With a filter", func(t *testing.T) {
		del := mustParseDelete(t, "DELETE FROM books WHERE id = 1")

		if del.From != "books" {
			t.Errorf("Expected table books, got %s", del.From)
		}
		wantFilter := Filter(C("id", EQ, IntegerAtom(1)))
		if !reflect.DeepEqual(del.Filter, wantFilter) {
			t.Errorf("Expected %v, got %v", wantFilter, del.Filter)
		}
	})

	t.Run("Without a WHERE clause", func(t *testing.T) {
		del := mustParseDelete(t, "DELETE FROM books")
		if del.Filter != nil {
			t.Errorf("Expected no filter, got %v", del.Filter)
		}
	})

	t.Run("Alias qualifier is stripped from the filter", func(t *testing.T) {
		del := mustParseDelete(t, "DELETE FROM books b WHERE b.id = 1")
		wantFilter := Filter(C("id", EQ, IntegerAtom(1)))
		if !reflect.DeepEqual(del.Filter, wantFilter) {
			t.Errorf("Expected %v, got %v", wantFilter, del.Filter)
		}
	})

	t.Run("RETURNING columns", func(t *testing.T) {
		del := mustParseDelete(t, "DELETE FROM books WHERE id = 1 RETURNING id, title")
		want := []string{"id", "title"}
		if !reflect.DeepEqual(del.Returning, want) {
			t.Errorf("Expected returning %v, got %v", want, del.Returning)
		}
	})
}

func TestDeleteUnsupportedForms(t *testing.T) {
	cases := []struct {
		name string
		sql  string
		want string
	}{
		{"USING clause", "DELETE FROM books USING authors WHERE authors.id = books.author_id",
			"DELETE ... USING is not supported"},
		{"CTE", "WITH t AS (SELECT 1) DELETE FROM books",
			"CTEs are not supported"},
		{"Non-basic operator", "DELETE FROM books WHERE title ILIKE '%x%'",
			"UPDATE and DELETE filters only support eq, neq, gt, gte, lt and lte operators, got ilike"},
		{"Schema-qualified table", "DELETE FROM public.books",
			"schema-qualified table names are not supported"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertUnsupported(t, tc.sql, tc.want)
		})
	}
}
