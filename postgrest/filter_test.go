package postgrest

import (
	"testing"

	"github.com/zoobzio/restql"
)

func TestQuoteIfNeeded(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"Plain value", "asimov", "asimov"},
		{"Value with spaces", "space opera", "space opera"},
		{"Empty value", "", `""`},
		{"Leading space", " lead", `" lead"`},
		{"Trailing space", "trail ", `"trail "`},
		{"Comma", "a,b", `"a,b"`},
		{"Dot", "J.R.R", `"J.R.R"`},
		{"Colon", "a:b", `"a:b"`},
		{"Parentheses", "f(x)", `"f(x)"`},
		{"Embedded quote", `say "hi"`, `"say \"hi\""`},
		{"Backslash", `a\b`, `"a\\b"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := quoteIfNeeded(tc.in); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestEscape(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"Safe characters stay literal", `a-Z0_.~*,()":!`, `a-Z0_.~*,()":!`},
		{"Space", "a b", "a%20b"},
		{"Ampersand", "cat & dog", "cat%20%26%20dog"},
		{"Percent", "The%", "The%25"},
		{"Plus", "1+1", "1%2B1"},
		{"Equals", "a=b", "a%3Db"},
		{"Slash", "a/b", "a%2Fb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := escape(tc.in); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestFilterExpression(t *testing.T) {
	cases := []struct {
		name   string
		filter restql.Filter
		want   string
	}{
		{"Column predicate",
			restql.C("rating", restql.GT, restql.IntegerAtom(4)),
			"rating.gt.4"},
		{"Negated predicate",
			restql.Not(restql.C("rating", restql.GT, restql.IntegerAtom(4))),
			"rating.not.gt.4"},
		{"AND group",
			restql.And(
				restql.C("rating", restql.GT, restql.IntegerAtom(4)),
				restql.C("year", restql.LT, restql.IntegerAtom(2000)),
			),
			"and(rating.gt.4,year.lt.2000)"},
		{"Negated OR group",
			restql.Not(restql.Or(
				restql.C("a", restql.EQ, restql.IntegerAtom(1)),
				restql.C("b", restql.EQ, restql.IntegerAtom(2)),
			)),
			"not.or(a.eq.1,b.eq.2)"},
		{"Nested groups",
			restql.Or(
				restql.And(
					restql.C("rating", restql.GT, restql.IntegerAtom(4)),
					restql.C("year", restql.LT, restql.IntegerAtom(2000)),
				),
				restql.C("author", restql.EQ, restql.StringAtom("asimov")),
			),
			"or(and(rating.gt.4,year.lt.2000),author.eq.asimov)"},
		{"Text-search configuration",
			restql.ColumnFilter{Column: "tsv", Operator: restql.FTS, Config: "english", Value: restql.StringAtom("cat")},
			"tsv.fts(english).cat"},
		{"IN list is parenthesized",
			restql.C("genre", restql.IN, restql.ListAtom{
				restql.StringAtom("scifi"), restql.StringAtom("fantasy"),
			}),
			"genre.in.(scifi,fantasy)"},
		{"Quoted value inside a group",
			restql.C("author", restql.EQ, restql.StringAtom("Tolkien, J.R.R.")),
			`author.eq."Tolkien, J.R.R."`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FilterExpression(tc.filter); got != tc.want {
				t.Errorf("Expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestCollapseSingles(t *testing.T) {
	t.Run("One-element group becomes its child", func(t *testing.T) {
		child := restql.C("a", restql.EQ, restql.IntegerAtom(1))
		got := collapseSingles(restql.Or(child))
		if got != restql.Filter(child) {
			t.Errorf("Expected %v, got %v", child, got)
		}
	})

	t.Run("Group negation folds into the child", func(t *testing.T) {
		child := restql.C("a", restql.EQ, restql.IntegerAtom(1))
		got := collapseSingles(restql.Not(restql.And(child)))
		if !got.Negated() {
			t.Error("Expected the collapsed child to carry the negation")
		}
	})

	t.Run("Nested single groups collapse through", func(t *testing.T) {
		child := restql.C("a", restql.EQ, restql.IntegerAtom(1))
		got := collapseSingles(restql.And(restql.Or(child)))
		if got != restql.Filter(child) {
			t.Errorf("Expected %v, got %v", child, got)
		}
	})

	t.Run("Multi-element groups are untouched", func(t *testing.T) {
		group := restql.And(
			restql.C("a", restql.EQ, restql.IntegerAtom(1)),
			restql.C("b", restql.EQ, restql.IntegerAtom(2)),
		)
		got := collapseSingles(group)
		if _, ok := got.(restql.LogicalFilter); !ok {
			t.Errorf("Expected the group to survive, got %T", got)
		}
	})
}

func TestAppendFilterParams(t *testing.T) {
	t.Run("Nested AND flattens recursively", func(t *testing.T) {
		var params Params
		appendFilterParams(&params, restql.And(
			restql.C("a", restql.EQ, restql.IntegerAtom(1)),
			restql.And(
				restql.C("b", restql.EQ, restql.IntegerAtom(2)),
				restql.C("c", restql.EQ, restql.IntegerAtom(3)),
			),
		))
		if got := params.Encode(); got != "a=eq.1&b=eq.2&c=eq.3" {
			t.Errorf("Expected a=eq.1&b=eq.2&c=eq.3, got %s", got)
		}
	})

	t.Run("Negated AND stays one parameter", func(t *testing.T) {
		var params Params
		appendFilterParams(&params, restql.Not(restql.And(
			restql.C("a", restql.EQ, restql.IntegerAtom(1)),
			restql.C("b", restql.EQ, restql.IntegerAtom(2)),
		)))
		if got := params.Encode(); got != "and=not.(a.eq.1,b.eq.2)" {
			t.Errorf("Expected and=not.(a.eq.1,b.eq.2), got %s", got)
		}
	})
}
