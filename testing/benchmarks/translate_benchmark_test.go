// Package benchmarks provides performance benchmarks for restql.
package benchmarks

import (
	"testing"

	"github.com/zoobzio/restql"
	"github.com/zoobzio/restql/postgrest"
	"github.com/zoobzio/restql/supabase"
	restqltesting "github.com/zoobzio/restql/testing"
)

func mustParse(b *testing.B, sql string) restql.Statement {
	b.Helper()

	stmt, err := restql.Parse(sql)
	if err != nil {
		b.Fatalf("Parse(%q) failed: %v", sql, err)
	}
	return stmt
}

// BenchmarkParseSimpleSelect measures parsing a minimal SELECT.
func BenchmarkParseSimpleSelect(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := restql.Parse("SELECT * FROM books")
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParseComplexSelect measures parsing a SELECT with a projection,
// nested filters, ordering and paging.
func BenchmarkParseComplexSelect(b *testing.B) {
	b.ReportAllocs()

	sql := "SELECT title, author, year FROM books " +
		"WHERE (rating > 4 AND year < 2000) OR author = 'asimov' " +
		"ORDER BY year DESC NULLS FIRST, title ASC LIMIT 10 OFFSET 20"

	for i := 0; i < b.N; i++ {
		_, err := restql.Parse(sql)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkParseInsert measures parsing a multi-row INSERT.
func BenchmarkParseInsert(b *testing.B) {
	b.ReportAllocs()

	sql := "INSERT INTO books (title, year) VALUES ('X', 1999), ('Y', 2001) RETURNING id"

	for i := 0; i < b.N; i++ {
		_, err := restql.Parse(sql)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRenderSimpleSelect measures rendering a minimal SELECT.
func BenchmarkRenderSimpleSelect(b *testing.B) {
	stmt := mustParse(b, "SELECT * FROM books")
	renderer := postgrest.New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := renderer.Render(stmt)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRenderSelectWithFilters measures rendering nested boolean filters.
func BenchmarkRenderSelectWithFilters(b *testing.B) {
	stmt := mustParse(b, "SELECT title FROM books "+
		"WHERE (rating > 4 AND year < 2000) OR author = 'asimov' "+
		"ORDER BY title LIMIT 10")
	renderer := postgrest.New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := renderer.Render(stmt)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRenderJoinEmbed measures rendering a join as an embed.
func BenchmarkRenderJoinEmbed(b *testing.B) {
	stmt := mustParse(b, "SELECT books.title, authors.name FROM books "+
		"JOIN authors ON authors.id = books.author_id")
	renderer := postgrest.New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := renderer.Render(stmt)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRenderAggregates measures rendering a GROUP BY with aggregates.
func BenchmarkRenderAggregates(b *testing.B) {
	stmt := mustParse(b, "SELECT genre, count(*), sum(pages)::int AS total "+
		"FROM books GROUP BY genre")
	renderer := postgrest.New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := renderer.Render(stmt)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRenderInsert measures rendering an INSERT body.
func BenchmarkRenderInsert(b *testing.B) {
	stmt := mustParse(b,
		"INSERT INTO books (title, year, rating) VALUES ('Dune', 1965, 4.5) RETURNING id")
	renderer := postgrest.New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := renderer.Render(stmt)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRenderUpdate measures rendering an UPDATE.
func BenchmarkRenderUpdate(b *testing.B) {
	stmt := mustParse(b,
		"UPDATE books SET year = 2000, published = false WHERE id = 1 RETURNING id")
	renderer := postgrest.New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := renderer.Render(stmt)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRenderDelete measures rendering a DELETE.
func BenchmarkRenderDelete(b *testing.B) {
	stmt := mustParse(b, "DELETE FROM books WHERE id = 1")
	renderer := postgrest.New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := renderer.Render(stmt)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFormatHTTP measures formatting a request as raw HTTP.
func BenchmarkFormatHTTP(b *testing.B) {
	stmt := mustParse(b,
		"SELECT title FROM books WHERE year > 1990 ORDER BY title LIMIT 10")
	req, err := postgrest.New().Render(stmt)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := postgrest.FormatHTTP(req, "")
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFormatCurl measures formatting a request as a curl command.
func BenchmarkFormatCurl(b *testing.B) {
	stmt := mustParse(b,
		"SELECT title FROM books WHERE year > 1990 ORDER BY title LIMIT 10")
	req, err := postgrest.New().Render(stmt)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := postgrest.FormatCurl(req, "")
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSupabaseSelect measures rendering a client snippet for a SELECT.
func BenchmarkSupabaseSelect(b *testing.B) {
	stmt := mustParse(b,
		"SELECT title, author FROM books WHERE rating > 4 ORDER BY title LIMIT 10")
	renderer := supabase.New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := renderer.Render(stmt)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSupabaseInsert measures rendering a client snippet for an INSERT.
func BenchmarkSupabaseInsert(b *testing.B) {
	stmt := mustParse(b,
		"INSERT INTO books (title, year) VALUES ('Dune', 1965) RETURNING id")
	renderer := supabase.New()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := renderer.Render(stmt)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSchemaValidatedParse measures parsing with schema validation on
// top of the raw parse.
func BenchmarkSchemaValidatedParse(b *testing.B) {
	instance, err := restql.NewFromDBML(restqltesting.TestProject())
	if err != nil {
		b.Fatalf("Failed to create instance: %v", err)
	}
	sql := "SELECT title, author FROM books WHERE year > 2000 ORDER BY title"

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := instance.Parse(sql)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEndToEnd measures the full pipeline from SQL text to an HTTP
// request string.
func BenchmarkEndToEnd(b *testing.B) {
	sql := "SELECT title, author FROM books WHERE year > 1990 ORDER BY title LIMIT 10"
	renderer := postgrest.New()

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		stmt, err := restql.Parse(sql)
		if err != nil {
			b.Fatal(err)
		}
		req, err := renderer.Render(stmt)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := postgrest.FormatHTTP(req, ""); err != nil {
			b.Fatal(err)
		}
	}
}
