// Package testing provides test utilities for restql.
package testing

import (
	"strings"
	"testing"

	"github.com/zoobzio/dbml"

	"github.com/zoobzio/restql"
)

// TestProject creates the DBML project the test suite queries: books,
// authors, and reviews.
func TestProject() *dbml.Project {
	project := dbml.NewProject("library")

	books := dbml.NewTable("books")
	books.AddColumn(dbml.NewColumn("id", "bigint"))
	books.AddColumn(dbml.NewColumn("author_id", "bigint"))
	books.AddColumn(dbml.NewColumn("title", "varchar"))
	books.AddColumn(dbml.NewColumn("author", "varchar"))
	books.AddColumn(dbml.NewColumn("description", "text"))
	books.AddColumn(dbml.NewColumn("year", "int"))
	books.AddColumn(dbml.NewColumn("pages", "int"))
	books.AddColumn(dbml.NewColumn("rating", "numeric"))
	books.AddColumn(dbml.NewColumn("genre", "varchar"))
	books.AddColumn(dbml.NewColumn("published", "boolean"))
	books.AddColumn(dbml.NewColumn("tags", "text[]"))
	books.AddColumn(dbml.NewColumn("tsv", "tsvector"))
	project.AddTable(books)

	authors := dbml.NewTable("authors")
	authors.AddColumn(dbml.NewColumn("id", "bigint"))
	authors.AddColumn(dbml.NewColumn("name", "varchar"))
	authors.AddColumn(dbml.NewColumn("country", "varchar"))
	authors.AddColumn(dbml.NewColumn("born", "int"))
	project.AddTable(authors)

	reviews := dbml.NewTable("reviews")
	reviews.AddColumn(dbml.NewColumn("id", "bigint"))
	reviews.AddColumn(dbml.NewColumn("book_id", "bigint"))
	reviews.AddColumn(dbml.NewColumn("stars", "int"))
	reviews.AddColumn(dbml.NewColumn("body", "text"))
	project.AddTable(reviews)

	return project
}

// TestInstance creates a schema-validated translator over TestProject.
func TestInstance(t *testing.T) *restql.Instance {
	t.Helper()

	instance, err := restql.NewFromDBML(TestProject())
	if err != nil {
		t.Fatalf("Failed to create test instance: %v", err)
	}
	return instance
}

// AssertOutput compares expected and actual rendered output, reporting
// detailed differences.
func AssertOutput(t *testing.T, expected, actual string) {
	t.Helper()
	if expected != actual {
		t.Errorf("Output mismatch:\nExpected: %s\nActual:   %s", expected, actual)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected error but got nil")
	}
}

// AssertErrorContains checks that error message contains substring.
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected error containing %q but got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Errorf("Expected error containing %q, got: %v", substr, err)
	}
}
