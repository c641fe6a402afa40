package cli

import (
	"fmt"
	"os"

	"github.com/zoobzio/dbml"
	"gopkg.in/yaml.v3"

	"github.com/zoobzio/restql"
)

// SchemaFile is the on-disk schema declaration: table names mapping to
// column name/type pairs.
type SchemaFile struct {
	Name   string                    `yaml:"name"`
	Tables map[string][]SchemaColumn `yaml:"tables"`
}

// SchemaColumn declares one column.
type SchemaColumn struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// loadInstance reads a schema file and builds a schema-validated translator.
func loadInstance(path string) (*restql.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var schema SchemaFile
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("parsing schema file %s: %w", path, err)
	}
	if len(schema.Tables) == 0 {
		return nil, fmt.Errorf("schema file %s declares no tables", path)
	}

	name := schema.Name
	if name == "" {
		name = "restql"
	}
	project := dbml.NewProject(name)
	for tableName, columns := range schema.Tables {
		table := dbml.NewTable(tableName)
		for _, col := range columns {
			table.AddColumn(dbml.NewColumn(col.Name, col.Type))
		}
		project.AddTable(table)
	}
	return restql.NewFromDBML(project)
}
