// Package hints reads partial table descriptions from YAML.
//
// A hint states only what the caller cares about:
//
//	tables:
//	  - name: users
//	    columns:
//	      - name: email
//	        nullable: false
//	        index_types: [TREE]
//	      - name: bio
//	        index_types: []
//
// Leaving out type, nullable or index_types (or setting them to null) leaves
// the attribute unspecified. An empty index_types list states that the column
// has no index.
package hints

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/koba/schema-diff/internal/schema"
)

type file struct {
	Tables []table `yaml:"tables"`
}

type table struct {
	Name       string   `yaml:"name"`
	PrimaryKey []string `yaml:"primary_key"`
	Columns    []column `yaml:"columns"`
}

type column struct {
	Name       string    `yaml:"name"`
	Type       *string   `yaml:"type"`
	Nullable   *bool     `yaml:"nullable"`
	IndexTypes *[]string `yaml:"index_types"`
}

// Load reads a hints file
func Load(path string) ([]*schema.TableSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hints: %w", err)
	}
	return Parse(data)
}

// Parse decodes hints from YAML
func Parse(data []byte) ([]*schema.TableSchema, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse hints: %w", err)
	}

	seen := make(map[string]bool)
	tables := make([]*schema.TableSchema, 0, len(f.Tables))
	for i, t := range f.Tables {
		if t.Name == "" {
			return nil, fmt.Errorf("table %d has no name", i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("table %s is listed twice", t.Name)
		}
		seen[t.Name] = true

		ts := &schema.TableSchema{
			Name:       t.Name,
			Columns:    make([]schema.ColumnInfo, 0, len(t.Columns)),
			PrimaryKey: t.PrimaryKey,
		}
		for j, c := range t.Columns {
			col, err := c.columnInfo()
			if err != nil {
				return nil, fmt.Errorf("table %s column %d: %w", t.Name, j, err)
			}
			ts.Columns = append(ts.Columns, col)
		}
		tables = append(tables, ts)
	}

	return tables, nil
}

func (c column) columnInfo() (schema.ColumnInfo, error) {
	if c.Name == "" {
		return schema.ColumnInfo{}, fmt.Errorf("column has no name")
	}

	typ := schema.Unspecified[schema.Type]()
	if c.Type != nil {
		t, err := schema.ParseType(*c.Type)
		if err != nil {
			return schema.ColumnInfo{}, err
		}
		typ = schema.Specified(t)
	}

	var indexTypes []schema.IndexType
	if c.IndexTypes != nil {
		indexTypes = make([]schema.IndexType, 0, len(*c.IndexTypes))
		for _, name := range *c.IndexTypes {
			it, err := schema.ParseIndexType(name)
			if err != nil {
				return schema.ColumnInfo{}, err
			}
			indexTypes = append(indexTypes, it)
		}
	}

	return schema.NewColumnInfo(schema.Specified(c.Name), typ, schema.FromPtr(c.Nullable), indexTypes), nil
}
