package database

import (
	"log"

	"github.com/koba/schema-diff/internal/schema"
)

// columnRow is a column as read from the server catalog
type columnRow struct {
	name     string
	sqlType  string
	nullable bool
}

// indexRow is one (index, column) pair as read from the server catalog
type indexRow struct {
	name    string
	column  string
	unique  bool
	primary bool
	method  string

	// keyColumns is the number of key slots the server reports for the
	// index, or 0 when it only reports one row per slot
	keyColumns int
	expression bool
	partial    bool
	// constraint marks indexes owned by a table constraint, which cannot be
	// dropped or created on their own
	constraint bool
}

// buildTableSchema assembles a table from catalog rows. Columns come out
// fully specified except for types that have no schema counterpart.
// Single-column, non-unique indexes contribute to their column's index
// types; unique and composite indexes are kept at table level. Partial,
// expression and constraint-owned indexes are skipped.
func buildTableSchema(tableName string, columns []columnRow, indexes []indexRow) *schema.TableSchema {
	table := &schema.TableSchema{
		Name:    tableName,
		Columns: []schema.ColumnInfo{},
	}

	// Group by index name, preserving first-seen order
	var order []string
	grouped := make(map[string][]indexRow)
	for _, row := range indexes {
		if _, exists := grouped[row.name]; !exists {
			order = append(order, row.name)
		}
		grouped[row.name] = append(grouped[row.name], row)
	}

	kinds := make(map[string][]schema.IndexType)
	for _, name := range order {
		rows := grouped[name]
		first := rows[0]

		if first.primary {
			for _, r := range rows {
				table.PrimaryKey = append(table.PrimaryKey, r.column)
			}
			continue
		}
		if first.partial {
			log.Printf("table %s: skipping partial index %s", tableName, name)
			continue
		}
		if first.constraint {
			log.Printf("table %s: skipping constraint index %s", tableName, name)
			continue
		}

		expression := first.expression || (first.keyColumns > 0 && first.keyColumns != len(rows))
		indexColumns := make([]string, 0, len(rows))
		for _, r := range rows {
			if r.column == "" {
				expression = true
			}
			indexColumns = append(indexColumns, r.column)
		}
		if expression {
			log.Printf("table %s: skipping expression index %s", tableName, name)
			continue
		}

		kind, ok := MapIndexMethod(first.method)
		if !ok {
			log.Printf("table %s: skipping index %s with unsupported method %q", tableName, name, first.method)
			continue
		}

		idx := schema.Index{
			Name:    name,
			Columns: indexColumns,
			Unique:  first.unique,
			Type:    kind,
		}
		if idx.ColumnLevel() {
			kinds[indexColumns[0]] = append(kinds[indexColumns[0]], kind)
		}
		table.Indexes = append(table.Indexes, idx)
	}

	for _, col := range columns {
		indexTypes := kinds[col.name]
		if indexTypes == nil {
			indexTypes = []schema.IndexType{}
		}
		table.Columns = append(table.Columns, schema.NewColumnInfo(
			schema.Specified(col.name),
			MapSQLType(col.sqlType),
			schema.Specified(col.nullable),
			indexTypes,
		))
	}

	return table
}
