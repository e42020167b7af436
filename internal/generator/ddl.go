package generator

import (
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/koba/schema-diff/internal/database"
	"github.com/koba/schema-diff/internal/diff"
	"github.com/koba/schema-diff/internal/schema"
)

// DDLGenerator generates DDL statements
type DDLGenerator struct {
	dialect string
}

// NewDDLGenerator creates a new DDL generator. Unknown database types fall
// back to MySQL.
func NewDDLGenerator(dbType string) *DDLGenerator {
	dialect, err := database.NormalizeDialect(dbType)
	if err != nil {
		dialect = database.DialectMySQL
	}
	return &DDLGenerator{dialect: dialect}
}

// Generate generates DDL for a schema diff
func (g *DDLGenerator) Generate(schemaDiff *diff.SchemaDiff) string {
	var statements []string

	switch schemaDiff.Action {
	case diff.ActionAdd:
		table := schemaDiff.NewSchema
		statements = append(statements, g.generateCreateTable(table))
		defined := make(map[string]bool)
		for _, col := range table.Columns {
			if _, ok := g.columnDefinition(col); !ok {
				continue
			}
			name, _ := col.Name().Get()
			defined[name] = true
			for _, kind := range col.IndexTypes().OrElse(schema.IndexTypeSet{}).Slice() {
				statements = append(statements, g.generateCreateIndex(schemaDiff.TableName, name, kind))
			}
		}
		for _, idx := range table.TableIndexes() {
			statements = append(statements, g.generateCreateTableIndex(schemaDiff.TableName, idx, defined))
		}

	case diff.ActionDrop:
		statements = append(statements, g.generateDropTable(schemaDiff.TableName))

	case diff.ActionModify:
		// Drop indexes first
		for _, idxChange := range schemaDiff.IndexChanges {
			if idxChange.Action == diff.ActionDrop || idxChange.Action == diff.ActionModify {
				statements = append(statements, g.dropIndex(schemaDiff.TableName, idxChange.OldIndex.Name))
			}
		}
		for _, change := range schemaDiff.ColumnChanges {
			dropped := change.IndexesDropped
			if change.Action == diff.ActionDrop {
				dropped = change.OldColumn.IndexTypes().OrElse(schema.IndexTypeSet{})
			}
			for _, kind := range dropped.Slice() {
				statements = append(statements, g.generateDropIndex(schemaDiff.OldSchema, change.ColumnName, kind))
			}
		}

		// Modify/drop/add columns
		for _, change := range schemaDiff.ColumnChanges {
			switch change.Action {
			case diff.ActionAdd:
				statements = append(statements, g.generateAddColumn(schemaDiff.TableName, change.NewColumn))
			case diff.ActionDrop:
				statements = append(statements, g.generateDropColumn(schemaDiff.TableName, change.ColumnName))
			case diff.ActionModify:
				statements = append(statements, g.generateModifyColumn(schemaDiff.OldSchema, change)...)
			}
		}

		// Add indexes
		for _, change := range schemaDiff.ColumnChanges {
			if change.Action == diff.ActionAdd {
				if _, ok := g.columnDefinition(*change.NewColumn); !ok {
					continue
				}
			}
			for _, kind := range change.IndexesAdded.Slice() {
				statements = append(statements, g.generateCreateIndex(schemaDiff.TableName, change.ColumnName, kind))
			}
		}
		for _, idxChange := range schemaDiff.IndexChanges {
			if idxChange.Action == diff.ActionAdd || idxChange.Action == diff.ActionModify {
				statements = append(statements, g.generateCreateTableIndex(schemaDiff.TableName, *idxChange.NewIndex, nil))
			}
		}
	}

	return strings.Join(statements, "\n")
}

func (g *DDLGenerator) generateCreateTable(tableSchema *schema.TableSchema) string {
	var parts []string
	var skipped []string

	// Column definitions
	for _, col := range tableSchema.Columns {
		def, ok := g.columnDefinition(col)
		if !ok {
			skipped = append(skipped, fmt.Sprintf("-- skipped column %s: name or type unspecified", col.Name()))
			continue
		}
		parts = append(parts, def)
	}

	if len(parts) == 0 {
		skipped = append(skipped, fmt.Sprintf("-- skipped CREATE TABLE %s: no column has both a name and a type", tableSchema.Name))
		return strings.Join(skipped, "\n")
	}

	// Primary key
	if len(tableSchema.PrimaryKey) > 0 {
		pkCols := strings.Join(g.quoteIdentifiers(tableSchema.PrimaryKey), ", ")
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", pkCols))
	}

	tableName := g.quoteIdentifier(tableSchema.Name)
	stmt := fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", tableName, strings.Join(parts, ",\n  "))
	if len(skipped) > 0 {
		stmt = strings.Join(skipped, "\n") + "\n" + stmt
	}
	return stmt
}

func (g *DDLGenerator) generateDropTable(tableName string) string {
	return fmt.Sprintf("DROP TABLE %s;", g.quoteIdentifier(tableName))
}

func (g *DDLGenerator) generateAddColumn(tableName string, col *schema.ColumnInfo) string {
	def, ok := g.columnDefinition(*col)
	if !ok {
		return fmt.Sprintf("-- skipped ADD COLUMN %s on %s: type unspecified", col.Name(), tableName)
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;",
		g.quoteIdentifier(tableName),
		def,
	)
}

func (g *DDLGenerator) generateDropColumn(tableName, columnName string) string {
	return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;",
		g.quoteIdentifier(tableName),
		g.quoteIdentifier(columnName),
	)
}

func (g *DDLGenerator) generateModifyColumn(old *schema.TableSchema, change diff.ColumnChange) []string {
	tableName := old.Name
	col := *change.NewColumn

	var statements []string
	if nullable, ok := col.Nullable().Get(); ok && nullable && change.NullableChanged && old.IsPrimaryKey(change.ColumnName) {
		statements = append(statements, fmt.Sprintf("-- column %s of %s is part of the primary key and stays NOT NULL", change.ColumnName, tableName))
		change.NullableChanged = false
		col = schema.NewColumnInfo(col.Name(), col.Type(), schema.Specified(false), nil)
	}
	if !change.TypeChanged && !change.NullableChanged {
		return statements
	}

	switch g.dialect {
	case database.DialectPostgres:
		if typ, ok := col.Type().Get(); ok && change.TypeChanged {
			statements = append(statements, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s;",
				g.quoteIdentifier(tableName),
				g.quoteIdentifier(change.ColumnName),
				g.sqlType(typ),
			))
		}
		if nullable, ok := col.Nullable().Get(); ok && change.NullableChanged {
			action := "SET NOT NULL"
			if nullable {
				action = "DROP NOT NULL"
			}
			statements = append(statements, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s %s;",
				g.quoteIdentifier(tableName),
				g.quoteIdentifier(change.ColumnName),
				action,
			))
		}
		return statements

	case database.DialectSQLite:
		return append(statements, fmt.Sprintf("-- SQLite cannot alter column %s of %s; rebuild the table", change.ColumnName, tableName))
	}

	// MySQL
	def, ok := g.columnDefinition(col)
	if !ok {
		return append(statements, fmt.Sprintf("-- skipped MODIFY COLUMN %s on %s: type unspecified", change.ColumnName, tableName))
	}
	return append(statements, fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s;",
		g.quoteIdentifier(tableName),
		def,
	))
}

// generateCreateIndex creates the column-level index of the given kind
func (g *DDLGenerator) generateCreateIndex(tableName, columnName string, kind schema.IndexType) string {
	return g.createIndex(IndexName(tableName, columnName, kind), tableName, []string{columnName}, false, kind)
}

// generateCreateTableIndex recreates a table-level index. When defined is
// not nil, indexes over columns missing from it are skipped.
func (g *DDLGenerator) generateCreateTableIndex(tableName string, idx schema.Index, defined map[string]bool) string {
	if defined != nil {
		for _, c := range idx.Columns {
			if !defined[c] {
				return fmt.Sprintf("-- skipped index %s on %s: column %s is not created", idx.Name, tableName, c)
			}
		}
	}
	return g.createIndex(idx.Name, tableName, idx.Columns, idx.Unique, idx.Type)
}

func (g *DDLGenerator) createIndex(indexName, tableName string, columns []string, unique bool, kind schema.IndexType) string {
	if _, ok := database.StoredIndexType(g.dialect, kind); !ok {
		return fmt.Sprintf("-- skipped index %s on %s: %s cannot create %s indexes", indexName, tableName, g.dialect, kind)
	}

	name := g.quoteIdentifier(indexName)
	table := g.quoteIdentifier(tableName)
	cols := strings.Join(g.quoteIdentifiers(columns), ", ")
	create := "CREATE INDEX"
	if unique {
		create = "CREATE UNIQUE INDEX"
	}

	switch g.dialect {
	case database.DialectPostgres:
		method := map[schema.IndexType]string{
			schema.IndexTree:    " USING btree",
			schema.IndexHash:    " USING hash",
			schema.IndexSpatial: " USING gist",
		}[kind]
		return fmt.Sprintf("%s %s ON %s%s (%s);", create, name, table, method, cols)

	case database.DialectSQLite:
		return fmt.Sprintf("%s %s ON %s (%s);", create, name, table, cols)
	}

	// MySQL
	switch kind {
	case schema.IndexSpatial:
		return fmt.Sprintf("CREATE SPATIAL INDEX %s ON %s (%s);", name, table, cols)
	case schema.IndexTree:
		return fmt.Sprintf("%s %s ON %s (%s) USING BTREE;", create, name, table, cols)
	case schema.IndexHash:
		return fmt.Sprintf("%s %s ON %s (%s) USING HASH;", create, name, table, cols)
	}
	return fmt.Sprintf("%s %s ON %s (%s);", create, name, table, cols)
}

func (g *DDLGenerator) generateDropIndex(old *schema.TableSchema, columnName string, kind schema.IndexType) string {
	indexName, ok := old.IndexName(columnName, kind)
	if !ok {
		indexName = IndexName(old.Name, columnName, kind)
	}
	return g.dropIndex(old.Name, indexName)
}

func (g *DDLGenerator) dropIndex(tableName, indexName string) string {
	if g.dialect == database.DialectMySQL {
		return fmt.Sprintf("DROP INDEX %s ON %s;",
			g.quoteIdentifier(indexName),
			g.quoteIdentifier(tableName),
		)
	}
	return fmt.Sprintf("DROP INDEX %s;", g.quoteIdentifier(indexName))
}

// columnDefinition renders a column for CREATE TABLE and ADD COLUMN. It
// fails when the name or the type is unspecified.
func (g *DDLGenerator) columnDefinition(col schema.ColumnInfo) (string, bool) {
	name, ok := col.Name().Get()
	if !ok {
		return "", false
	}
	typ, ok := col.Type().Get()
	if !ok {
		return "", false
	}

	def := g.quoteIdentifier(name) + " " + g.sqlType(typ)
	if nullable, ok := col.Nullable().Get(); ok && !nullable {
		def += " NOT NULL"
	}
	return def, true
}

func (g *DDLGenerator) sqlType(t schema.Type) string {
	switch g.dialect {
	case database.DialectPostgres:
		return map[schema.Type]string{
			schema.TypeString:    "TEXT",
			schema.TypeBool:      "BOOLEAN",
			schema.TypeByte:      "SMALLINT",
			schema.TypeShort:     "SMALLINT",
			schema.TypeInteger:   "INTEGER",
			schema.TypeLong:      "BIGINT",
			schema.TypeFloat:     "REAL",
			schema.TypeDouble:    "DOUBLE PRECISION",
			schema.TypeTimestamp: "TIMESTAMP",
			schema.TypeGeometry:  "GEOMETRY",
			schema.TypeBlob:      "BYTEA",
		}[t]
	case database.DialectSQLite:
		return map[schema.Type]string{
			schema.TypeString:    "TEXT",
			schema.TypeBool:      "BOOLEAN",
			schema.TypeByte:      "INTEGER",
			schema.TypeShort:     "INTEGER",
			schema.TypeInteger:   "INTEGER",
			schema.TypeLong:      "INTEGER",
			schema.TypeFloat:     "REAL",
			schema.TypeDouble:    "REAL",
			schema.TypeTimestamp: "TIMESTAMP",
			schema.TypeGeometry:  "BLOB",
			schema.TypeBlob:      "BLOB",
		}[t]
	}
	return map[schema.Type]string{
		schema.TypeString:    "VARCHAR(255)",
		schema.TypeBool:      "BOOLEAN",
		schema.TypeByte:      "TINYINT",
		schema.TypeShort:     "SMALLINT",
		schema.TypeInteger:   "INT",
		schema.TypeLong:      "BIGINT",
		schema.TypeFloat:     "FLOAT",
		schema.TypeDouble:    "DOUBLE",
		schema.TypeTimestamp: "TIMESTAMP",
		schema.TypeGeometry:  "GEOMETRY",
		schema.TypeBlob:      "BLOB",
	}[t]
}

func (g *DDLGenerator) quoteIdentifier(name string) string {
	if g.dialect == database.DialectMySQL {
		return fmt.Sprintf("`%s`", name)
	}
	return fmt.Sprintf("\"%s\"", name)
}

func (g *DDLGenerator) quoteIdentifiers(names []string) []string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = g.quoteIdentifier(name)
	}
	return quoted
}

// IndexName returns the name given to a generated index
func IndexName(tableName, columnName string, kind schema.IndexType) string {
	return fmt.Sprintf("idx_%s_%s_%s",
		inflect.Underscore(tableName),
		inflect.Underscore(columnName),
		strings.ToLower(kind.String()),
	)
}
