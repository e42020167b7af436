package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/koba/schema-diff/internal/schema"
)

const (
	postgresTablesQuery = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	postgresColumnsQuery = `
		SELECT
			column_name,
			data_type,
			is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position
	`

	postgresIndexesQuery = `
		SELECT
			i.relname AS index_name,
			a.attname AS column_name,
			ix.indisunique AS is_unique,
			ix.indisprimary AS is_primary,
			am.amname AS method,
			ix.indnatts AS key_columns,
			ix.indexprs IS NOT NULL AS has_expressions,
			ix.indpred IS NOT NULL AS is_partial,
			EXISTS (
				SELECT 1 FROM pg_constraint c
				WHERE c.conindid = ix.indexrelid AND c.contype <> 'p'
			) AS is_constraint
		FROM pg_class t
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_am am ON am.oid = i.relam
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = ANY(ix.indkey)
		WHERE t.relname = $1 AND t.relkind = 'r'
		ORDER BY i.relname, a.attnum
	`
)

// Postgres implements the Database interface for PostgreSQL
type Postgres struct {
	config Config
	db     *sql.DB
}

// NewPostgres creates a new PostgreSQL database connection
func NewPostgres(config Config) *Postgres {
	return &Postgres{config: config}
}

// Connect establishes a connection to PostgreSQL
func (p *Postgres) Connect() error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		p.config.Host,
		p.config.Port,
		p.config.User,
		p.config.Password,
		p.config.Database,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	p.db = db
	return nil
}

// Close closes the PostgreSQL connection
func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Dialect returns DialectPostgres
func (p *Postgres) Dialect() string {
	return DialectPostgres
}

// GetAllTables retrieves all table names in the public schema
func (p *Postgres) GetAllTables() ([]string, error) {
	rows, err := p.db.Query(postgresTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// GetTableSchema retrieves the schema for a specific table
func (p *Postgres) GetTableSchema(tableName string) (*schema.TableSchema, error) {
	columns, err := p.getColumns(tableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", tableName)
	}

	indexes, err := p.getIndexes(tableName)
	if err != nil {
		return nil, err
	}

	return buildTableSchema(tableName, columns, indexes), nil
}

func (p *Postgres) getColumns(tableName string) ([]columnRow, error) {
	rows, err := p.db.Query(postgresColumnsQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	defer rows.Close()

	var columns []columnRow
	for rows.Next() {
		var col columnRow
		var nullable string

		if err := rows.Scan(&col.name, &col.sqlType, &nullable); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}

		col.nullable = nullable == "YES"
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (p *Postgres) getIndexes(tableName string) ([]indexRow, error) {
	rows, err := p.db.Query(postgresIndexesQuery, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}
	defer rows.Close()

	var indexes []indexRow
	for rows.Next() {
		var idx indexRow

		if err := rows.Scan(&idx.name, &idx.column, &idx.unique, &idx.primary, &idx.method,
			&idx.keyColumns, &idx.expression, &idx.partial, &idx.constraint); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}

		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}
