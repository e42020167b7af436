package database

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/koba/schema-diff/internal/schema"
)

const (
	mysqlTablesQuery = "SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME"

	mysqlColumnsQuery = `
		SELECT
			COLUMN_NAME,
			COLUMN_TYPE,
			IS_NULLABLE
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`

	mysqlIndexesQuery = `
		SELECT
			INDEX_NAME,
			COLUMN_NAME,
			NON_UNIQUE,
			INDEX_TYPE
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX
	`
)

// MySQL implements the Database interface for MySQL
type MySQL struct {
	config Config
	db     *sql.DB
}

// NewMySQL creates a new MySQL database connection
func NewMySQL(config Config) *MySQL {
	return &MySQL{config: config}
}

// Connect establishes a connection to MySQL
func (m *MySQL) Connect() error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		m.config.User,
		m.config.Password,
		m.config.Host,
		m.config.Port,
		m.config.Database,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping MySQL: %w", err)
	}

	m.db = db
	return nil
}

// Close closes the MySQL connection
func (m *MySQL) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

// Dialect returns DialectMySQL
func (m *MySQL) Dialect() string {
	return DialectMySQL
}

// GetAllTables retrieves all table names in the database
func (m *MySQL) GetAllTables() ([]string, error) {
	rows, err := m.db.Query(mysqlTablesQuery, m.config.Database)
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
func (m *MySQL) GetTableSchema(tableName string) (*schema.TableSchema, error) {
	columns, err := m.getColumns(tableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", tableName)
	}

	indexes, err := m.getIndexes(tableName)
	if err != nil {
		return nil, err
	}

	return buildTableSchema(tableName, columns, indexes), nil
}

func (m *MySQL) getColumns(tableName string) ([]columnRow, error) {
	rows, err := m.db.Query(mysqlColumnsQuery, m.config.Database, tableName)
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

func (m *MySQL) getIndexes(tableName string) ([]indexRow, error) {
	rows, err := m.db.Query(mysqlIndexesQuery, m.config.Database, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}
	defer rows.Close()

	var indexes []indexRow
	for rows.Next() {
		var idx indexRow
		var column sql.NullString
		var nonUnique int

		if err := rows.Scan(&idx.name, &column, &nonUnique, &idx.method); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}

		// Functional key parts have no column name
		idx.column = column.String
		idx.expression = !column.Valid
		idx.unique = nonUnique == 0
		idx.primary = idx.name == "PRIMARY"
		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}
