package database

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/koba/schema-diff/internal/schema"
)

const sqliteTablesQuery = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"

// SQLite implements the Database interface for SQLite files
type SQLite struct {
	config Config
	db     *sql.DB
}

// NewSQLite creates a new SQLite database connection. config.Database is the
// path of the database file.
func NewSQLite(config Config) *SQLite {
	return &SQLite{config: config}
}

// Connect opens the SQLite file
func (s *SQLite) Connect() error {
	db, err := sql.Open("sqlite", s.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping SQLite: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the SQLite database
func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Dialect returns DialectSQLite
func (s *SQLite) Dialect() string {
	return DialectSQLite
}

// GetAllTables retrieves all user table names
func (s *SQLite) GetAllTables() ([]string, error) {
	rows, err := s.db.Query(sqliteTablesQuery)
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
func (s *SQLite) GetTableSchema(tableName string) (*schema.TableSchema, error) {
	columns, primary, err := s.getColumns(tableName)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s not found", tableName)
	}

	indexes, err := s.getIndexes(tableName)
	if err != nil {
		return nil, err
	}

	return buildTableSchema(tableName, columns, append(primary, indexes...)), nil
}

func (s *SQLite) getColumns(tableName string) ([]columnRow, []indexRow, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", quoteSQLite(tableName)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get columns: %w", err)
	}
	defer rows.Close()

	type pkColumn struct {
		name string
		seq  int
	}

	var columns []columnRow
	var pks []pkColumn
	for rows.Next() {
		var (
			cid          int
			col          columnRow
			notNull, pk  int
			defaultValue sql.NullString
		)

		if err := rows.Scan(&cid, &col.name, &col.sqlType, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, fmt.Errorf("failed to scan column: %w", err)
		}

		col.nullable = notNull == 0 && pk == 0
		if pk > 0 {
			pks = append(pks, pkColumn{name: col.name, seq: pk})
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(pks, func(i, j int) bool { return pks[i].seq < pks[j].seq })
	var primary []indexRow
	for _, pk := range pks {
		primary = append(primary, indexRow{name: "PRIMARY", column: pk.name, primary: true})
	}

	return columns, primary, nil
}

func (s *SQLite) getIndexes(tableName string) ([]indexRow, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA index_list(%s)", quoteSQLite(tableName)))
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}

	type indexHeader struct {
		name       string
		unique     bool
		partial    bool
		constraint bool
	}

	var headers []indexHeader
	for rows.Next() {
		var (
			seq, unique, partial int
			name, origin         string
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		// Primary keys are read from table_info
		if origin == "pk" {
			continue
		}
		headers = append(headers, indexHeader{
			name:       name,
			unique:     unique != 0,
			partial:    partial != 0,
			constraint: origin == "u",
		})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var indexes []indexRow
	for _, h := range headers {
		infoRows, err := s.db.Query(fmt.Sprintf("PRAGMA index_info(%s)", quoteSQLite(h.name)))
		if err != nil {
			return nil, fmt.Errorf("failed to get index columns: %w", err)
		}

		for infoRows.Next() {
			var seqno, cid int
			var column sql.NullString
			if err := infoRows.Scan(&seqno, &cid, &column); err != nil {
				infoRows.Close()
				return nil, fmt.Errorf("failed to scan index column: %w", err)
			}
			indexes = append(indexes, indexRow{
				name:       h.name,
				column:     column.String,
				unique:     h.unique,
				method:     "btree",
				expression: !column.Valid,
				partial:    h.partial,
				constraint: h.constraint,
			})
		}
		infoRows.Close()
		if err := infoRows.Err(); err != nil {
			return nil, err
		}
	}

	return indexes, nil
}

func quoteSQLite(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
