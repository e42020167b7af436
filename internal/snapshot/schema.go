package snapshot

import "database/sql"

const (
	// SQLite schema for storing snapshots
	createMetadataTable = `
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`

	// schema_blob holds the snappy-compressed JSON of a schema.TableSchema
	createTableSchemasTable = `
		CREATE TABLE IF NOT EXISTS table_schemas (
			table_name TEXT PRIMARY KEY,
			schema_blob BLOB NOT NULL,
			fingerprint TEXT NOT NULL
		);
	`
)

// Metadata keys
const (
	MetaSnapshotID = "snapshot_id"
	MetaCreatedAt  = "created_at"
	MetaDBType     = "db_type"
	MetaDatabase   = "database"
)

// initializeSchema creates the necessary tables in the SQLite snapshot database
func initializeSchema(db *sql.DB) error {
	schemas := []string{
		createMetadataTable,
		createTableSchemasTable,
	}

	for _, schema := range schemas {
		if _, err := db.Exec(schema); err != nil {
			return err
		}
	}

	return nil
}
