package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"
	_ "modernc.org/sqlite"

	"github.com/koba/schema-diff/internal/database"
	"github.com/koba/schema-diff/internal/schema"
)

// Snapshot represents the schema of a set of tables at one point in time
type Snapshot struct {
	Metadata map[string]string
	Tables   map[string]*schema.TableSchema

	// Fingerprints maps table names to the fingerprint of their schema.
	// Tables without an entry are always compared column by column.
	Fingerprints map[string]string
}

// New returns a snapshot holding the given tables
func New(metadata map[string]string, tables ...*schema.TableSchema) *Snapshot {
	snap := &Snapshot{
		Metadata:     make(map[string]string),
		Tables:       make(map[string]*schema.TableSchema),
		Fingerprints: make(map[string]string),
	}
	for k, v := range metadata {
		snap.Metadata[k] = v
	}
	for _, t := range tables {
		snap.Tables[t.Name] = t
	}
	return snap
}

// Fingerprint returns a stable hash of a table schema
func Fingerprint(table *schema.TableSchema) (string, error) {
	data, err := json.Marshal(table)
	if err != nil {
		return "", fmt.Errorf("failed to marshal schema: %w", err)
	}
	return fingerprintBytes(data), nil
}

func fingerprintBytes(data []byte) string {
	return fmt.Sprintf("%016x", murmur3.Sum64(data))
}

// CreateSnapshot introspects the database and writes a snapshot to outputPath.
// All tables are included when tables is empty.
func CreateSnapshot(db database.Database, tables []string, outputPath string, metadata map[string]string) error {
	var err error

	// Get all tables if not specified
	if len(tables) == 0 {
		tables, err = db.GetAllTables()
		if err != nil {
			return fmt.Errorf("failed to get all tables: %w", err)
		}
	}

	snap := New(metadata)
	snap.Metadata[MetaDBType] = db.Dialect()
	for _, tableName := range tables {
		tableSchema, err := db.GetTableSchema(tableName)
		if err != nil {
			return fmt.Errorf("failed to snapshot table %s: %w", tableName, err)
		}
		snap.Tables[tableName] = tableSchema
	}

	return Save(snap, outputPath)
}

// Save writes the snapshot to a SQLite file, replacing any existing file.
// A snapshot id and creation time are added to the metadata when missing.
func Save(snap *Snapshot, outputPath string) error {
	// Ensure output directory exists
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Remove existing snapshot file if it exists
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			return fmt.Errorf("failed to remove existing snapshot: %w", err)
		}
	}

	snapshotDB, err := sql.Open("sqlite", outputPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot database: %w", err)
	}
	defer snapshotDB.Close()

	if err := initializeSchema(snapshotDB); err != nil {
		return fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	if snap.Metadata == nil {
		snap.Metadata = make(map[string]string)
	}
	if snap.Fingerprints == nil {
		snap.Fingerprints = make(map[string]string)
	}
	if _, ok := snap.Metadata[MetaSnapshotID]; !ok {
		snap.Metadata[MetaSnapshotID] = uuid.New().String()
	}
	if _, ok := snap.Metadata[MetaCreatedAt]; !ok {
		snap.Metadata[MetaCreatedAt] = time.Now().Format(time.RFC3339)
	}

	tx, err := snapshotDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range snap.Metadata {
		if _, err := tx.Exec("INSERT INTO metadata (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("failed to insert metadata: %w", err)
		}
	}

	stmt, err := tx.Prepare("INSERT INTO table_schemas (table_name, schema_blob, fingerprint) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for tableName, tableSchema := range snap.Tables {
		schemaJSON, err := json.Marshal(tableSchema)
		if err != nil {
			return fmt.Errorf("failed to marshal schema of %s: %w", tableName, err)
		}

		fingerprint := fingerprintBytes(schemaJSON)
		if _, err := stmt.Exec(tableName, snappy.Encode(nil, schemaJSON), fingerprint); err != nil {
			return fmt.Errorf("failed to insert schema of %s: %w", tableName, err)
		}
		snap.Fingerprints[tableName] = fingerprint
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LoadSnapshot loads a snapshot from a SQLite file
func LoadSnapshot(snapshotPath string) (*Snapshot, error) {
	// Check if file exists
	if _, err := os.Stat(snapshotPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("snapshot file does not exist: %s", snapshotPath)
	}

	db, err := sql.Open("sqlite", snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer db.Close()

	snap := New(nil)

	// Load metadata
	rows, err := db.Query("SELECT key, value FROM metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		snap.Metadata[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}
	rows.Close()

	// Load table schemas
	schemaRows, err := db.Query("SELECT table_name, schema_blob, fingerprint FROM table_schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to query table schemas: %w", err)
	}
	defer schemaRows.Close()

	for schemaRows.Next() {
		var tableName, fingerprint string
		var blob []byte
		if err := schemaRows.Scan(&tableName, &blob, &fingerprint); err != nil {
			return nil, fmt.Errorf("failed to scan table schema: %w", err)
		}

		schemaJSON, err := snappy.Decode(nil, blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress schema of %s: %w", tableName, err)
		}
		if fingerprintBytes(schemaJSON) != fingerprint {
			return nil, fmt.Errorf("schema of %s does not match its fingerprint", tableName)
		}

		var tableSchema schema.TableSchema
		if err := json.Unmarshal(schemaJSON, &tableSchema); err != nil {
			return nil, fmt.Errorf("failed to unmarshal schema of %s: %w", tableName, err)
		}

		snap.Tables[tableName] = &tableSchema
		snap.Fingerprints[tableName] = fingerprint
	}

	return snap, schemaRows.Err()
}
