package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koba/schema-diff/internal/schema"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"DB_TYPE", "DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfigFromEnv()
	require.EqualError(t, err, "DB_TYPE environment variable is required")

	t.Setenv("DB_TYPE", "PostgreSQL")
	_, err = LoadConfigFromEnv()
	require.EqualError(t, err, "DB_NAME environment variable is required")

	t.Setenv("DB_NAME", "app")
	t.Setenv("DB_USER", "koba")
	config, err := LoadConfigFromEnv()
	require.NoError(t, err)
	require.Equal(t, Config{Type: "PostgreSQL", Host: "localhost", Port: "5432", Database: "app", User: "koba"}, config)

	t.Setenv("DB_TYPE", "oracle")
	_, err = LoadConfigFromEnv()
	require.EqualError(t, err, "unsupported database type: oracle")
}

func TestLoadConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: mysql\ndatabase: shop\nuser: root\n"), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, Config{Type: "mysql", Host: "localhost", Port: "3306", Database: "shop", User: "root"}, config)

	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_PASSWORD", "secret")
	config, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "3307", config.Port)
	require.Equal(t, "secret", config.Password)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestNewDatabase(t *testing.T) {
	tests := []struct {
		typ     string
		dialect string
	}{
		{typ: "MySQL", dialect: DialectMySQL},
		{typ: "postgres", dialect: DialectPostgres},
		{typ: "PostgreSQL", dialect: DialectPostgres},
		{typ: "sqlite3", dialect: DialectSQLite},
	}
	for _, tt := range tests {
		db, err := NewDatabase(Config{Type: tt.typ})
		require.NoError(t, err)
		require.Equal(t, tt.dialect, db.Dialect())
	}

	_, err := NewDatabase(Config{Type: "mssql"})
	require.Error(t, err)
}

func TestMapSQLType(t *testing.T) {
	tests := []struct {
		raw    string
		expect schema.Optional[schema.Type]
	}{
		{raw: "varchar(255)", expect: schema.Specified(schema.TypeString)},
		{raw: "character varying", expect: schema.Specified(schema.TypeString)},
		{raw: "tinyint(1)", expect: schema.Specified(schema.TypeBool)},
		{raw: "tinyint(4)", expect: schema.Specified(schema.TypeByte)},
		{raw: "int(10) unsigned", expect: schema.Specified(schema.TypeInteger)},
		{raw: "INTEGER", expect: schema.Specified(schema.TypeInteger)},
		{raw: "bigint", expect: schema.Specified(schema.TypeLong)},
		{raw: "double precision", expect: schema.Specified(schema.TypeDouble)},
		{raw: "decimal(10,2)", expect: schema.Specified(schema.TypeDouble)},
		{raw: "timestamp with time zone", expect: schema.Specified(schema.TypeTimestamp)},
		{raw: "bytea", expect: schema.Specified(schema.TypeBlob)},
		{raw: "polygon", expect: schema.Specified(schema.TypeGeometry)},
		{raw: "interval", expect: schema.Unspecified[schema.Type]()},
		{raw: "", expect: schema.Unspecified[schema.Type]()},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expect, MapSQLType(tt.raw), tt.raw)
	}
}

func TestMapIndexMethod(t *testing.T) {
	kind, ok := MapIndexMethod("BTREE")
	require.True(t, ok)
	require.Equal(t, schema.IndexTree, kind)

	kind, ok = MapIndexMethod("gist")
	require.True(t, ok)
	require.Equal(t, schema.IndexSpatial, kind)

	_, ok = MapIndexMethod("FULLTEXT")
	require.False(t, ok)
}

func TestBuildTableSchema(t *testing.T) {
	table := buildTableSchema("users",
		[]columnRow{
			{name: "id", sqlType: "bigint", nullable: false},
			{name: "email", sqlType: "varchar(255)", nullable: false},
			{name: "age", sqlType: "int", nullable: true},
			{name: "period", sqlType: "interval", nullable: true},
		},
		[]indexRow{
			{name: "PRIMARY", column: "id", primary: true, method: "BTREE"},
			{name: "idx_email", column: "email", method: "BTREE"},
			{name: "idx_email_hash", column: "email", method: "HASH"},
			{name: "uq_email", column: "email", unique: true, method: "BTREE"},
			{name: "idx_age_email", column: "age", method: "BTREE"},
			{name: "idx_age_email", column: "email", method: "BTREE"},
			{name: "ft_email", column: "email", method: "FULLTEXT"},
			{name: "idx_lower_email", column: "", method: "BTREE"},
			{name: "idx_age_expr", column: "age", method: "BTREE", keyColumns: 2},
			{name: "idx_age_partial", column: "age", method: "BTREE", partial: true},
			{name: "users_email_key", column: "email", unique: true, method: "BTREE", constraint: true},
		},
	)

	require.Equal(t, "users", table.Name)
	require.Equal(t, []string{"id"}, table.PrimaryKey)
	require.Equal(t, []schema.ColumnInfo{
		schema.NewColumnInfo(schema.Specified("id"), schema.Specified(schema.TypeLong), schema.Specified(false), []schema.IndexType{}),
		schema.NewColumnInfo(schema.Specified("email"), schema.Specified(schema.TypeString), schema.Specified(false), []schema.IndexType{schema.IndexTree, schema.IndexHash}),
		schema.NewColumnInfo(schema.Specified("age"), schema.Specified(schema.TypeInteger), schema.Specified(true), []schema.IndexType{}),
		schema.NewColumnInfo(schema.Specified("period"), schema.Unspecified[schema.Type](), schema.Specified(true), []schema.IndexType{}),
	}, table.Columns)
	require.Equal(t, []schema.Index{
		{Name: "idx_email", Columns: []string{"email"}, Type: schema.IndexTree},
		{Name: "idx_email_hash", Columns: []string{"email"}, Type: schema.IndexHash},
		{Name: "uq_email", Columns: []string{"email"}, Unique: true, Type: schema.IndexTree},
		{Name: "idx_age_email", Columns: []string{"age", "email"}, Type: schema.IndexTree},
	}, table.Indexes)
}

func TestStoredIndexType(t *testing.T) {
	tests := []struct {
		dialect string
		kind    schema.IndexType
		stored  schema.IndexType
		ok      bool
	}{
		{dialect: "mysql", kind: schema.IndexDefault, stored: schema.IndexTree, ok: true},
		{dialect: "PostgreSQL", kind: schema.IndexDefault, stored: schema.IndexTree, ok: true},
		{dialect: "postgres", kind: schema.IndexHash, stored: schema.IndexHash, ok: true},
		{dialect: "mysql", kind: schema.IndexSpatial, stored: schema.IndexSpatial, ok: true},
		{dialect: "sqlite", kind: schema.IndexDefault, stored: schema.IndexTree, ok: true},
		{dialect: "sqlite", kind: schema.IndexTree, stored: schema.IndexTree, ok: true},
		{dialect: "sqlite", kind: schema.IndexHash, ok: false},
		{dialect: "sqlite3", kind: schema.IndexSpatial, ok: false},
		{dialect: "oracle", kind: schema.IndexHash, stored: schema.IndexHash, ok: true},
	}
	for _, tt := range tests {
		stored, ok := StoredIndexType(tt.dialect, tt.kind)
		require.Equal(t, tt.ok, ok, "%s %s", tt.dialect, tt.kind)
		if ok {
			require.Equal(t, tt.stored, stored, "%s %s", tt.dialect, tt.kind)
		}
	}
}
