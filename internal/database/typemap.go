package database

import (
	"strings"

	"github.com/koba/schema-diff/internal/schema"
)

// MapSQLType maps a column type as reported by the server to a schema type.
// The result is unspecified when the type has no counterpart.
func MapSQLType(raw string) schema.Optional[schema.Type] {
	t := strings.ToLower(strings.TrimSpace(raw))

	// MySQL reports booleans as tinyint(1)
	if t == "tinyint(1)" {
		return schema.Specified(schema.TypeBool)
	}

	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	t = strings.TrimSuffix(t, " unsigned")

	switch t {
	case "char", "character", "varchar", "character varying", "text", "tinytext", "mediumtext",
		"longtext", "nchar", "nvarchar", "clob", "uuid", "json", "jsonb", "enum", "set":
		return schema.Specified(schema.TypeString)
	case "bool", "boolean":
		return schema.Specified(schema.TypeBool)
	case "tinyint":
		return schema.Specified(schema.TypeByte)
	case "smallint", "int2":
		return schema.Specified(schema.TypeShort)
	case "int", "integer", "mediumint", "int4", "serial":
		return schema.Specified(schema.TypeInteger)
	case "bigint", "int8", "bigserial":
		return schema.Specified(schema.TypeLong)
	case "float", "real", "float4":
		return schema.Specified(schema.TypeFloat)
	case "double", "double precision", "float8", "numeric", "decimal":
		return schema.Specified(schema.TypeDouble)
	case "date", "datetime", "timestamp", "timestamp without time zone", "timestamp with time zone", "timestamptz":
		return schema.Specified(schema.TypeTimestamp)
	case "geometry", "point", "linestring", "polygon", "multipoint", "multilinestring", "multipolygon", "geometrycollection":
		return schema.Specified(schema.TypeGeometry)
	case "blob", "tinyblob", "mediumblob", "longblob", "binary", "varbinary", "bytea":
		return schema.Specified(schema.TypeBlob)
	}
	return schema.Unspecified[schema.Type]()
}

// MapIndexMethod maps an index method (MySQL INDEX_TYPE, PostgreSQL access
// method) to an index type.
func MapIndexMethod(raw string) (schema.IndexType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "btree":
		return schema.IndexTree, true
	case "hash":
		return schema.IndexHash, true
	case "spatial", "rtree", "gist", "spgist":
		return schema.IndexSpatial, true
	}
	return 0, false
}

// StoredIndexType returns the index type the dialect reports back for an
// index created as kind. DEFAULT indexes are stored with the server's
// default method, which is a tree on every supported dialect. It fails when
// the dialect cannot create kind at all. Unknown dialects are treated as
// MySQL.
func StoredIndexType(dialect string, kind schema.IndexType) (schema.IndexType, bool) {
	dialect, err := NormalizeDialect(dialect)
	if err != nil {
		dialect = DialectMySQL
	}

	switch kind {
	case schema.IndexTree, schema.IndexDefault:
		return schema.IndexTree, true
	case schema.IndexHash, schema.IndexSpatial:
		// SQLite only has b-tree indexes
		return kind, dialect != DialectSQLite
	}
	return 0, false
}
