package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/koba/schema-diff/internal/diff"
	"github.com/koba/schema-diff/internal/schema"
	"github.com/koba/schema-diff/internal/snapshot"
)

func col(name string, typ schema.Type, nullable bool, indexes ...schema.IndexType) schema.ColumnInfo {
	if indexes == nil {
		indexes = []schema.IndexType{}
	}
	return schema.NewColumnInfo(schema.Specified(name), schema.Specified(typ), schema.Specified(nullable), indexes)
}

func usersChange() *diff.DiffResult {
	old := &schema.TableSchema{
		Name: "users",
		Columns: []schema.ColumnInfo{
			col("id", schema.TypeLong, false),
			col("email", schema.TypeString, false, schema.IndexTree),
			col("age", schema.TypeInteger, true),
		},
		PrimaryKey: []string{"id"},
		Indexes:    []schema.Index{{Name: "users_email_idx", Columns: []string{"email"}, Type: schema.IndexTree}},
	}
	new := &schema.TableSchema{
		Name: "users",
		Columns: []schema.ColumnInfo{
			col("id", schema.TypeLong, false),
			col("email", schema.TypeString, true, schema.IndexHash),
			col("created", schema.TypeTimestamp, false),
		},
		PrimaryKey: []string{"id"},
	}
	return diff.Compare(snapshot.New(nil, old), snapshot.New(nil, new), diff.Options{})
}

func TestGenerateSQL_Postgres(t *testing.T) {
	sql := GenerateSQL(usersChange(), "PostgreSQL")
	require.Equal(t, strings.Join([]string{
		`DROP INDEX "users_email_idx";`,
		`ALTER TABLE "users" ALTER COLUMN "email" DROP NOT NULL;`,
		`ALTER TABLE "users" ADD COLUMN "created" TIMESTAMP NOT NULL;`,
		`ALTER TABLE "users" DROP COLUMN "age";`,
		`CREATE INDEX "idx_users_email_hash" ON "users" USING hash ("email");`,
	}, "\n"), sql)
}

func TestGenerateSQL_MySQL(t *testing.T) {
	sql := GenerateSQL(usersChange(), "mysql")
	require.Equal(t, strings.Join([]string{
		"DROP INDEX `users_email_idx` ON `users`;",
		"ALTER TABLE `users` MODIFY COLUMN `email` VARCHAR(255);",
		"ALTER TABLE `users` ADD COLUMN `created` TIMESTAMP NOT NULL;",
		"ALTER TABLE `users` DROP COLUMN `age`;",
		"CREATE INDEX `idx_users_email_hash` ON `users` (`email`) USING HASH;",
	}, "\n"), sql)
}

func TestGenerateSQL_SQLite(t *testing.T) {
	sql := GenerateSQL(usersChange(), "sqlite")
	require.Equal(t, strings.Join([]string{
		`DROP INDEX "users_email_idx";`,
		`-- SQLite cannot alter column email of users; rebuild the table`,
		`ALTER TABLE "users" ADD COLUMN "created" TIMESTAMP NOT NULL;`,
		`ALTER TABLE "users" DROP COLUMN "age";`,
		`CREATE INDEX "idx_users_email_hash" ON "users" ("email");`,
	}, "\n"), sql)
}

func TestGenerateSQL_CreateAndDrop(t *testing.T) {
	tags := &schema.TableSchema{
		Name: "tags",
		Columns: []schema.ColumnInfo{
			col("name", schema.TypeString, false, schema.IndexTree),
			schema.NewIndexedColumn(schema.Specified("note"), schema.Unspecified[schema.Type](), nil),
		},
		PrimaryKey: []string{"name"},
	}
	old := snapshot.New(nil, &schema.TableSchema{Name: "legacy", Columns: []schema.ColumnInfo{col("id", schema.TypeLong, false)}})
	result := diff.Compare(old, snapshot.New(nil, tags), diff.Options{})

	sql := GenerateSQL(result, "postgres")
	require.Equal(t, `DROP TABLE "legacy";

-- skipped column note: name or type unspecified
CREATE TABLE "tags" (
  "name" TEXT NOT NULL,
  PRIMARY KEY ("name")
);
CREATE INDEX "idx_tags_name_tree" ON "tags" USING btree ("name");`, sql)
}

func TestGenerateSQL_UnspecifiedHints(t *testing.T) {
	old := &schema.TableSchema{
		Name:    "geo",
		Columns: []schema.ColumnInfo{col("area", schema.TypeGeometry, true, schema.IndexSpatial)},
	}
	hints := &schema.TableSchema{
		Name: "geo",
		Columns: []schema.ColumnInfo{
			schema.NewColumnInfo(schema.Specified("area"), schema.Unspecified[schema.Type](), schema.Specified(false), nil),
			schema.NewIndexedColumn(schema.Specified("label"), schema.Unspecified[schema.Type](), []schema.IndexType{schema.IndexDefault}),
		},
	}
	result := diff.Compare(snapshot.New(nil, old), snapshot.New(nil, hints), diff.Options{Partial: true})

	sql := GenerateSQL(result, "mysql")
	require.Equal(t, strings.Join([]string{
		"ALTER TABLE `geo` MODIFY COLUMN `area` GEOMETRY NOT NULL;",
		"-- skipped ADD COLUMN label on geo: type unspecified",
	}, "\n"), sql)
}

func TestGenerateSQL_TableIndexes(t *testing.T) {
	old := &schema.TableSchema{
		Name: "orders",
		Columns: []schema.ColumnInfo{
			col("id", schema.TypeLong, false),
			col("user_id", schema.TypeLong, false),
			col("placed_at", schema.TypeTimestamp, true),
		},
		Indexes: []schema.Index{
			{Name: "orders_user_placed", Columns: []string{"user_id", "placed_at"}, Type: schema.IndexTree},
			{Name: "orders_legacy_uq", Columns: []string{"id", "user_id"}, Unique: true, Type: schema.IndexTree},
		},
	}
	new := &schema.TableSchema{
		Name:    "orders",
		Columns: old.Columns,
		Indexes: []schema.Index{
			{Name: "orders_user_placed", Columns: []string{"placed_at", "user_id"}, Type: schema.IndexTree},
			{Name: "orders_user_uq", Columns: []string{"user_id", "placed_at"}, Unique: true, Type: schema.IndexHash},
		},
	}
	result := diff.Compare(snapshot.New(nil, old), snapshot.New(nil, new), diff.Options{})

	require.Equal(t, strings.Join([]string{
		"DROP INDEX `orders_user_placed` ON `orders`;",
		"DROP INDEX `orders_legacy_uq` ON `orders`;",
		"CREATE INDEX `orders_user_placed` ON `orders` (`placed_at`, `user_id`) USING BTREE;",
		"CREATE UNIQUE INDEX `orders_user_uq` ON `orders` (`user_id`, `placed_at`) USING HASH;",
	}, "\n"), GenerateSQL(result, "mysql"))

	require.Equal(t, strings.Join([]string{
		`DROP INDEX "orders_user_placed";`,
		`DROP INDEX "orders_legacy_uq";`,
		`CREATE INDEX "orders_user_placed" ON "orders" USING btree ("placed_at", "user_id");`,
		`CREATE UNIQUE INDEX "orders_user_uq" ON "orders" USING hash ("user_id", "placed_at");`,
	}, "\n"), GenerateSQL(result, "postgres"))

	require.Equal(t, strings.Join([]string{
		`DROP INDEX "orders_user_placed";`,
		`DROP INDEX "orders_legacy_uq";`,
		`CREATE INDEX "orders_user_placed" ON "orders" ("placed_at", "user_id");`,
		`-- skipped index orders_user_uq on orders: sqlite cannot create HASH indexes`,
	}, "\n"), GenerateSQL(result, "sqlite"))
}

func TestGenerateSQL_CreateTableIndexes(t *testing.T) {
	orders := &schema.TableSchema{
		Name: "orders",
		Columns: []schema.ColumnInfo{
			col("id", schema.TypeLong, false),
			col("user_id", schema.TypeLong, false, schema.IndexHash, schema.IndexDefault),
			schema.NewColumn(schema.Specified("placed_at"), schema.Unspecified[schema.Type]()),
		},
		Indexes: []schema.Index{
			{Name: "orders_id_user_uq", Columns: []string{"id", "user_id"}, Unique: true, Type: schema.IndexTree},
			{Name: "orders_user_placed", Columns: []string{"user_id", "placed_at"}, Type: schema.IndexTree},
		},
	}
	result := diff.Compare(snapshot.New(nil), snapshot.New(nil, orders), diff.Options{})

	require.Equal(t, `-- skipped column placed_at: name or type unspecified
CREATE TABLE "orders" (
  "id" INTEGER NOT NULL,
  "user_id" INTEGER NOT NULL
);
-- skipped index idx_orders_user_id_hash on orders: sqlite cannot create HASH indexes
CREATE INDEX "idx_orders_user_id_default" ON "orders" ("user_id");
CREATE UNIQUE INDEX "orders_id_user_uq" ON "orders" ("id", "user_id");
-- skipped index orders_user_placed on orders: column placed_at is not created`, GenerateSQL(result, "sqlite"))
}

func TestGenerateSQL_NoCreatableColumn(t *testing.T) {
	hints := &schema.TableSchema{
		Name: "notes",
		Columns: []schema.ColumnInfo{
			schema.NewIndexedColumn(schema.Specified("body"), schema.Unspecified[schema.Type](), []schema.IndexType{schema.IndexTree}),
		},
		PrimaryKey: []string{"body"},
	}
	result := diff.Compare(snapshot.New(nil), snapshot.New(nil, hints), diff.Options{Partial: true})

	require.Equal(t, `-- skipped column body: name or type unspecified
-- skipped CREATE TABLE notes: no column has both a name and a type`, GenerateSQL(result, "postgres"))
}

func TestGenerateSQL_PrimaryKeyStaysNotNull(t *testing.T) {
	old := &schema.TableSchema{
		Name:       "users",
		Columns:    []schema.ColumnInfo{col("id", schema.TypeInteger, false)},
		PrimaryKey: []string{"id"},
	}
	hints := &schema.TableSchema{
		Name: "users",
		Columns: []schema.ColumnInfo{
			schema.NewColumnInfo(schema.Specified("id"), schema.Unspecified[schema.Type](), schema.Specified(true), nil),
		},
	}
	result := diff.Compare(snapshot.New(nil, old), snapshot.New(nil, hints), diff.Options{Partial: true})
	require.Equal(t, "-- column id of users is part of the primary key and stays NOT NULL", GenerateSQL(result, "postgres"))

	widened := &schema.TableSchema{
		Name:    "users",
		Columns: []schema.ColumnInfo{schema.NewColumnInfo(schema.Specified("id"), schema.Specified(schema.TypeLong), schema.Specified(true), nil)},
	}
	result = diff.Compare(snapshot.New(nil, old), snapshot.New(nil, widened), diff.Options{Partial: true})
	require.Equal(t, strings.Join([]string{
		"-- column id of users is part of the primary key and stays NOT NULL",
		"ALTER TABLE `users` MODIFY COLUMN `id` BIGINT NOT NULL;",
	}, "\n"), GenerateSQL(result, "mysql"))
}

func TestIndexName(t *testing.T) {
	require.Equal(t, "idx_users_email_tree", IndexName("users", "email", schema.IndexTree))
	require.Equal(t, "idx_geo_area_spatial", IndexName("geo", "area", schema.IndexSpatial))
}
