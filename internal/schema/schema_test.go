package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ordersTable() *TableSchema {
	return &TableSchema{
		Name: "orders",
		Columns: []ColumnInfo{
			NewColumnInfo(Specified("id"), Specified(TypeLong), Specified(false), []IndexType{}),
			NewColumnInfo(Specified("user_id"), Specified(TypeLong), Specified(false), []IndexType{IndexHash}),
			NewColumnInfo(Specified("placed_at"), Specified(TypeTimestamp), Specified(true), []IndexType{}),
		},
		PrimaryKey: []string{"id"},
		Indexes: []Index{
			{Name: "orders_user_id_hash", Columns: []string{"user_id"}, Type: IndexHash},
			{Name: "orders_user_placed", Columns: []string{"user_id", "placed_at"}, Type: IndexTree},
			{Name: "orders_user_uq", Columns: []string{"user_id"}, Unique: true, Type: IndexTree},
		},
	}
}

func TestTableSchema_Indexes(t *testing.T) {
	table := ordersTable()

	name, ok := table.IndexName("user_id", IndexHash)
	require.True(t, ok)
	require.Equal(t, "orders_user_id_hash", name)

	// Unique single-column indexes are not column level
	_, ok = table.IndexName("user_id", IndexTree)
	require.False(t, ok)

	tableLevel := table.TableIndexes()
	require.Len(t, tableLevel, 2)
	require.Equal(t, "orders_user_placed", tableLevel[0].Name)
	require.Equal(t, "orders_user_uq", tableLevel[1].Name)

	require.True(t, tableLevel[0].Equal(Index{Name: "orders_user_placed", Columns: []string{"user_id", "placed_at"}, Type: IndexTree}))
	require.False(t, tableLevel[0].Equal(Index{Name: "orders_user_placed", Columns: []string{"placed_at", "user_id"}, Type: IndexTree}))
}

func TestTableSchema_IsPrimaryKey(t *testing.T) {
	table := ordersTable()
	require.True(t, table.IsPrimaryKey("id"))
	require.False(t, table.IsPrimaryKey("user_id"))
}

func TestTableSchema_String(t *testing.T) {
	require.Equal(t, `Table: orders
  ColumnInfo{name=id, type=LONG, nullable=false, indexTypes=[]}
  ColumnInfo{name=user_id, type=LONG, nullable=false, indexTypes=[HASH]}
  ColumnInfo{name=placed_at, type=TIMESTAMP, nullable=true, indexTypes=[]}
  PRIMARY KEY (id)
  INDEX orders_user_placed (user_id, placed_at) TREE
  UNIQUE INDEX orders_user_uq (user_id) TREE
`, ordersTable().String())
}
