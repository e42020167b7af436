package schema

import (
	"fmt"
	"strings"
)

// Index represents a database index. Single-column, non-unique indexes are
// also described by their column's index types; all others belong to the
// table.
type Index struct {
	Name    string    `json:"name"`
	Columns []string  `json:"columns"`
	Unique  bool      `json:"unique,omitempty"`
	Type    IndexType `json:"type"`
}

// ColumnLevel reports whether the index is one of its column's index types
func (i Index) ColumnLevel() bool {
	return !i.Unique && len(i.Columns) == 1
}

// Equal reports whether both indexes cover the same columns the same way
func (i Index) Equal(o Index) bool {
	if i.Name != o.Name || i.Unique != o.Unique || i.Type != o.Type || len(i.Columns) != len(o.Columns) {
		return false
	}
	for j := range i.Columns {
		if i.Columns[j] != o.Columns[j] {
			return false
		}
	}
	return true
}

// TableSchema represents a table as a list of column descriptions
type TableSchema struct {
	Name       string       `json:"name"`
	Columns    []ColumnInfo `json:"columns"`
	PrimaryKey []string     `json:"primary_key,omitempty"`
	Indexes    []Index      `json:"indexes,omitempty"`
}

// Column returns the column with the given name
func (t *TableSchema) Column(name string) (ColumnInfo, bool) {
	for _, c := range t.Columns {
		if n, ok := c.Name().Get(); ok && n == name {
			return c, true
		}
	}
	return ColumnInfo{}, false
}

// IndexName returns the recorded name of the index of the given type on column
func (t *TableSchema) IndexName(column string, typ IndexType) (string, bool) {
	for _, idx := range t.Indexes {
		if idx.ColumnLevel() && idx.Columns[0] == column && idx.Type == typ {
			return idx.Name, true
		}
	}
	return "", false
}

// TableIndexes returns the indexes that are not column level, in order
func (t *TableSchema) TableIndexes() []Index {
	var out []Index
	for _, idx := range t.Indexes {
		if !idx.ColumnLevel() {
			out = append(out, idx)
		}
	}
	return out
}

// IsPrimaryKey reports whether column is part of the primary key
func (t *TableSchema) IsPrimaryKey(column string) bool {
	for _, c := range t.PrimaryKey {
		if c == column {
			return true
		}
	}
	return false
}

func (t *TableSchema) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n", t.Name)
	for _, c := range t.Columns {
		fmt.Fprintf(&b, "  %s\n", c)
	}
	if len(t.PrimaryKey) > 0 {
		fmt.Fprintf(&b, "  PRIMARY KEY (%s)\n", strings.Join(t.PrimaryKey, ", "))
	}
	for _, idx := range t.TableIndexes() {
		unique := ""
		if idx.Unique {
			unique = "UNIQUE "
		}
		fmt.Fprintf(&b, "  %sINDEX %s (%s) %s\n", unique, idx.Name, strings.Join(idx.Columns, ", "), idx.Type)
	}
	return b.String()
}
