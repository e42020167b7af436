// Package schema describes the columns and tables that schemadiff inspects,
// stores and compares.
//
// Every attribute of a ColumnInfo may be unspecified. For the index types an
// unspecified set and an empty set mean different things: the former makes no
// statement about indexing, the latter states that the column has no index.
package schema

import "fmt"

// ColumnInfo describes a single column: its name, value type, NOT NULL state
// and the set of index types applied to it.
//
// A ColumnInfo never changes after construction and is safe for concurrent
// use. It does not check that its attributes are consistent with each other,
// e.g. that an index type is supported for the column type.
type ColumnInfo struct {
	name       Optional[string]
	typ        Optional[Type]
	nullable   Optional[bool]
	indexTypes Optional[IndexTypeSet]
}

// NewColumn returns a column with the given name and type. Nullability and
// index types are unspecified.
func NewColumn(name Optional[string], typ Optional[Type]) ColumnInfo {
	return NewIndexedColumn(name, typ, nil)
}

// NewIndexedColumn returns a column with the given name, type and index
// types. Nullability is unspecified.
func NewIndexedColumn(name Optional[string], typ Optional[Type], indexTypes []IndexType) ColumnInfo {
	return NewColumnInfo(name, typ, Unspecified[bool](), indexTypes)
}

// NewColumnInfo returns a column with every attribute given.
//
// A nil indexTypes leaves the index types unspecified. An empty, non-nil
// slice specifies that the column has no index. Otherwise the distinct
// members of indexTypes are copied; later changes to the slice are not seen.
func NewColumnInfo(name Optional[string], typ Optional[Type], nullable Optional[bool], indexTypes []IndexType) ColumnInfo {
	c := ColumnInfo{
		name:     name,
		typ:      typ,
		nullable: nullable,
	}
	switch {
	case indexTypes == nil:
	case len(indexTypes) == 0:
		c.indexTypes = Specified(IndexTypeSet{})
	default:
		c.indexTypes = Specified(NewIndexTypeSet(indexTypes...))
	}
	return c
}

// Name returns the column name.
func (c ColumnInfo) Name() Optional[string] { return c.name }

// Type returns the column value type.
func (c ColumnInfo) Type() Optional[Type] { return c.typ }

// Nullable returns true if no NOT NULL constraint is set, false if it is set.
func (c ColumnInfo) Nullable() Optional[bool] { return c.nullable }

// IndexTypes returns the set of index types. The set is read-only.
func (c ColumnInfo) IndexTypes() Optional[IndexTypeSet] { return c.indexTypes }

// Equal reports whether c and o describe the same column.
func (c ColumnInfo) Equal(o ColumnInfo) bool {
	return c == o
}

// WithDefaults returns a column where each unspecified attribute of c is
// taken from defaults.
func (c ColumnInfo) WithDefaults(defaults ColumnInfo) ColumnInfo {
	return ColumnInfo{
		name:       c.name.Or(defaults.name),
		typ:        c.typ.Or(defaults.typ),
		nullable:   c.nullable.Or(defaults.nullable),
		indexTypes: c.indexTypes.Or(defaults.indexTypes),
	}
}

// IsComplete reports whether every attribute is specified.
func (c ColumnInfo) IsComplete() bool {
	return c.name.IsSpecified() && c.typ.IsSpecified() &&
		c.nullable.IsSpecified() && c.indexTypes.IsSpecified()
}

func (c ColumnInfo) String() string {
	return fmt.Sprintf("ColumnInfo{name=%s, type=%s, nullable=%s, indexTypes=%s}",
		c.name, c.typ, c.nullable, c.indexTypes)
}
