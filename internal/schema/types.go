package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidType is returned when a name does not denote a known column type.
	ErrInvalidType = errors.New("invalid column type")

	// ErrInvalidIndexType is returned when a name does not denote a known index type.
	ErrInvalidIndexType = errors.New("invalid index type")

	// ErrUnsupportedModification is returned by every mutating method of IndexTypeSet.
	ErrUnsupportedModification = errors.New("unsupported modification of read-only index type set")
)

// Type is the value type of a column.
type Type uint8

const (
	TypeString Type = iota + 1
	TypeBool
	TypeByte
	TypeShort
	TypeInteger
	TypeLong
	TypeFloat
	TypeDouble
	TypeTimestamp
	TypeGeometry
	TypeBlob
)

var typeNames = map[Type]string{
	TypeString:    "STRING",
	TypeBool:      "BOOL",
	TypeByte:      "BYTE",
	TypeShort:     "SHORT",
	TypeInteger:   "INTEGER",
	TypeLong:      "LONG",
	TypeFloat:     "FLOAT",
	TypeDouble:    "DOUBLE",
	TypeTimestamp: "TIMESTAMP",
	TypeGeometry:  "GEOMETRY",
	TypeBlob:      "BLOB",
}

// ParseType returns the Type named s, case-insensitively.
func ParseType(s string) (Type, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// IsValid reports whether t is one of the declared types.
func (t Type) IsValid() bool {
	_, ok := typeNames[t]
	return ok
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidType, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(text []byte) error {
	v, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// IndexType is a strategy by which column values may be indexed.
type IndexType uint8

const (
	IndexTree IndexType = 1 << iota
	IndexHash
	IndexSpatial
	IndexDefault
)

// indexTypes lists the declared index types in canonical order.
var indexTypes = []IndexType{IndexTree, IndexHash, IndexSpatial, IndexDefault}

func (t IndexType) name() (string, bool) {
	switch t {
	case IndexTree:
		return "TREE", true
	case IndexHash:
		return "HASH", true
	case IndexSpatial:
		return "SPATIAL", true
	case IndexDefault:
		return "DEFAULT", true
	}
	return "", false
}

// ParseIndexType returns the IndexType named s, case-insensitively.
func ParseIndexType(s string) (IndexType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range indexTypes {
		if n, _ := t.name(); n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidIndexType, s)
}

// IsValid reports whether t is one of the declared index types.
func (t IndexType) IsValid() bool {
	_, ok := t.name()
	return ok
}

func (t IndexType) String() string {
	if n, ok := t.name(); ok {
		return n
	}
	return fmt.Sprintf("IndexType(%#x)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler.
func (t IndexType) MarshalText() ([]byte, error) {
	n, ok := t.name()
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidIndexType, uint8(t))
	}
	return []byte(n), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *IndexType) UnmarshalText(text []byte) error {
	v, err := ParseIndexType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
