package schema

import (
	"math/bits"
	"strings"
)

// IndexTypeSet is a read-only set of index types.
//
// The set is a plain value: copying it yields an independent set, and no
// method changes its contents. Add, Remove and Clear exist for callers that
// expect a mutable set; they always return ErrUnsupportedModification.
type IndexTypeSet struct {
	bits uint8
}

// NewIndexTypeSet returns the set of distinct types. Values that are not
// declared index types, including combinations of flags, are ignored.
func NewIndexTypeSet(types ...IndexType) IndexTypeSet {
	var s IndexTypeSet
	for _, t := range types {
		if t.IsValid() {
			s.bits |= uint8(t)
		}
	}
	return s
}

// Contains reports whether t is a member of the set.
func (s IndexTypeSet) Contains(t IndexType) bool {
	return t != 0 && s.bits&uint8(t) == uint8(t)
}

// Len returns the number of members.
func (s IndexTypeSet) Len() int {
	return bits.OnesCount8(s.bits)
}

// IsEmpty reports whether the set has no members.
func (s IndexTypeSet) IsEmpty() bool {
	return s.bits == 0
}

// Slice returns the members in canonical order. The returned slice is owned
// by the caller.
func (s IndexTypeSet) Slice() []IndexType {
	out := make([]IndexType, 0, s.Len())
	for i := 0; i < 8; i++ {
		if t := IndexType(1 << i); s.bits&uint8(t) != 0 {
			out = append(out, t)
		}
	}
	return out
}

// Equal reports whether both sets have the same members.
func (s IndexTypeSet) Equal(o IndexTypeSet) bool {
	return s.bits == o.bits
}

// Difference returns a new set holding the members of s that are not in o.
func (s IndexTypeSet) Difference(o IndexTypeSet) IndexTypeSet {
	return IndexTypeSet{bits: s.bits &^ o.bits}
}

// Add always fails: the set is read-only.
func (s IndexTypeSet) Add(IndexType) error {
	return ErrUnsupportedModification
}

// Remove always fails: the set is read-only.
func (s IndexTypeSet) Remove(IndexType) error {
	return ErrUnsupportedModification
}

// Clear always fails: the set is read-only.
func (s IndexTypeSet) Clear() error {
	return ErrUnsupportedModification
}

func (s IndexTypeSet) String() string {
	members := s.Slice()
	names := make([]string, len(members))
	for i, t := range members {
		names[i] = t.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}
