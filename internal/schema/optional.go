package schema

import "fmt"

// Optional holds a value that may be unspecified. The zero value is unspecified.
type Optional[T any] struct {
	value T
	ok    bool
}

// Specified returns an Optional holding v.
func Specified[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// Unspecified returns an Optional holding no value.
func Unspecified[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr returns Unspecified for nil, otherwise Specified(*p).
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return Unspecified[T]()
	}
	return Specified(*p)
}

// Get returns the value and whether it was specified.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// IsSpecified reports whether a value is present.
func (o Optional[T]) IsSpecified() bool {
	return o.ok
}

// OrElse returns the value, or def if unspecified.
func (o Optional[T]) OrElse(def T) T {
	if o.ok {
		return o.value
	}
	return def
}

// Or returns o if specified, otherwise other.
func (o Optional[T]) Or(other Optional[T]) Optional[T] {
	if o.ok {
		return o
	}
	return other
}

// Ptr returns a pointer to a copy of the value, or nil if unspecified.
func (o Optional[T]) Ptr() *T {
	if !o.ok {
		return nil
	}
	v := o.value
	return &v
}

func (o Optional[T]) String() string {
	if !o.ok {
		return "<unspecified>"
	}
	return fmt.Sprint(o.value)
}
