package utils

import (
	"bytes"
	"encoding/json"
)

// Optional is a PATCH field that distinguishes three states:
// absent (Set == false), explicit null (Set && Null) and a value (Set && !Null).
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null returns an Optional that was explicitly set to null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON is only invoked by encoding/json when the key is present.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// HasValue reports whether a non-null value was supplied.
func (o Optional[T]) HasValue() bool {
	return o.Set && !o.Null
}

// Merge writes the patch into dst: a value overwrites, null resets dst to the zero value,
// absent leaves dst untouched. It reports whether dst was touched.
func (o Optional[T]) Merge(dst *T) bool {
	if !o.Set {
		return false
	}
	if o.Null {
		var zero T
		*dst = zero
		return true
	}
	*dst = o.Value
	return true
}
