package model

import (
	"bytes"
	"encoding/json"
)

// Optional is a request field that can be absent, null or a value.
// A plain pointer cannot tell the first two apart; encoding/json leaves it
// nil for both.
//
// encoding/json calls UnmarshalJSON for a present key, including an explicit
// null, and never for an absent one, so Set is true exactly when the key was
// in the body.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present, non-null Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null returns a present Optional that was sent as JSON null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// UnmarshalJSON implements json.Unmarshaler.
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

// Ptr returns nil when the key was absent and a pointer to Value otherwise.
// A null comes back as a pointer to the zero value.
func (o Optional[T]) Ptr() *T {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}
