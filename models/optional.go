package models

import "encoding/json"

// Optional carries one of three states decoded from a JSON object key:
// absent (Set=false), explicitly null (Set=true, Null=true), or a value.
// Use the `omitzero` tag option so absent values stay absent when encoding.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional holding v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// Null returns an Optional that was sent as an explicit null
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// HasValue reports whether a non-null value was sent
func (o Optional[T]) HasValue() bool {
	return o.Set && !o.Null
}

// Ptr returns nil for absent or null, otherwise a pointer to a copy of the value
func (o Optional[T]) Ptr() *T {
	if !o.HasValue() {
		return nil
	}
	v := o.Value
	return &v
}

// UnmarshalJSON is only invoked when the key is present, which is what sets Set
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Null = true
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// IsZero lets encoding/json's omitzero drop absent values
func (o Optional[T]) IsZero() bool {
	return !o.Set
}
