package ingest

import "encoding/json"

// Field decodes the upstream extraction envelope, which wraps every leaf
// value in a {"value": ...} object carrying confidence metadata we do not
// use. A missing, null, malformed, or wrongly-typed envelope decodes to an
// absent field rather than an error, so the normalizer can traverse deeply
// nested records without guarding every access.
type Field[T any] struct {
	value   T
	present bool
}

// FieldOf wraps a value in a present Field.
func FieldOf[T any](v T) Field[T] {
	return Field[T]{value: v, present: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Value *T `json:"value"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		// Malformed envelopes count as absent, never as decode failures.
		return nil
	}
	if envelope.Value == nil {
		return nil
	}
	f.value = *envelope.Value
	f.present = true
	return nil
}

// Get returns the wrapped value and whether it was present in the source.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.present
}

// Or returns the wrapped value, or def when the field is absent.
func (f Field[T]) Or(def T) T {
	if f.present {
		return f.value
	}
	return def
}

// Present reports whether the field carried a value.
func (f Field[T]) Present() bool {
	return f.present
}
