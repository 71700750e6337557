package domain

import "encoding/json"

// Patch is one field of a partial update. An unset Patch leaves the field
// unchanged; a set Patch with a nil Value clears it. In JSON an absent key is
// unset and an explicit null is a clear, so patch fields are tagged omitzero.
type Patch[T any] struct {
	Set   bool
	Value *T
}

// To returns a patch that sets the field to v.
func To[T any](v T) Patch[T] {
	return Patch[T]{Set: true, Value: &v}
}

// Null returns a patch that clears the field.
func Null[T any]() Patch[T] {
	return Patch[T]{Set: true}
}

func (p Patch[T]) IsZero() bool { return !p.Set }

// IsNull reports whether the patch clears the field.
func (p Patch[T]) IsNull() bool { return p.Set && p.Value == nil }

func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if p.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*p.Value)
}

func (p *Patch[T]) UnmarshalJSON(b []byte) error {
	p.Set = true
	if string(b) == "null" {
		p.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	p.Value = &v
	return nil
}

// applyValue writes a set, non-null patch into dst.
func applyValue[T any](p Patch[T], dst *T) {
	if p.Set && p.Value != nil {
		*dst = *p.Value
	}
}

// applyPtr writes a set patch into an optional field, clearing it on null.
func applyPtr[T any](p Patch[T], dst **T) {
	if !p.Set {
		return
	}
	if p.Value == nil {
		*dst = nil
		return
	}
	v := *p.Value
	*dst = &v
}
