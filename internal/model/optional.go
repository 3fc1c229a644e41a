package model

import "encoding/json"

// Optional is a JSON field that distinguishes "key absent" from
// "key present" and, when present, "null" from an actual value.
// UnmarshalJSON only runs for keys that appear in the payload, so the
// zero Optional means the field was omitted entirely.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// HasValue reports whether the field was supplied with a non-null value.
func (o Optional[T]) HasValue() bool {
	return o.Set && !o.Null
}
