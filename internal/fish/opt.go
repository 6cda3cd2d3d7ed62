package fish

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Opt is an optional value: either some T or none. Fields that only carry
// meaning in certain phases (the askee, the declarer, a hidden hand size)
// use it so absence is explicit rather than a sentinel number.
type Opt[T comparable] struct {
	val T
	ok  bool
}

// Some wraps a present value
func Some[T comparable](v T) Opt[T] {
	return Opt[T]{val: v, ok: true}
}

// None returns an absent value
func None[T comparable]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present
func (o Opt[T]) Get() (T, bool) {
	return o.val, o.ok
}

// IsSome reports whether a value is present
func (o Opt[T]) IsSome() bool {
	return o.ok
}

// Is reports whether the value is present and equal to v
func (o Opt[T]) Is(v T) bool {
	return o.ok && o.val == v
}

// Or returns the value, or def when absent
func (o Opt[T]) Or(def T) T {
	if o.ok {
		return o.val
	}
	return def
}

// String formats the value or "none"
func (o Opt[T]) String() string {
	if !o.ok {
		return "none"
	}
	return fmt.Sprint(o.val)
}

// MarshalJSON encodes none as null
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.val)
}

// UnmarshalJSON decodes null as none
func (o *Opt[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Opt[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
