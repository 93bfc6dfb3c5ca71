package sanitize

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Bindings is an insertion-ordered map from token name to Value.
type Bindings struct {
	keys   []string
	values map[string]Value
}

// NewBindings returns an empty Bindings.
func NewBindings() *Bindings {
	return &Bindings{values: make(map[string]Value)}
}

// Bind is shorthand for NewBindings().Set(key, v).
func Bind(key string, v any) *Bindings {
	return NewBindings().Set(key, v)
}

// Set stores v under key. An existing key keeps its position.
func (b *Bindings) Set(key string, v any) *Bindings {
	if b.values == nil {
		b.values = make(map[string]Value)
	}
	if _, ok := b.values[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.values[key] = Of(v)
	return b
}

// Get returns the value bound to key.
func (b *Bindings) Get(key string) (Value, bool) {
	if b == nil {
		return Value{}, false
	}
	v, ok := b.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (b *Bindings) Keys() []string {
	if b == nil {
		return nil
	}
	return slices.Clone(b.keys)
}

// Len returns the number of bindings.
func (b *Bindings) Len() int {
	if b == nil {
		return 0
	}
	return len(b.keys)
}

// Validate checks that every key can form a :key: token.
func (b *Bindings) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: got nil", ErrInvalidBindingShape)
	}
	for _, k := range b.keys {
		if k == "" {
			return fmt.Errorf("%w: empty key", ErrInvalidBindingShape)
		}
		if strings.Contains(k, ":") {
			return fmt.Errorf("%w: key %q contains ':'", ErrInvalidBindingShape, k)
		}
	}
	return nil
}

// BindingsFrom converts untyped caller data into Bindings.
//
// Maps with string keys are accepted, and their keys are taken in sorted
// order. Sequences, scalars and maps keyed by anything else fail with
// ErrInvalidBindingShape.
func BindingsFrom(v any) (*Bindings, error) {
	switch x := v.(type) {
	case *Bindings:
		if err := x.Validate(); err != nil {
			return nil, err
		}
		return x, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		b := NewBindings()
		for _, k := range keys {
			b.Set(k, x[k])
		}
		return b, b.Validate()
	case nil:
		return nil, fmt.Errorf("%w: got nil", ErrInvalidBindingShape)
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: map keyed by %s", ErrInvalidBindingShape, rv.Type().Key())
		}
		keys := rv.MapKeys()
		slices.SortFunc(keys, func(a, b reflect.Value) int {
			return strings.Compare(a.String(), b.String())
		})
		b := NewBindings()
		for _, k := range keys {
			b.Set(k.String(), rv.MapIndex(k).Interface())
		}
		return b, b.Validate()
	case reflect.Slice, reflect.Array:
		return nil, fmt.Errorf("%w: got sequence %T", ErrInvalidBindingShape, v)
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidBindingShape, v)
	}
}

// ColumnsFrom converts untyped caller data into an ordered list of values.
// Mappings and scalars fail with ErrNotSequence.
func ColumnsFrom(v any) ([]Value, error) {
	switch x := v.(type) {
	case []string:
		out := make([]Value, len(x))
		for i, s := range x {
			out[i] = String(s)
		}
		return out, nil
	case []Value:
		return slices.Clone(x), nil
	case []any:
		return Values(x...), nil
	case nil:
		return nil, fmt.Errorf("%w: got nil", ErrNotSequence)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return Of(v).Elements(), nil
	case reflect.Map:
		return nil, fmt.Errorf("%w: got mapping %T", ErrNotSequence, v)
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotSequence, v)
	}
}
