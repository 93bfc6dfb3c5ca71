// Package sanitize turns caller values into escaped SQL literal text and
// substitutes them into named :key: tokens of a query template.
//
// Textual substitution is kept for callers that build SQL as strings. Code
// that can use driver placeholders should prefer them.
package sanitize

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindList
	KindObject
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// timeLayout is the DATETIME literal format used for time.Time values.
const timeLayout = "2006-01-02 15:04:05.999999"

// Value is a binding value. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	u    uint64
	f    float64
	s    string
	list []Value
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a signed integer Value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Uint returns an unsigned integer Value.
func Uint(u uint64) Value { return Value{kind: KindUint, u: u} }

// Float returns a floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string Value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list Value holding vs.
func List(vs ...Value) Value { return Value{kind: KindList, list: vs} }

// Object returns an opaque object Value. Objects sanitize to nothing.
func Object() Value { return Value{kind: KindObject} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Elements returns a copy of the list elements, or nil for non-lists.
func (v Value) Elements() []Value {
	if v.kind != KindList {
		return nil
	}
	return append([]Value(nil), v.list...)
}

// Of converts an arbitrary Go value into a Value.
//
// Scalars map to their variant. time.Time, []byte, json.Number and
// fmt.Stringer become strings (json.Number becomes a number when it parses
// as one). driver.Valuer implementations are unwrapped. Slices and arrays
// become lists. Pointers are followed. Maps, structs, funcs and channels
// become objects.
func Of(v any) Value {
	// A nil pointer may still satisfy driver.Valuer or fmt.Stringer with a
	// value receiver, and calling through it panics.
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Null()
	}
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case bool:
		return Bool(x)
	case int:
		return Int(int64(x))
	case int8:
		return Int(int64(x))
	case int16:
		return Int(int64(x))
	case int32:
		return Int(int64(x))
	case int64:
		return Int(x)
	case uint:
		return Uint(uint64(x))
	case uint8:
		return Uint(uint64(x))
	case uint16:
		return Uint(uint64(x))
	case uint32:
		return Uint(uint64(x))
	case uint64:
		return Uint(x)
	case float32:
		return Float(float64(x))
	case float64:
		return Float(x)
	case string:
		return String(x)
	case []byte:
		if x == nil {
			return Null()
		}
		return String(string(x))
	case time.Time:
		return String(x.Format(timeLayout))
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return Int(i)
		}
		if f, err := x.Float64(); err == nil {
			return Float(f)
		}
		return String(x.String())
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return Object()
		}
		return Of(dv)
	case fmt.Stringer:
		return String(x.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return Of(rv.Elem().Interface())
	case reflect.Slice:
		if rv.IsNil() {
			return Null()
		}
		return listOf(rv)
	case reflect.Array:
		return listOf(rv)
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Uint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.String:
		return String(rv.String())
	default:
		return Object()
	}
}

func listOf(rv reflect.Value) Value {
	vs := make([]Value, rv.Len())
	for i := range vs {
		vs[i] = Of(rv.Index(i).Interface())
	}
	return List(vs...)
}

// Values converts each element with Of.
func Values(vs ...any) []Value {
	out := make([]Value, len(vs))
	for i, v := range vs {
		out[i] = Of(v)
	}
	return out
}
