package tracing

import (
	"encoding/json"
)

// Kind identifies the variant held by a Value
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindObject
)

// Value is a tagged variant used for step payloads and extra trace annotations
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	obj  map[string]Value
}

// Fields is a set of named values
type Fields map[string]Value

func String(s string) Value { return Value{kind: KindString, str: s} }
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }
func Int(i int) Value { return Value{kind: KindNumber, num: float64(i)} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Object(fields Fields) Value { return Value{kind: KindObject, obj: fields} }
func (v Value) Kind() Kind { return v.kind }
func (v Value) Str() string { return v.str }
func (v Value) Num() float64 { return v.num }

// Interface converts the value to plain Go types for encoding
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num
	case KindBool:
		return v.b
	case KindObject:
		out := make(map[string]interface{}, len(v.obj))
		for k, child := range v.obj {
			out[k] = child.Interface()
		}
		return out
	}
	return nil
}

// MarshalJSON encodes the held variant
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}
