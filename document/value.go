package document

import (
	"math"
	"time"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindDate
	KindList
	KindMap
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// List is an ordered sequence of values.
type List []Value

// Value is a single document value. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	l    List
	m    *Map
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a 64-bit integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Double returns a floating point value.
func Double(f float64) Value { return Value{kind: KindDouble, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Date returns a date value. Dates have millisecond precision.
func Date(t time.Time) Value { return Value{kind: KindDate, i: t.UnixMilli()} }

// DateMillis returns a date value from unix milliseconds.
func DateMillis(ms int64) Value { return Value{kind: KindDate, i: ms} }

// ListOf returns a list value holding items.
func ListOf(items ...Value) Value {
	if items == nil {
		items = List{}
	}
	return Value{kind: KindList, l: items}
}

// MapOf returns a map value. A nil map is stored as an empty map.
func MapOf(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer held by v. Doubles with no fractional part that fit in an
// int64 are accepted.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindDouble:
		if v.f == math.Trunc(v.f) && v.f >= -(1<<63) && v.f < 1<<63 {
			return int64(v.f), true
		}
	}
	return 0, false
}

// AsDouble returns the number held by v as a float64. Integers are accepted.
func (v Value) AsDouble() (float64, bool) {
	switch v.kind {
	case KindDouble:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	}
	return 0, false
}

func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsDate returns the date held by v in UTC.
func (v Value) AsDate() (time.Time, bool) {
	if v.kind != KindDate {
		return time.Time{}, false
	}
	return time.UnixMilli(v.i).UTC(), true
}

// Millis returns the unix milliseconds of a date value.
func (v Value) Millis() (int64, bool) { return v.i, v.kind == KindDate }

func (v Value) AsList() (List, bool) { return v.l, v.kind == KindList }

func (v Value) AsMap() (*Map, bool) { return v.m, v.kind == KindMap }

// Equal reports whether v and o hold the same value.
// Integers and doubles compare numerically, like the query matcher of a document database.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		if (v.kind == KindInt || v.kind == KindDouble) && (o.kind == KindInt || o.kind == KindDouble) {
			a, _ := v.AsDouble()
			b, _ := o.AsDouble()
			return a == b
		}
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt, KindDate:
		return v.i == o.i
	case KindDouble:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.l) != len(o.l) {
			return false
		}
		for i := range v.l {
			if !v.l[i].Equal(o.l[i]) {
				return false
			}
		}
		return true
	case KindMap:
		return v.m.Equal(o.m)
	}
	return false
}
