package document

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"
)

// ErrUnsupportedType is returned by FromAny for Go values that have no document representation.
var ErrUnsupportedType = errors.New("unsupported value type")

// FromAny converts a Go value to a document value.
func FromAny(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint:
		return fromUint(uint64(v)), nil
	case uint64:
		return fromUint(v), nil
	case float32:
		return Double(float64(v)), nil
	case float64:
		return Double(v), nil
	case time.Time:
		return Date(v), nil
	case *time.Time:
		if v == nil {
			return Null(), nil
		}
		return Date(*v), nil
	case time.Duration:
		return Int(int64(v)), nil
	case List:
		return ListOf(v...), nil
	case *Map:
		return MapOf(v), nil
	case []any:
		items := make(List, len(v))
		for i, item := range v {
			iv, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("converting list item %d : %w", i, err)
			}
			items[i] = iv
		}
		return ListOf(items...), nil
	case []string:
		items := make(List, len(v))
		for i, item := range v {
			items[i] = String(item)
		}
		return ListOf(items...), nil
	case map[string]string:
		m := NewMap()
		for _, key := range slices.Sorted(maps.Keys(v)) {
			m.Set(key, String(v[key]))
		}
		return MapOf(m), nil
	case map[string]any:
		m := NewMap()
		for _, key := range slices.Sorted(maps.Keys(v)) {
			iv, err := FromAny(v[key])
			if err != nil {
				return Value{}, fmt.Errorf("converting map entry %q : %w", key, err)
			}
			m.Set(key, iv)
		}
		return MapOf(m), nil
	case error:
		return String(v.Error()), nil
	case fmt.Stringer:
		return String(v.String()), nil
	default:
		return Value{}, fmt.Errorf("%w %T", ErrUnsupportedType, x)
	}
}

func fromUint(u uint64) Value {
	if u > math.MaxInt64 {
		return Double(float64(u))
	}
	return Int(int64(u))
}

// Any converts v back to a plain Go value: int64, float64, string, bool, time.Time,
// []any, map[string]any or nil.
func (v Value) Any() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindDouble:
		return v.f
	case KindString:
		return v.s
	case KindDate:
		t, _ := v.AsDate()
		return t
	case KindList:
		items := make([]any, len(v.l))
		for i, item := range v.l {
			items[i] = item.Any()
		}
		return items
	case KindMap:
		out := make(map[string]any, v.m.Len())
		v.m.Range(func(key string, item Value) bool {
			out[key] = item.Any()
			return true
		})
		return out
	}
	return nil
}
