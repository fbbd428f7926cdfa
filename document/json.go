package document

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/valyala/fastjson"
)

const (
	dateKey   = "$date"
	doubleKey = "$numberDouble"
)

var parsers fastjson.ParserPool

// ErrNotDocument is returned by Unmarshal when the input is valid JSON but not an object.
var ErrNotDocument = errors.New("json value is not a document")

// Marshal serializes m to relaxed extended JSON, keeping field order.
//
// Keys starting with "$" are written with one more "$" so that a map holding a single
// "$date" or "$numberDouble" key is not read back as a date or a double. Unmarshal strips
// the extra "$".
func Marshal(m *Map) []byte {
	return appendJSON(nil, MapOf(m))
}

func appendJSON(dst []byte, v Value) []byte {
	switch v.kind {
	case KindBool:
		return strconv.AppendBool(dst, v.b)
	case KindInt:
		return strconv.AppendInt(dst, v.i, 10)
	case KindDouble:
		return appendDouble(dst, v.f)
	case KindString:
		return appendString(dst, v.s)
	case KindDate:
		dst = append(dst, `{"`+dateKey+`":`...)
		dst = strconv.AppendInt(dst, v.i, 10)
		return append(dst, '}')
	case KindList:
		dst = append(dst, '[')
		for i, item := range v.l {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = appendJSON(dst, item)
		}
		return append(dst, ']')
	case KindMap:
		dst = append(dst, '{')
		first := true
		v.m.Range(func(key string, item Value) bool {
			if !first {
				dst = append(dst, ',')
			}
			first = false
			if strings.HasPrefix(key, "$") {
				key = "$" + key
			}
			dst = appendString(dst, key)
			dst = append(dst, ':')
			dst = appendJSON(dst, item)
			return true
		})
		return append(dst, '}')
	}
	return append(dst, "null"...)
}

func appendDouble(dst []byte, f float64) []byte {
	var special string
	switch {
	case math.IsNaN(f):
		special = "NaN"
	case math.IsInf(f, 1):
		special = "Infinity"
	case math.IsInf(f, -1):
		special = "-Infinity"
	}
	if special != "" {
		return append(dst, `{"`+doubleKey+`":"`+special+`"}`...)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return append(dst, s...)
}

const hexDigits = "0123456789abcdef"

// appendString writes s as a JSON string. Bytes that are not valid UTF-8 are copied as is,
// the parser hands them back unchanged.
func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			dst = append(dst, '\\', c)
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}

// Unmarshal parses a document previously produced by Marshal.
func Unmarshal(data []byte) (*Map, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing document : %w", err)
	}
	if v.Type() != fastjson.TypeObject {
		return nil, fmt.Errorf("%w: got %s", ErrNotDocument, v.Type())
	}
	doc, err := fromJSON(v)
	if err != nil {
		return nil, err
	}
	m, _ := doc.AsMap()
	return m, nil
}

func fromJSON(v *fastjson.Value) (Value, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return Null(), nil
	case fastjson.TypeTrue:
		return Bool(true), nil
	case fastjson.TypeFalse:
		return Bool(false), nil
	case fastjson.TypeNumber:
		return numberFromJSON(v)
	case fastjson.TypeString:
		return String(string(v.GetStringBytes())), nil
	case fastjson.TypeArray:
		arr, _ := v.Array()
		items := make(List, len(arr))
		for i, item := range arr {
			iv, err := fromJSON(item)
			if err != nil {
				return Value{}, err
			}
			items[i] = iv
		}
		return ListOf(items...), nil
	case fastjson.TypeObject:
		return objectFromJSON(v)
	}
	return Value{}, fmt.Errorf("unexpected json type %s", v.Type())
}

func numberFromJSON(v *fastjson.Value) (Value, error) {
	raw := v.String()
	if !strings.ContainsAny(raw, ".eE") {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Value{}, fmt.Errorf("parsing number %q : %w", raw, err)
	}
	return Double(f), nil
}

func objectFromJSON(v *fastjson.Value) (Value, error) {
	obj, _ := v.Object()
	if obj.Len() == 1 {
		if d := obj.Get(dateKey); d != nil && d.Type() == fastjson.TypeNumber {
			ms, err := d.Int64()
			if err != nil {
				return Value{}, fmt.Errorf("parsing %s : %w", dateKey, err)
			}
			return DateMillis(ms), nil
		}
		if d := obj.Get(doubleKey); d != nil && d.Type() == fastjson.TypeString {
			f, err := strconv.ParseFloat(string(d.GetStringBytes()), 64)
			if err != nil {
				return Value{}, fmt.Errorf("parsing %s : %w", doubleKey, err)
			}
			return Double(f), nil
		}
	}

	m := NewMap()
	var visitErr error
	obj.Visit(func(key []byte, item *fastjson.Value) {
		if visitErr != nil {
			return
		}
		iv, err := fromJSON(item)
		if err != nil {
			visitErr = fmt.Errorf("field %q : %w", key, err)
			return
		}
		name := string(key)
		if strings.HasPrefix(name, "$$") {
			name = name[1:]
		}
		m.Set(name, iv)
	})
	if visitErr != nil {
		return Value{}, visitErr
	}
	return MapOf(m), nil
}
