package converter

import (
	"github.com/exacode/docsink/document"
	"github.com/exacode/docsink/domain"
)

// fields reads typed values out of a document, reporting DecodeFaults with the dotted
// path of the offending field.
type fields struct {
	doc  *document.Map
	path string
}

func fieldsOf(doc *document.Map, path string) fields {
	return fields{doc: doc, path: path}
}

func (f fields) name(key string) string {
	if f.path == "" {
		return key
	}
	return f.path + "." + key
}

func (f fields) fault(key, reason string) error {
	return &domain.DecodeFault{Field: f.name(key), Reason: reason}
}

func (f fields) required(key string) (document.Value, error) {
	v, ok := f.doc.Get(key)
	if !ok {
		return v, f.fault(key, "is missing")
	}
	return v, nil
}

func (f fields) requiredString(key string) (string, error) {
	v, err := f.required(key)
	if err != nil {
		return "", err
	}
	s, ok := v.AsString()
	if !ok {
		return "", f.fault(key, "is not a string, got "+v.Kind().String())
	}
	return s, nil
}

// nullableString accepts a missing field or null as the empty string.
func (f fields) nullableString(key string) (string, error) {
	v, ok := f.doc.Get(key)
	if !ok || v.IsNull() {
		return "", nil
	}
	s, ok := v.AsString()
	if !ok {
		return "", f.fault(key, "is not a string, got "+v.Kind().String())
	}
	return s, nil
}

func (f fields) requiredInt(key string) (int64, error) {
	v, err := f.required(key)
	if err != nil {
		return 0, err
	}
	i, ok := v.AsInt()
	if !ok {
		return 0, f.fault(key, "is not an integer, got "+v.Kind().String())
	}
	return i, nil
}

func (f fields) optionalBool(key string) (bool, error) {
	v, ok := f.doc.Get(key)
	if !ok || v.IsNull() {
		return false, nil
	}
	b, ok := v.AsBool()
	if !ok {
		return false, f.fault(key, "is not a bool, got "+v.Kind().String())
	}
	return b, nil
}

func (f fields) optionalMap(key string) (*document.Map, bool, error) {
	v, ok := f.doc.Get(key)
	if !ok {
		return nil, false, nil
	}
	m, ok := v.AsMap()
	if !ok {
		return nil, false, f.fault(key, "is not a document, got "+v.Kind().String())
	}
	return m, true, nil
}

func (f fields) optionalList(key string) (document.List, bool, error) {
	v, ok := f.doc.Get(key)
	if !ok {
		return nil, false, nil
	}
	l, ok := v.AsList()
	if !ok {
		return nil, false, f.fault(key, "is not a list, got "+v.Kind().String())
	}
	return l, true, nil
}
