package document

// Map is a string-keyed map that remembers insertion order.
// A nil *Map behaves as an empty, read-only map.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set stores v under key and returns m so calls can be chained.
// Setting an existing key keeps its original position.
func (m *Map) Set(key string, v Value) *Map {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
	return m
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key from the map.
func (m *Map) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of keys.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Range calls fn for every key in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Equal reports whether m and o hold the same keys with equal values, ignoring order.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	equal := true
	m.Range(func(key string, v Value) bool {
		ov, ok := o.Get(key)
		equal = ok && v.Equal(ov)
		return equal
	})
	return equal
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	c := NewMap()
	m.Range(func(key string, v Value) bool {
		c.Set(key, cloneValue(v))
		return true
	})
	return c
}

func cloneValue(v Value) Value {
	switch v.kind {
	case KindList:
		items := make(List, len(v.l))
		for i, item := range v.l {
			items[i] = cloneValue(item)
		}
		return ListOf(items...)
	case KindMap:
		return MapOf(v.m.Clone())
	}
	return v
}
