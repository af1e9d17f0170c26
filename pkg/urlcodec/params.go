package urlcodec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// HashKey is the reserved key holding the URL fragment (without "#").
const HashKey = "#"

// QueryParamMap is an insertion-ordered mapping from decoded parameter names
// to values. The fragment lives under HashKey and is always iterated last.
//
// A nil *QueryParamMap reads as empty. QueryParamMap is not safe for
// concurrent mutation.
type QueryParamMap struct {
	keys   []string
	values map[string]Value
	hash   string
}

// NewQueryParamMap returns an empty map.
func NewQueryParamMap() *QueryParamMap {
	return &QueryParamMap{values: make(map[string]Value)}
}

// MapOf builds a map from a Go map. Go maps are unordered, so keys are
// inserted in lexical order; a HashKey entry becomes the fragment.
func MapOf(values map[string]string) *QueryParamMap {
	m := NewQueryParamMap()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.Set(k, String(values[k]))
	}
	return m
}

// Len returns the number of entries, counting the fragment.
func (m *QueryParamMap) Len() int {
	if m == nil {
		return 0
	}
	n := len(m.keys)
	if m.hash != "" {
		n++
	}
	return n
}

// Keys returns the keys in insertion order with HashKey last when a fragment is set.
func (m *QueryParamMap) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, 0, m.Len())
	keys = append(keys, m.keys...)
	if m.hash != "" {
		keys = append(keys, HashKey)
	}
	return keys
}

// Get returns the value stored under key.
func (m *QueryParamMap) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	if key == HashKey {
		return String(m.hash), m.hash != ""
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *QueryParamMap) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores v under key. An existing key keeps its position.
// Setting HashKey sets the fragment to v.First().
func (m *QueryParamMap) Set(key string, v Value) {
	if key == HashKey {
		m.hash = v.First()
		return
	}
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Add appends s under key: the first occurrence stores a single value, the
// second converts it to a two-element list, later ones extend the list.
func (m *QueryParamMap) Add(key, s string) {
	if key == HashKey {
		m.hash = s
		return
	}
	if existing, ok := m.values[key]; ok {
		m.values[key] = existing.appendValue(s)
		return
	}
	m.Set(key, String(s))
}

// addList stores parts as a list under key, extending an existing entry.
func (m *QueryParamMap) addList(key string, parts []string) {
	existing, ok := m.values[key]
	if !ok {
		m.Set(key, List(parts...))
		return
	}
	for _, p := range parts {
		existing = existing.appendValue(p)
	}
	m.values[key] = existing
}

// Delete removes key. Deleting HashKey clears the fragment.
func (m *QueryParamMap) Delete(key string) {
	if m == nil {
		return
	}
	if key == HashKey {
		m.hash = ""
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
}

// Hash returns the fragment and whether one is set.
func (m *QueryParamMap) Hash() (string, bool) {
	if m == nil {
		return "", false
	}
	return m.hash, m.hash != ""
}

// SetHash sets the fragment. An empty string clears it.
func (m *QueryParamMap) SetHash(hash string) {
	m.hash = hash
}

// Range calls fn for each entry in order, HashKey last. Iteration stops when fn returns false.
func (m *QueryParamMap) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
	if m.hash != "" {
		fn(HashKey, String(m.hash))
	}
}

// Clone returns a deep copy of m.
func (m *QueryParamMap) Clone() *QueryParamMap {
	out := NewQueryParamMap()
	if m == nil {
		return out
	}
	for _, k := range m.keys {
		v := m.values[k]
		if v.isList {
			v = List(v.list...)
		}
		out.Set(k, v)
	}
	out.hash = m.hash
	return out
}

// Equal reports whether m and o hold the same entries in the same order.
func (m *QueryParamMap) Equal(o *QueryParamMap) bool {
	if m.Len() != o.Len() {
		return false
	}
	if m.Len() == 0 {
		return true
	}
	if m.hash != o.hash {
		return false
	}
	for i, k := range m.keys {
		if o.keys[i] != k {
			return false
		}
		if !m.values[k].Equal(o.values[k]) {
			return false
		}
	}
	return true
}

// String renders m as a query suffix with the default options.
func (m *QueryParamMap) String() string {
	return EncodeQuery(m)
}

// MarshalJSON encodes m as a JSON object preserving key order.
func (m *QueryParamMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var err error
	m.Range(func(key string, v Value) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		var kb, vb []byte
		if kb, err = json.Marshal(key); err != nil {
			return false
		}
		if vb, err = v.MarshalJSON(); err != nil {
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object of strings or string arrays, keeping
// the order in which keys appear in the document.
func (m *QueryParamMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return newInputError(fmt.Sprintf("%T", tok), string(data))
	}

	*m = QueryParamMap{values: make(map[string]Value)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return newInputError(fmt.Sprintf("%T", tok), string(data))
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return err
		}
		m.Set(key, v)
	}
	_, err = dec.Token()
	return err
}
