package urlcodec

import (
	"encoding/json"
	"strings"
)

// Value is a query parameter value: a single string or an ordered list of
// strings. The zero Value is the single empty string.
type Value struct {
	single string
	list   []string
	isList bool
}

// String creates a single-string Value.
func String(s string) Value {
	return Value{single: s}
}

// List creates a list Value. The slice is copied.
//
// The query string has no list marker: a list is written as one pair per
// entry and read back as a list only when the key repeats. A one-entry list
// therefore parses back as a String and an empty list is not written at all.
func List(values ...string) Value {
	cp := make([]string, len(values))
	copy(cp, values)
	return Value{list: cp, isList: true}
}

// IsList reports whether v holds a list.
func (v Value) IsList() bool {
	return v.isList
}

// First returns the single value, or the first list entry ("" for an empty list).
func (v Value) First() string {
	if !v.isList {
		return v.single
	}
	if len(v.list) == 0 {
		return ""
	}
	return v.list[0]
}

// Values returns every value; a single value is returned as a one-element slice.
func (v Value) Values() []string {
	if !v.isList {
		return []string{v.single}
	}
	cp := make([]string, len(v.list))
	copy(cp, v.list)
	return cp
}

// String returns the single value or the list entries joined with ",".
func (v Value) String() string {
	if !v.isList {
		return v.single
	}
	return strings.Join(v.list, ",")
}

// Equal reports whether v and o have the same shape and contents.
func (v Value) Equal(o Value) bool {
	if v.isList != o.isList {
		return false
	}
	if !v.isList {
		return v.single == o.single
	}
	if len(v.list) != len(o.list) {
		return false
	}
	for i := range v.list {
		if v.list[i] != o.list[i] {
			return false
		}
	}
	return true
}

// appendValue turns a single value into a list on the second occurrence.
func (v Value) appendValue(s string) Value {
	if !v.isList {
		return Value{list: []string{v.single, s}, isList: true}
	}
	return Value{list: append(v.list[:len(v.list):len(v.list)], s), isList: true}
}

// MarshalJSON encodes a single value as a JSON string and a list as an array.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.isList {
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	}
	return json.Marshal(v.single)
}

// UnmarshalJSON accepts a JSON string or an array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = String(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return newValueError(string(data))
	}
	*v = List(list...)
	return nil
}
