package urlcodec

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Input is what ParseQueryParams accepts: a StringInput to parse or a
// MapInput to serialize. A nil Input reads the configured LocationProvider.
type Input interface {
	isInput()
}

// StringInput is a full URL, a "?query#hash" suffix or a bare "query#hash".
type StringInput string

// MapInput wraps a map to serialize.
type MapInput struct {
	Params *QueryParamMap
}

func (StringInput) isInput() {}
func (MapInput) isInput()    {}

// Output is the result of ParseQueryParams: Params when a string was
// parsed, Query when a map was serialized.
type Output struct {
	Params *QueryParamMap
	Query  string
}

// IsQuery reports whether o holds a serialized query string.
func (o Output) IsQuery() bool {
	return o.Params == nil
}

// ParseQueryParams converts in between its string and map forms.
//
// A StringInput is parsed into a QueryParamMap. A MapInput is serialized into
// a "?query#hash" suffix that can be appended to origin + pathname. A nil
// Input parses the current location from WithLocation (an empty map when
// none is configured).
func ParseQueryParams(in Input, opts ...Option) (Output, error) {
	o := newOptions(opts)

	switch v := in.(type) {
	case nil:
		if o.location == nil {
			return Output{Params: NewQueryParamMap()}, nil
		}
		return Output{Params: parseQuery(o.location.Location(), o)}, nil
	case StringInput:
		return Output{Params: parseQuery(string(v), o)}, nil
	case MapInput:
		return Output{Query: encodeQuery(v.Params, o)}, nil
	default:
		return Output{}, newInputError(fmt.Sprintf("%T", in), "")
	}
}

// ParseQuery parses a query string (a leading "?" is optional) into a map.
// A full URL is accepted too; everything before the first "?" is dropped.
func ParseQuery(s string, opts ...Option) *QueryParamMap {
	return parseQuery(s, newOptions(opts))
}

// EncodeQuery serializes m into "?k=v&...#hash", or "" for an empty map.
// List entries become repeated keys, so ParseQuery restores m exactly
// except for lists with fewer than two entries (see List).
func EncodeQuery(m *QueryParamMap, opts ...Option) string {
	return encodeQuery(m, newOptions(opts))
}

func parseQuery(s string, o options) *QueryParamMap {
	m := NewQueryParamMap()

	s = strings.TrimPrefix(stripURLPrefix(s), "?")
	query, hash, _ := strings.Cut(s, "#")

	parsePairs(m, query, o)

	if hash != "" {
		m.SetHash(hash)
	}
	return m
}

// stripURLPrefix drops the scheme, host and path of a full URL or a
// relative path so only the "?query#hash" suffix remains.
func stripURLPrefix(s string) string {
	head := s
	if scheme, rest, ok := strings.Cut(s, "://"); ok && isScheme(scheme) {
		head = rest
	} else if !strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "./") && !strings.HasPrefix(s, "../") {
		return s
	}
	if i := strings.IndexAny(head, "?#"); i >= 0 {
		return head[i:]
	}
	return ""
}

func parsePairs(m *QueryParamMap, query string, o options) {
	if query == "" {
		return
	}
	for _, pair := range strings.Split(query, o.delimiter) {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key := UnescapeComponent(rawKey)
		value := UnescapeComponent(rawValue)

		if o.listSeparator != "" && strings.Contains(value, o.listSeparator) {
			m.addList(key, strings.Split(value, o.listSeparator))
			continue
		}
		m.Add(key, value)
	}
}

func encodeQuery(m *QueryParamMap, o options) string {
	var pairs []string
	if m != nil {
		for _, key := range m.keys {
			k := EscapeComponent(key)
			v := m.values[key]
			if !v.IsList() {
				pairs = append(pairs, k+"="+EscapeComponent(v.single))
				continue
			}
			if o.listSeparator != "" {
				pairs = append(pairs, k+"="+EscapeComponent(strings.Join(v.list, o.listSeparator)))
				continue
			}
			for _, item := range v.list {
				pairs = append(pairs, k+"="+EscapeComponent(item))
			}
		}
	}

	var b strings.Builder
	if len(pairs) > 0 {
		b.WriteByte('?')
		b.WriteString(strings.Join(pairs, o.delimiter))
	}
	if hash, ok := m.Hash(); ok {
		b.WriteByte('#')
		b.WriteString(hash)
	}
	return b.String()
}

// FromAny converts a dynamically typed value into an Input.
//
// Accepted: string, *QueryParamMap, QueryParamMap, url.Values,
// map[string]string, map[string][]string and map[string]any whose values are
// strings or string lists. Unordered Go maps are inserted in lexical key
// order. Everything else is a usage error wrapping ErrUnsupportedInput.
func FromAny(v any) (Input, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case Input:
		return t, nil
	case string:
		return StringInput(t), nil
	case *QueryParamMap:
		return MapInput{Params: t}, nil
	case QueryParamMap:
		return MapInput{Params: &t}, nil
	case map[string]string:
		return MapInput{Params: MapOf(t)}, nil
	case url.Values:
		return MapInput{Params: mapOfLists(t)}, nil
	case map[string][]string:
		return MapInput{Params: mapOfLists(t)}, nil
	case map[string]any:
		m := NewQueryParamMap()
		for _, k := range sortedKeys(t) {
			val, err := valueOf(t[k])
			if err != nil {
				return nil, err
			}
			m.Set(k, val)
		}
		return MapInput{Params: m}, nil
	default:
		return nil, newInputError(fmt.Sprintf("%T", v), fmt.Sprint(v))
	}
}

func mapOfLists(values map[string][]string) *QueryParamMap {
	m := NewQueryParamMap()
	for _, k := range sortedKeys(values) {
		vs := values[k]
		if len(vs) == 1 {
			m.Set(k, String(vs[0]))
			continue
		}
		m.Set(k, List(vs...))
	}
	return m
}

func valueOf(v any) (Value, error) {
	switch t := v.(type) {
	case string:
		return String(t), nil
	case []string:
		return List(t...), nil
	case []any:
		list := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return Value{}, newValueError(fmt.Sprint(item))
			}
			list = append(list, s)
		}
		return List(list...), nil
	default:
		return Value{}, newValueError(fmt.Sprint(v))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
