package urlcodec

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestQueryParamMapOrder(t *testing.T) {
	m := NewQueryParamMap()
	m.SetHash("frag")
	m.Set("z", String("1"))
	m.Set("a", String("2"))
	m.Set("z", String("3"))

	if diff := cmp.Diff([]string{"z", "a", HashKey}, m.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}
	if v, _ := m.Get("z"); v.First() != "3" {
		t.Errorf("z = %q, want 3 (Set keeps position, replaces value)", v.First())
	}
	if m.Len() != 3 {
		t.Errorf("Len = %d, want 3", m.Len())
	}
}

func TestQueryParamMapAdd(t *testing.T) {
	m := NewQueryParamMap()
	m.Add("a", "1")
	if v, _ := m.Get("a"); v.IsList() {
		t.Fatal("single occurrence must not be wrapped in a list")
	}
	m.Add("a", "2")
	m.Add("a", "3")
	v, _ := m.Get("a")
	if !v.IsList() {
		t.Fatal("second occurrence must convert to a list")
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, v.Values()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryParamMapDelete(t *testing.T) {
	m := ParseQuery("?a=1&b=2&c=3#h")
	m.Delete("b")
	m.Delete(HashKey)
	m.Delete("missing")

	if got, want := EncodeQuery(m), "?a=1&c=3"; got != want {
		t.Errorf("after Delete = %q, want %q", got, want)
	}
	if m.Has("b") {
		t.Error("b should be gone")
	}
}

func TestQueryParamMapNil(t *testing.T) {
	var m *QueryParamMap
	if m.Len() != 0 || m.Keys() != nil || m.Has("a") {
		t.Error("nil map should read as empty")
	}
	if _, ok := m.Hash(); ok {
		t.Error("nil map has no hash")
	}
	m.Delete("a")
	m.Range(func(string, Value) bool {
		t.Error("Range on nil map should not call fn")
		return true
	})
	if m.Clone().Len() != 0 {
		t.Error("Clone of nil should be empty")
	}
	if !m.Equal(NewQueryParamMap()) {
		t.Error("nil should equal an empty map")
	}
}

func TestQueryParamMapClone(t *testing.T) {
	m := ParseQuery("?a=1&a=2#h")
	c := m.Clone()
	c.Add("a", "3")
	c.SetHash("other")

	if v, _ := m.Get("a"); len(v.Values()) != 2 {
		t.Errorf("original list changed: %v", v.Values())
	}
	if h, _ := m.Hash(); h != "h" {
		t.Errorf("original hash changed: %q", h)
	}
}

func TestQueryParamMapEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"same", "?a=1&b=2", "?a=1&b=2", true},
		{"order matters", "?a=1&b=2", "?b=2&a=1", false},
		{"shape matters", "?a=1", "?a=1&a=1", false},
		{"hash matters", "?a=1#x", "?a=1#y", false},
		{"both empty", "", "?", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseQuery(tt.a).Equal(ParseQuery(tt.b)); got != tt.want {
				t.Errorf("Equal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQueryParamMapRangeStops(t *testing.T) {
	m := ParseQuery("?a=1&b=2&c=3")
	var seen []string
	m.Range(func(k string, _ Value) bool {
		seen = append(seen, k)
		return k != "b"
	})
	if diff := cmp.Diff([]string{"a", "b"}, seen); diff != "" {
		t.Errorf("Range mismatch (-want +got):\n%s", diff)
	}
}

func TestQueryParamMapJSON(t *testing.T) {
	in := `{"z":"1","a":["x","y"],"#":"top"}`

	var m QueryParamMap
	if err := json.Unmarshal([]byte(in), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got, want := EncodeQuery(&m), "?z=1&a=x&a=y#top"; got != want {
		t.Errorf("EncodeQuery = %q, want %q", got, want)
	}

	out, err := json.Marshal(&m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != in {
		t.Errorf("Marshal = %s, want %s", out, in)
	}
}

func TestQueryParamMapJSONRejectsNonStrings(t *testing.T) {
	for _, in := range []string{`[1,2]`, `{"a":1}`, `{"a":{"b":"c"}}`, `{"a":[true]}`, `"str"`} {
		var m QueryParamMap
		if err := json.Unmarshal([]byte(in), &m); err == nil {
			t.Errorf("Unmarshal(%s) should fail", in)
		}
	}
}

func TestValue(t *testing.T) {
	single := String("x")
	if single.IsList() || single.First() != "x" || single.String() != "x" {
		t.Errorf("single = %+v", single)
	}

	list := List("a", "b")
	if !list.IsList() || list.First() != "a" || list.String() != "a,b" {
		t.Errorf("list = %+v", list)
	}
	if List().First() != "" {
		t.Error("empty list First should be empty")
	}
	if String("a").Equal(List("a")) {
		t.Error("single and one-element list differ in shape")
	}

	src := []string{"a"}
	v := List(src...)
	src[0] = "changed"
	if v.First() != "a" {
		t.Error("List must copy its input")
	}
}

func TestMapOf(t *testing.T) {
	m := MapOf(map[string]string{"b": "2", "a": "1", HashKey: "h"})
	if got, want := EncodeQuery(m), "?a=1&b=2#h"; got != want {
		t.Errorf("EncodeQuery(MapOf) = %q, want %q", got, want)
	}
	if m.String() != "?a=1&b=2#h" {
		t.Errorf("String() = %q", m.String())
	}
}
