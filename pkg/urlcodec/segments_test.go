package urlcodec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var compareParams = cmp.Comparer(func(a, b *QueryParamMap) bool {
	return a.Equal(b)
})

func params(pairs ...string) *QueryParamMap {
	m := NewQueryParamMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Add(pairs[i], pairs[i+1])
	}
	return m
}

func TestGetURLSegments(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Segments
	}{
		{
			name: "query and hash",
			url:  "https://example.com/?a=A&b=B#/home",
			want: Segments{
				FullURL:              "https://example.com?a=A&b=B#/home",
				Protocol:             "https",
				Domain:               "example.com",
				Origin:               "https://example.com",
				QueryParamHashString: "?a=A&b=B#/home",
				QueryParamMap:        params("a", "A", "b", "B", HashKey, "/home"),
				Hash:                 "/home",
			},
		},
		{
			name: "only hash",
			url:  "https://example.com#myHash",
			want: Segments{
				FullURL:              "https://example.com#myHash",
				Protocol:             "https",
				Domain:               "example.com",
				Origin:               "https://example.com",
				QueryParamHashString: "#myHash",
				QueryParamMap:        params(HashKey, "myHash"),
				Hash:                 "myHash",
			},
		},
		{
			name: "port path and multi value",
			url:  "http://Example.COM:8080/docs/api/?a=A&b=Cc%3DDd&b=hello%20world",
			want: Segments{
				FullURL:              "http://example.com:8080/docs/api?a=A&b=Cc%3DDd&b=hello%20world",
				Protocol:             "http",
				Domain:               "example.com",
				Port:                 "8080",
				Origin:               "http://example.com:8080",
				Pathname:             "/docs/api",
				QueryParamHashString: "?a=A&b=Cc%3DDd&b=hello%20world",
				QueryParamMap:        params("a", "A", "b", "Cc=Dd", "b", "hello world"),
			},
		},
		{
			name: "default port hidden",
			url:  "https://example.com:443/",
			want: Segments{
				FullURL:       "https://example.com",
				Protocol:      "https",
				Domain:        "example.com",
				Origin:        "https://example.com",
				QueryParamMap: params(),
			},
		},
		{
			name: "internationalized domain",
			url:  "https://bücher.example/",
			want: Segments{
				FullURL:       "https://xn--bcher-kva.example",
				Protocol:      "https",
				Domain:        "xn--bcher-kva.example",
				Origin:        "https://xn--bcher-kva.example",
				QueryParamMap: params(),
			},
		},
		{
			name: "uppercase scheme and default port",
			url:  "HTTPS://Example.COM:443/a/?x=1",
			want: Segments{
				FullURL:              "https://example.com/a?x=1",
				Protocol:             "https",
				Domain:               "example.com",
				Origin:               "https://example.com",
				Pathname:             "/a",
				QueryParamHashString: "?x=1",
				QueryParamMap:        params("x", "1"),
			},
		},
		{
			name: "escaped path",
			url:  "https://bücher.example/a b",
			want: Segments{
				FullURL:       "https://xn--bcher-kva.example/a%20b",
				Protocol:      "https",
				Domain:        "xn--bcher-kva.example",
				Origin:        "https://xn--bcher-kva.example",
				Pathname:      "/a%20b",
				QueryParamMap: params(),
			},
		},
		{
			name: "encoded hash key without fragment",
			url:  "https://x.com/?%23=x&a=1",
			want: Segments{
				FullURL:              "https://x.com?%23=x&a=1",
				Protocol:             "https",
				Domain:               "x.com",
				Origin:               "https://x.com",
				QueryParamHashString: "?%23=x&a=1",
				QueryParamMap:        params("a", "1", HashKey, "x"),
			},
		},
		{
			name: "ipv6 host",
			url:  "http://[::1]:3000/app",
			want: Segments{
				FullURL:       "http://[::1]:3000/app",
				Protocol:      "http",
				Domain:        "[::1]",
				Port:          "3000",
				Origin:        "http://[::1]:3000",
				Pathname:      "/app",
				QueryParamMap: params(),
			},
		},
		{
			name: "bare hash falls back",
			url:  "#myHash",
			want: Segments{
				FullURL:              "#myHash",
				QueryParamHashString: "#myHash",
				QueryParamMap:        params(HashKey, "myHash"),
				Hash:                 "myHash",
			},
		},
		{
			name: "relative path",
			url:  "/users/42/?tab=posts",
			want: Segments{
				FullURL:              "/users/42?tab=posts",
				Pathname:             "/users/42",
				QueryParamHashString: "?tab=posts",
				QueryParamMap:        params("tab", "posts"),
			},
		},
		{
			name: "dot relative path",
			url:  "./a/b",
			want: Segments{
				FullURL:       "./a/b",
				Pathname:      "./a/b",
				QueryParamMap: params(),
			},
		},
		{
			name: "bare ip with port",
			url:  "192.168.0.23:3000/admin",
			want: Segments{
				FullURL:       "192.168.0.23:3000/admin",
				Domain:        "192.168.0.23",
				Port:          "3000",
				Origin:        "192.168.0.23:3000",
				Pathname:      "/admin",
				QueryParamMap: params(),
			},
		},
		{
			name: "bare host and port",
			url:  "localhost:8080",
			want: Segments{
				FullURL:       "localhost:8080",
				Domain:        "localhost",
				Port:          "8080",
				Origin:        "localhost:8080",
				QueryParamMap: params(),
			},
		},
		{
			name: "scheme net/url rejects",
			url:  "http://exa mple.com:99/x y?q=1",
			want: Segments{
				FullURL:              "http://exa mple.com:99/x y?q=1",
				Protocol:             "http",
				Domain:               "exa mple.com",
				Port:                 "99",
				Origin:               "http://exa mple.com:99",
				Pathname:             "/x y",
				QueryParamHashString: "?q=1",
				QueryParamMap:        params("q", "1"),
			},
		},
		{
			name: "empty",
			url:  "",
			want: Segments{QueryParamMap: params()},
		},
		{
			name: "surrounding whitespace",
			url:  "  https://example.com/a/  ",
			want: Segments{
				FullURL:       "https://example.com/a",
				Protocol:      "https",
				Domain:        "example.com",
				Origin:        "https://example.com",
				Pathname:      "/a",
				QueryParamMap: params(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetURLSegments(tt.url)
			if diff := cmp.Diff(tt.want, got, compareParams); diff != "" {
				t.Errorf("GetURLSegments(%q) mismatch (-want +got):\n%s", tt.url, diff)
			}
		})
	}
}

func TestGetURLSegmentsIdempotent(t *testing.T) {
	urls := []string{
		"https://example.com/",
		"https://example.com/a/b/?x=1#frag",
		"http://localhost:3000//",
		"/relative/path/",
		"#hash",
		"192.168.0.1/",
		"ftp://files.example.com:21/pub/",
	}
	for _, u := range urls {
		first := GetURLSegments(u).FullURL
		second := GetURLSegments(first).FullURL
		if first != second {
			t.Errorf("FullURL not idempotent for %q: %q then %q", u, first, second)
		}
	}
}

func TestGetURLSegmentsSuffixRebuildsURL(t *testing.T) {
	s := GetURLSegments("https://example.com/shop/?cat=books&cat=music#top")
	rebuilt := s.Origin + s.Pathname + EncodeQuery(s.QueryParamMap)
	if rebuilt != s.FullURL {
		t.Errorf("rebuilt %q, want %q", rebuilt, s.FullURL)
	}
}

func TestGetURLSegmentsFullURLFromParts(t *testing.T) {
	urls := []string{
		"HTTPS://Example.COM:443/a/?x=1",
		"https://bücher.example/a b",
		"http://[::1]:3000/app/#top",
		"ws://LOCALHOST:80/socket?id=7",
		"https://example.com",
		"https://x.com/?%23=x&a=1",
	}
	for _, u := range urls {
		s := GetURLSegments(u)
		if !s.IsAbsolute() {
			t.Fatalf("%q should be absolute", u)
		}
		if rebuilt := s.Origin + s.Pathname + s.QueryParamHashString; rebuilt != s.FullURL {
			t.Errorf("GetURLSegments(%q): FullURL = %q, parts give %q", u, s.FullURL, rebuilt)
		}
	}
}

func TestGetURLSegmentsKeepsEncodedHashKey(t *testing.T) {
	const query = "?%23=x&a=1"
	want := ParseQuery(query)
	got := GetURLSegments("https://x.com/" + query).QueryParamMap
	if !want.Equal(got) {
		t.Errorf("QueryParamMap = %s, ParseQuery gives %s", mapJSON(t, got), mapJSON(t, want))
	}
}

func TestGetURLSegmentsOptions(t *testing.T) {
	s := GetURLSegments("https://example.com/?tags=a%2Cb", WithListSeparator(","))
	v, ok := s.QueryParamMap.Get("tags")
	if !ok || !v.IsList() {
		t.Fatalf("tags = %v, want a list", v)
	}
	if diff := cmp.Diff([]string{"a", "b"}, v.Values()); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestSegmentsIsAbsolute(t *testing.T) {
	if !GetURLSegments("https://example.com").IsAbsolute() {
		t.Error("https URL should be absolute")
	}
	if GetURLSegments("/a").IsAbsolute() {
		t.Error("path should not be absolute")
	}
}
