package routepath

import (
	stderrors "errors"
	"reflect"
	"testing"

	"github.com/vango-dev/urlkit/internal/errors"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPath    string
		wantQuery   string
		wantHash    string
		wantChanged bool
	}{
		{name: "root", input: "/", wantPath: "/"},
		{name: "empty string", input: "", wantPath: "/", wantChanged: true},
		{name: "no leading slash", input: "about", wantPath: "/about", wantChanged: true},
		{name: "collapse slashes", input: "/blog//post", wantPath: "/blog/post", wantChanged: true},
		{name: "single dot", input: "/blog/./post", wantPath: "/blog/post", wantChanged: true},
		{name: "double dot", input: "/blog/posts/../other", wantPath: "/blog/other", wantChanged: true},
		{name: "double dot to root", input: "/blog/../", wantPath: "/", wantChanged: true},
		{name: "trailing slash", input: "/docs/", wantPath: "/docs", wantChanged: true},
		{name: "query preserved", input: "/projects/123?tab=details", wantPath: "/projects/123", wantQuery: "tab=details"},
		{
			name:        "query and hash preserved",
			input:       "/projects/123/?tab=details#notes",
			wantPath:    "/projects/123",
			wantQuery:   "tab=details",
			wantHash:    "notes",
			wantChanged: true,
		},
		{name: "hash only", input: "/a#b?c", wantPath: "/a", wantHash: "b?c"},
		{name: "query escapes not validated", input: "/projects?bad=%GG", wantPath: "/projects", wantQuery: "bad=%GG"},
		{name: "valid escapes kept", input: "/a%20b", wantPath: "/a%20b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.input)
			if err != nil {
				t.Fatalf("Canonicalize(%q) error: %v", tt.input, err)
			}
			if got.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", got.Path, tt.wantPath)
			}
			if got.Query != tt.wantQuery {
				t.Errorf("Query = %q, want %q", got.Query, tt.wantQuery)
			}
			if got.Hash != tt.wantHash {
				t.Errorf("Hash = %q, want %q", got.Hash, tt.wantHash)
			}
			if got.Changed != tt.wantChanged {
				t.Errorf("Changed = %v, want %v", got.Changed, tt.wantChanged)
			}
		})
	}
}

func TestCanonicalizeErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
		wantCol int
	}{
		{name: "backslash", input: "/a\\b", wantErr: ErrBackslashInPath, wantCol: 3},
		{name: "literal nul", input: "/a\x00", wantErr: ErrNullByteInPath, wantCol: 3},
		{name: "encoded nul", input: "/a%00b", wantErr: ErrNullByteInPath, wantCol: 3},
		{name: "bad hex", input: "/a%GG", wantErr: ErrInvalidPercentEscape, wantCol: 3},
		{name: "truncated escape", input: "/a%2", wantErr: ErrInvalidPercentEscape, wantCol: 3},
		{name: "escapes root", input: "/../secret", wantErr: ErrPathEscapesRoot, wantCol: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Canonicalize(tt.input)
			if !stderrors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if code := errors.CodeOf(err); code != "U003" {
				t.Errorf("code = %q, want U003", code)
			}
			var ue *errors.UrlkitError
			if !stderrors.As(err, &ue) || ue.Location == nil {
				t.Fatal("expected a located UrlkitError")
			}
			if ue.Location.Column != tt.wantCol {
				t.Errorf("Column = %d, want %d", ue.Location.Column, tt.wantCol)
			}
		})
	}
}

func TestValidateNavPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "simple", input: "/about", want: "/about"},
		{name: "with query and hash", input: "/search/?q=go#top", want: "/search?q=go#top"},
		{name: "url in query allowed", input: "/login?next=https://example.com", want: "/login?next=https://example.com"},
		{name: "https", input: "https://evil.example", wantErr: ErrAbsoluteURL},
		{name: "protocol relative", input: "//evil.example/x", wantErr: ErrAbsoluteURL},
		{name: "escapes root", input: "/a/../../b", wantErr: ErrPathEscapesRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateNavPath(tt.input)
			if tt.wantErr != nil {
				if !stderrors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %q, want %q", got.String(), tt.want)
			}
		})
	}
}

func TestSplitJoin(t *testing.T) {
	tests := []struct {
		input              string
		path, query, hash string
	}{
		{"/a", "/a", "", ""},
		{"/a?b=c", "/a", "b=c", ""},
		{"/a#h", "/a", "", "h"},
		{"/a?b=c#h?x", "/a", "b=c", "h?x"},
		{"?q", "", "q", ""},
	}
	for _, tt := range tests {
		path, query, hash := Split(tt.input)
		if path != tt.path || query != tt.query || hash != tt.hash {
			t.Errorf("Split(%q) = (%q, %q, %q), want (%q, %q, %q)", tt.input, path, query, hash, tt.path, tt.query, tt.hash)
		}
		if got := Join(path, query, hash); got != tt.input {
			t.Errorf("Join(Split(%q)) = %q", tt.input, got)
		}
	}
}

func TestSegments(t *testing.T) {
	tests := []struct {
		path    string
		want    []string
		wantErr bool
	}{
		{path: "/", want: nil},
		{path: "", want: nil},
		{path: "/users/42", want: []string{"users", "42"}},
		{path: "/files/a%20b/", want: []string{"files", "a b"}},
		{path: "/bad/%zz", wantErr: true},
	}
	for _, tt := range tests {
		got, err := Segments(tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("Segments(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Segments(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
