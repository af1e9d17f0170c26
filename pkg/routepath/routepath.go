// Package routepath canonicalizes the path part of in-app URLs and splits
// them into path, query and hash.
package routepath

import (
	stderrors "errors"
	"net/url"
	"strings"

	"github.com/vango-dev/urlkit/internal/errors"
)

// Result is a canonicalized path with its untouched query and hash.
type Result struct {
	// Path is the canonical path. The root is "/".
	Path string

	// Query is the query string without its leading "?".
	Query string

	// Hash is the fragment without its leading "#".
	Hash string

	// Changed reports whether Path differs from the input path.
	Changed bool
}

// String reassembles the path, query and hash.
func (r Result) String() string {
	return Join(r.Path, r.Query, r.Hash)
}

// Path rejection reasons. Returned errors are *errors.UrlkitError (U003)
// wrapping one of these.
var (
	ErrAbsoluteURL          = stderrors.New("absolute URL where a path was expected")
	ErrBackslashInPath      = stderrors.New("path contains backslash")
	ErrNullByteInPath       = stderrors.New("path contains null byte")
	ErrInvalidPercentEscape = stderrors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = stderrors.New("path escapes root via ..")
)

// Canonicalize normalizes the path of input:
//   - a missing leading slash is added
//   - repeated slashes collapse (/a//b → /a/b)
//   - "." segments are dropped and ".." segments resolved
//   - a trailing slash is removed, except for the root
//
// Backslashes, NUL bytes (literal or %00), malformed percent escapes and ".."
// above the root are rejected. The query and hash are split off and returned
// as they are.
func Canonicalize(input string) (Result, error) {
	path, query, hash := Split(input)

	if i := strings.IndexByte(path, '\\'); i >= 0 {
		return Result{}, pathError(ErrBackslashInPath, input, i)
	}
	if i := strings.IndexByte(path, 0); i >= 0 {
		return Result{}, pathError(ErrNullByteInPath, input, i)
	}
	if i := strings.Index(strings.ToUpper(path), "%00"); i >= 0 {
		return Result{}, pathError(ErrNullByteInPath, input, i)
	}
	if i := invalidEscapeAt(path); i >= 0 {
		return Result{}, pathError(ErrInvalidPercentEscape, input, i)
	}

	var kept []string
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".":
		case "..":
			if len(kept) == 0 {
				return Result{}, pathError(ErrPathEscapesRoot, input, strings.Index(path, ".."))
			}
			kept = kept[:len(kept)-1]
		default:
			kept = append(kept, seg)
		}
	}

	canonical := "/" + strings.Join(kept, "/")
	return Result{
		Path:    canonical,
		Query:   query,
		Hash:    hash,
		Changed: canonical != path,
	}, nil
}

// ValidateNavPath canonicalizes a navigation target that must stay inside
// the app: absolute URLs and protocol-relative "//host" inputs are rejected.
func ValidateNavPath(input string) (Result, error) {
	if strings.Contains(input, "://") && !strings.ContainsAny(input[:strings.Index(input, "://")], "/?#") {
		return Result{}, pathError(ErrAbsoluteURL, input, 0)
	}
	if strings.HasPrefix(input, "//") {
		return Result{}, pathError(ErrAbsoluteURL, input, 0)
	}
	return Canonicalize(input)
}

// Split separates input into path, query (without "?") and hash (without "#").
func Split(input string) (path, query, hash string) {
	rest, hash, _ := strings.Cut(input, "#")
	path, query, _ = strings.Cut(rest, "?")
	return path, query, hash
}

// Join is the inverse of Split. Empty query and hash are omitted.
func Join(path, query, hash string) string {
	var b strings.Builder
	b.WriteString(path)
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	if hash != "" {
		b.WriteByte('#')
		b.WriteString(hash)
	}
	return b.String()
}

// Segments splits a canonical path into its decoded segments.
func Segments(path string) ([]string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, nil
	}

	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		decoded, err := url.PathUnescape(p)
		if err != nil {
			return nil, pathError(ErrInvalidPercentEscape, path, strings.Index(path, p))
		}
		out = append(out, decoded)
	}
	return out, nil
}

// invalidEscapeAt returns the index of the first "%" not followed by two hex
// digits, or -1.
func invalidEscapeAt(path string) int {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return i
		}
		i += 2
	}
	return -1
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func pathError(reason error, input string, index int) error {
	return errors.New("U003").Wrap(reason).WithInput(input, index+1)
}
