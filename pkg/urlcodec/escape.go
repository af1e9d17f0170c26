package urlcodec

import "net/url"

const upperhex = "0123456789ABCDEF"

// shouldEscape reports whether c is outside the component-safe set
// A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func shouldEscape(c byte) bool {
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return false
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return false
	}
	return true
}

// EscapeComponent percent-encodes s for use as a query key or value. Spaces
// become %20, never '+'.
func EscapeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	t := make([]byte, len(s)+2*n)
	j := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			t[j] = '%'
			t[j+1] = upperhex[c>>4]
			t[j+2] = upperhex[c&15]
			j += 3
			continue
		}
		t[j] = c
		j++
	}
	return string(t)
}

// UnescapeComponent decodes %XX sequences. '+' is left alone. Input with a
// malformed escape is returned unchanged.
func UnescapeComponent(s string) string {
	out, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return out
}
