package urlcodec

import "strings"

// rawSegments holds the pieces of a URL before normalization. search keeps
// its leading "?" and hash its leading "#".
type rawSegments struct {
	protocol string
	domain   string
	port     string
	origin   string
	pathname string
	search   string
	hash     string
}

// scanner decomposes URLs net/url rejects or cannot place a host in.
// The grammar, each part optional and consumed in order:
//
//	[scheme "://"] [domain] [":" digits] [path] ["?" search] ["#" hash]
//
// The domain is only read when a scheme was present or the input does not
// start with '/', '.', '?' or '#', so "192.168.0.1:3000/x" and
// "localhost:8080" keep their host while "/docs" and "./a" are pure paths.
type scanner struct {
	s   string
	pos int
}

func scanURL(s string) rawSegments {
	sc := &scanner{s: s}
	var r rawSegments

	r.protocol = sc.scheme()
	if r.protocol != "" || !sc.peekAny("/.?#") {
		r.domain = sc.until(":/?#")
		r.port = sc.port()
	}
	r.pathname = sc.until("?#")
	if sc.peek('?') {
		r.search = sc.until("#")
	}
	r.hash = sc.rest()

	switch {
	case r.protocol != "":
		r.origin = r.protocol + "://" + hostPort(r.domain, r.port)
	case r.domain != "":
		r.origin = hostPort(r.domain, r.port)
	}
	return r
}

// scheme consumes "scheme://" and returns the lowercased scheme.
func (sc *scanner) scheme() string {
	i := strings.Index(sc.s[sc.pos:], "://")
	if i <= 0 {
		return ""
	}
	candidate := sc.s[sc.pos : sc.pos+i]
	if !isScheme(candidate) {
		return ""
	}
	sc.pos += i + len("://")
	return strings.ToLower(candidate)
}

// port consumes ":digits". A colon not followed by a digit is left for the path.
func (sc *scanner) port() string {
	if !sc.peek(':') {
		return ""
	}
	start := sc.pos + 1
	end := start
	for end < len(sc.s) && sc.s[end] >= '0' && sc.s[end] <= '9' {
		end++
	}
	if end == start {
		return ""
	}
	sc.pos = end
	return sc.s[start:end]
}

// until consumes up to, not including, the first byte in stop.
func (sc *scanner) until(stop string) string {
	start := sc.pos
	if i := strings.IndexAny(sc.s[start:], stop); i >= 0 {
		sc.pos = start + i
	} else {
		sc.pos = len(sc.s)
	}
	return sc.s[start:sc.pos]
}

func (sc *scanner) rest() string {
	out := sc.s[sc.pos:]
	sc.pos = len(sc.s)
	return out
}

func (sc *scanner) peek(c byte) bool {
	return sc.pos < len(sc.s) && sc.s[sc.pos] == c
}

func (sc *scanner) peekAny(set string) bool {
	return sc.pos < len(sc.s) && strings.IndexByte(set, sc.s[sc.pos]) >= 0
}

// isScheme reports whether s matches ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func isScheme(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

func hostPort(host, port string) string {
	if port == "" {
		return host
	}
	return host + ":" + port
}
