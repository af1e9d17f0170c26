package urlcodec

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// Segments is the decomposition of a URL.
type Segments struct {
	// FullURL is the normalized URL, Origin + Pathname + QueryParamHashString,
	// for absolute inputs. Other inputs keep their spelling, minus surrounding
	// space and a trailing slash on the path.
	FullURL string `json:"fullUrl"`

	// Protocol is the scheme without ":" or "//", e.g. "https".
	Protocol string `json:"protocol"`

	// Domain is the hostname in ASCII form, without port.
	Domain string `json:"domain"`

	// Port is empty when unspecified or the scheme's default.
	Port string `json:"port"`

	// Origin is protocol://domain[:port] without a trailing slash.
	Origin string `json:"origin"`

	// Pathname has no trailing slash; the root path is "".
	Pathname string `json:"pathname"`

	// QueryParamHashString is the "?query#hash" suffix as seen in an address bar.
	QueryParamHashString string `json:"queryParamHashString"`

	// QueryParamMap holds the decoded query params and, under HashKey, the hash.
	QueryParamMap *QueryParamMap `json:"queryParamMap"`

	// Hash is the fragment without "#".
	Hash string `json:"hash"`
}

// IsAbsolute reports whether the segments came with a protocol.
func (s Segments) IsAbsolute() bool {
	return s.Protocol != ""
}

// defaultPorts are hidden from Port and Origin, the way browsers do.
var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

// GetURLSegments decomposes rawURL. It never fails: parts that cannot be
// recognized come back empty. opts apply to the query decoding.
func GetURLSegments(rawURL string, opts ...Option) Segments {
	o := newOptions(opts)
	raw := strings.TrimSpace(rawURL)

	r, ok := parseAbsolute(raw)
	if !ok {
		r = scanURL(raw)
	}

	search := strings.TrimPrefix(r.search, "?")
	hash := strings.TrimPrefix(r.hash, "#")

	var suffix strings.Builder
	if search != "" {
		suffix.WriteString("?" + search)
	}
	if hash != "" {
		suffix.WriteString("#" + hash)
	}

	params := NewQueryParamMap()
	parsePairs(params, search, o)
	if hash != "" {
		params.SetHash(hash)
	}

	origin := trimTrailingSlashes(r.origin)
	pathname := strings.TrimRight(r.pathname, "/")

	// Absolute URLs are rebuilt from their normalized parts; anything the
	// scanner had to take apart keeps its original spelling.
	fullURL := trimPathSlashes(raw)
	if ok {
		fullURL = origin + pathname + suffix.String()
	}

	return Segments{
		FullURL:              fullURL,
		Protocol:             r.protocol,
		Domain:               r.domain,
		Port:                 r.port,
		Origin:               origin,
		Pathname:             pathname,
		QueryParamHashString: suffix.String(),
		QueryParamMap:        params,
		Hash:                 hash,
	}
}

// parseAbsolute handles URLs net/url accepts with both a scheme and a host.
func parseAbsolute(raw string) (rawSegments, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawSegments{}, false
	}

	protocol := strings.ToLower(u.Scheme)
	domain := asciiHostname(u.Hostname())
	port := u.Port()
	if defaultPorts[protocol] == port {
		port = ""
	}

	r := rawSegments{
		protocol: protocol,
		domain:   domain,
		port:     port,
		origin:   protocol + "://" + hostPort(domain, port),
		pathname: u.EscapedPath(),
	}
	if u.RawQuery != "" {
		r.search = "?" + u.RawQuery
	}
	if frag := u.EscapedFragment(); frag != "" {
		r.hash = "#" + frag
	}
	return r, true
}

// asciiHostname lowercases host and converts internationalized names to
// punycode. IPv6 literals are bracketed.
func asciiHostname(host string) string {
	if strings.Contains(host, ":") {
		return "[" + strings.ToLower(host) + "]"
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return strings.ToLower(host)
	}
	return ascii
}

// trimTrailingSlashes removes trailing "/" without eating a bare "scheme://".
func trimTrailingSlashes(s string) string {
	for strings.HasSuffix(s, "/") && !strings.HasSuffix(s, "://") {
		s = s[:len(s)-1]
	}
	return s
}

// trimPathSlashes strips trailing slashes right before "?", "#" or the end.
func trimPathSlashes(raw string) string {
	i := strings.IndexAny(raw, "?#")
	if i < 0 {
		return trimTrailingSlashes(raw)
	}
	return trimTrailingSlashes(raw[:i]) + raw[i:]
}
