package urlcodec

import (
	"net/netip"
	"net/url"
	"regexp"
	"strings"
)

var (
	// ipv4Pattern matches a dotted quad, optionally after "scheme://", at the
	// start of the input.
	ipv4Pattern = regexp.MustCompile(`^(?:[A-Za-z][A-Za-z0-9+.-]*://)?\d{1,3}(?:\.\d{1,3}){3}(?:[:/?#]|$)`)

	// pathnamePattern matches "/x", "./x" and "../x".
	pathnamePattern = regexp.MustCompile(`^(?:\.\.?)?/`)
)

// IPOption configures IsIPAddress.
type IPOption func(*ipOptions)

type ipOptions struct {
	onlyLocalhost          bool
	includeLocalhostDomain bool
}

// OnlyLocalhost restricts IsIPAddress to loopback and private IPv4 ranges
// (127/8, 10/8, 172.16/12, 192.168/16).
func OnlyLocalhost(on bool) IPOption {
	return func(o *ipOptions) {
		o.onlyLocalhost = on
	}
}

// IncludeLocalhostDomain makes OnlyLocalhost also accept a domain containing
// "localhost". It defaults to true.
func IncludeLocalhostDomain(on bool) IPOption {
	return func(o *ipOptions) {
		o.includeLocalhostDomain = on
	}
}

// IsIPAddress reports whether rawURL's host is a dotted-quad IPv4 address.
func IsIPAddress(rawURL string, opts ...IPOption) bool {
	o := ipOptions{includeLocalhostDomain: true}
	for _, opt := range opts {
		opt(&o)
	}

	if !o.onlyLocalhost {
		return ipv4Pattern.MatchString(strings.TrimSpace(rawURL))
	}

	domain := GetURLSegments(rawURL).Domain
	if addr, err := netip.ParseAddr(domain); err == nil && addr.Is4() {
		if addr.IsLoopback() || addr.IsPrivate() {
			return true
		}
	}
	return o.includeLocalhostDomain && strings.Contains(domain, "localhost")
}

// URLOption configures IsURL.
type URLOption func(*urlOptions)

type urlOptions struct {
	allowOnlyPathname bool
}

// AllowOnlyPathname makes IsURL accept relative paths. It defaults to true.
func AllowOnlyPathname(on bool) URLOption {
	return func(o *urlOptions) {
		o.allowOnlyPathname = on
	}
}

// IsURL reports whether rawURL is an absolute URL or, unless disabled with
// AllowOnlyPathname(false), a path starting with "/", "./" or "../".
func IsURL(rawURL string, opts ...URLOption) bool {
	o := urlOptions{allowOnlyPathname: true}
	for _, opt := range opts {
		opt(&o)
	}

	raw := strings.TrimSpace(rawURL)
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "") {
		return true
	}
	return o.allowOnlyPathname && pathnamePattern.MatchString(raw)
}
