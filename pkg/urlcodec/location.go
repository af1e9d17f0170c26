package urlcodec

import "net/http"

// LocationProvider supplies the "?query#hash" of the current location to
// ParseQueryParams when it is called without input.
type LocationProvider interface {
	Location() string
}

// StaticLocation is a fixed location string.
type StaticLocation string

// Location returns s.
func (s StaticLocation) Location() string {
	return string(s)
}

// LocationFunc adapts a function to LocationProvider.
type LocationFunc func() string

// Location calls f.
func (f LocationFunc) Location() string {
	return f()
}

// RequestLocation reads the query of an incoming HTTP request. Browsers do
// not send fragments, so the hash is only present for hand-built requests.
type RequestLocation struct {
	Request *http.Request
}

// Location returns the request's "?query#hash".
func (r RequestLocation) Location() string {
	if r.Request == nil || r.Request.URL == nil {
		return ""
	}
	var out string
	if q := r.Request.URL.RawQuery; q != "" {
		out = "?" + q
	}
	if frag := r.Request.URL.EscapedFragment(); frag != "" {
		out += "#" + frag
	}
	return out
}
