// Package urlcodec parses URLs and query strings into structured values and
// serializes query parameter maps back into URL suffixes.
//
// Query strings decode into an insertion-ordered QueryParamMap. A key seen
// once holds a single value; a repeated key holds the list of its values in
// encounter order. The fragment is stored under the reserved key "#" and is
// always the last entry:
//
//	m := urlcodec.ParseQuery("?a=A&b=Cc%3DDd&b=hello%20world#/home")
//	// a → "A", b → ["Cc=Dd", "hello world"], # → "/home"
//
//	urlcodec.EncodeQuery(m)
//	// "?a=A&b=Cc%3DDd&b=hello%20world#/home"
//
// GetURLSegments decomposes a full URL. Absolute URLs go through net/url;
// anything else falls back to a forgiving scanner so relative paths and
// bare hosts still produce useful segments:
//
//	s := urlcodec.GetURLSegments("https://example.com:8080/docs/?q=go#intro")
//	// s.Origin   = "https://example.com:8080"
//	// s.Pathname = "/docs"
//	// s.QueryParamHashString = "?q=go#intro"
//
// Nothing in this package keeps state between calls and every function is
// safe for concurrent use. Malformed input never fails: it degrades to empty
// fields. Only a wrong input kind is reported, as a usage error.
package urlcodec
