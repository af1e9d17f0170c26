// Package server exposes the query codec over HTTP.
//
// Routes:
//
//	GET  /healthz               liveness probe
//	POST /v1/query/parse        parse a query string or serialize a map
//	GET  /v1/query              parse the request's own query string
//	GET  /v1/segments?url=      decompose a URL
//	GET  /v1/check?url=         IP address and URL predicates
//	GET  /v1/location           WebSocket session with its own history
//	GET  /metrics               Prometheus metrics (when enabled)
//
// Rejected input is answered with 400 and a JSON error:
//
//	{"error": {"code": "U001", "message": "Unsupported input type", ...}}
//
// # Location sessions
//
// Each WebSocket connection owns a history.History. Clients send
//
//	{"type": "navigate", "url": "/search?q=go"}
//	{"type": "set", "key": "page", "value": "2", "mode": "push"}
//	{"type": "delete", "key": "page"}
//	{"type": "hash", "value": "results"}
//	{"type": "back"} / {"type": "forward"}
//
// and receive the committed location after every change:
//
//	{"type": "location", "session": "...", "url": "/search?q=go&page=2", "segments": {...}}
package server
