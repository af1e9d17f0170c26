// Package middleware provides net/http middleware for the urlkit server.
//
// This package includes:
//   - Prometheus metrics
//   - OpenTelemetry tracing
//   - structured access logging with log/slog
//
// All three have the chi signature func(http.Handler) http.Handler:
//
//	r := chi.NewRouter()
//	r.Use(
//	    middleware.Logger(logger),
//	    middleware.OpenTelemetry(),
//	    middleware.Prometheus(middleware.WithRegistry(reg)),
//	)
//
// # Route labels
//
// Metrics and spans are labeled with the chi route pattern ("/v1/segments")
// rather than the raw path, so label cardinality stays bounded. Requests that
// matched no route are labeled "unmatched".
//
// # Codec errors
//
// Handlers report rejected input with RecordError. The Prometheus middleware
// then counts it in codec_errors_total by error code, and the tracing
// middleware records it on the span.
package middleware
