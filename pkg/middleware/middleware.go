package middleware

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vango-dev/urlkit/internal/errors"
)

// unmatchedRoute labels requests that no route pattern matched.
const unmatchedRoute = "unmatched"

// requestState is shared between the middleware chain and handlers of one
// request.
type requestState struct {
	err error
}

type stateKey struct{}

// withState returns r with a requestState attached, reusing an existing one
// so every middleware in the chain observes the same errors.
func withState(r *http.Request) (*http.Request, *requestState) {
	if st, ok := r.Context().Value(stateKey{}).(*requestState); ok {
		return r, st
	}
	st := &requestState{}
	return r.WithContext(context.WithValue(r.Context(), stateKey{}, st)), st
}

// RecordError marks the request as failed with err. Outside the middleware
// chain it is a no-op.
func RecordError(r *http.Request, err error) {
	if st, ok := r.Context().Value(stateKey{}).(*requestState); ok {
		st.err = err
	}
}

// errorType maps err to a low-cardinality label: the urlkit error code when
// there is one, "internal" otherwise.
func errorType(err error) string {
	if code := errors.CodeOf(err); code != "" {
		return code
	}
	return "internal"
}

// routeOf returns the matched chi route pattern. It must be called after the
// wrapped handler ran, when chi has filled in the pattern.
func routeOf(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

// statusWriter records the status code and body size written.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func wrapWriter(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w}
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Status returns the written status, 200 if the handler wrote nothing.
func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Hijack lets WebSocket upgrades through the wrapper.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("middleware: %T does not support hijacking", w.ResponseWriter)
	}
	if w.status == 0 {
		w.status = http.StatusSwitchingProtocols
	}
	return h.Hijack()
}

// Flush forwards to the underlying writer when it supports flushing.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
