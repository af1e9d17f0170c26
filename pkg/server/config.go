package server

import (
	"crypto/tls"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/urlkit/pkg/urlcodec"
)

// Config holds server configuration.
type Config struct {
	// Address is the TCP address to listen on.
	// Default: "localhost:8080".
	Address string

	// TLSConfig enables HTTPS when set.
	TLSConfig *tls.Config

	// Codec options applied to every parse and segments request. Request
	// fields such as "delimiter" are appended after them.
	Codec []urlcodec.Option

	// AllowOnlyPathname is the default of the allowOnlyPathname query
	// parameter of /v1/check.
	// Default: true.
	AllowOnlyPathname bool

	// IncludeLocalhostDomain is the default of the includeLocalhostDomain
	// query parameter of /v1/check.
	// Default: true.
	IncludeLocalhostDomain bool

	// Registry enables /metrics and the metrics middleware when set.
	Registry *prometheus.Registry

	// TracerProvider enables the tracing middleware when set.
	TracerProvider trace.TracerProvider

	// Logger is the server logger.
	// Default: slog.Default().
	Logger *slog.Logger

	// HistoryDebounce delays history commits of location sessions.
	HistoryDebounce time.Duration

	// MaxHistory bounds the entries kept per location session.
	// Default: 100.
	MaxHistory int

	// MaxMessageSize is the maximum size of an incoming WebSocket message
	// or request body.
	// Default: 64KB.
	MaxMessageSize int64

	// WriteTimeout bounds a single WebSocket write.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// ReadHeaderTimeout is passed to http.Server.
	// Default: 5 seconds.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// CheckOrigin validates WebSocket origins.
	// Default: same-origin only.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:                "localhost:8080",
		AllowOnlyPathname:      true,
		IncludeLocalhostDomain: true,
		MaxHistory:             100,
		MaxMessageSize:         64 * 1024, // 64KB
		WriteTimeout:           10 * time.Second,
		ReadHeaderTimeout:      5 * time.Second,
		ShutdownTimeout:        10 * time.Second,
	}
}

// withDefaults fills unset fields from DefaultConfig. Boolean fields are
// taken as given.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.MaxHistory == 0 {
		c.MaxHistory = d.MaxHistory
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = d.ReadHeaderTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}
