package main

import (
	"crypto/tls"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/vango-dev/urlkit/internal/config"
	"github.com/vango-dev/urlkit/internal/devcert"
	"github.com/vango-dev/urlkit/pkg/server"
)

func serveCmd(root *rootOptions) *cobra.Command {
	var (
		port  int
		host  string
		https bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the codec over HTTP",
		Long: `Start the urlkit HTTP server.

Routes:
  GET  /healthz          Liveness
  POST /v1/query/parse   Parse a string or serialize an object
  GET  /v1/query         Echo the request's own query
  GET  /v1/segments      Decompose ?url=
  GET  /v1/check         IP and URL predicates for ?url=
  GET  /v1/location      WebSocket location channel
  GET  /metrics          Prometheus metrics (server.metrics)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("https") {
				cfg.Server.HTTPS = https
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			sc, err := serverConfig(cfg, root.logger(cmd))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printBanner(w)
			success(w, "Serving on %s", cfg.URL())
			if sc.Registry != nil {
				info(w, "Metrics at %s/metrics", cfg.URL())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(sc).ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "Port to listen on")
	cmd.Flags().StringVarP(&host, "host", "H", config.DefaultHost, "Host to bind to")
	cmd.Flags().BoolVar(&https, "https", false, "Serve HTTPS with a self-signed dev certificate")

	return cmd
}

// serverConfig translates urlkit.json into a server.Config.
func serverConfig(cfg *config.Config, logger *slog.Logger) (server.Config, error) {
	debounce, err := cfg.DebounceDuration()
	if err != nil {
		return server.Config{}, err
	}

	sc := server.DefaultConfig()
	sc.Address = cfg.Address()
	sc.Codec = cfg.CodecOptions()
	sc.AllowOnlyPathname = cfg.Codec.AllowOnlyPathname
	sc.IncludeLocalhostDomain = cfg.Codec.IncludeLocalhostDomain
	sc.HistoryDebounce = debounce
	sc.MaxHistory = cfg.Server.MaxHistory
	sc.Logger = logger

	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sc.Registry = reg
	}

	// The global provider is a no-op until an SDK registers one.
	if cfg.Server.Tracing {
		sc.TracerProvider = otel.GetTracerProvider()
	}

	if cfg.Server.HTTPS {
		hosts := append(slices.Clone(devcert.DefaultHosts), cfg.Server.Host)
		cert, err := devcert.Ensure(afero.NewOsFs(), cfg.CertPath(), hosts)
		if err != nil {
			return server.Config{}, err
		}
		sc.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		}
	}

	return sc, nil
}
