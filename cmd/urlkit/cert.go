package main

import (
	"crypto/x509"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/vango-dev/urlkit/internal/devcert"
	"github.com/vango-dev/urlkit/internal/errors"
)

func certCmd(root *rootOptions) *cobra.Command {
	var hosts []string

	cmd := &cobra.Command{
		Use:   "cert",
		Short: "Create or reuse the dev HTTPS certificate",
		Long: `Ensure a self-signed certificate for local HTTPS exists in server.certDir.
A cached certificate is reused until it is about to expire or the host list
changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("host") {
				hosts = append(slices.Clone(devcert.DefaultHosts), cfg.Server.Host)
			}

			cert, err := devcert.Ensure(afero.NewOsFs(), cfg.CertPath(), hosts)
			if err != nil {
				return err
			}
			leaf, err := x509.ParseCertificate(cert.Certificate[0])
			if err != nil {
				return errors.New("U043").Wrap(err)
			}

			w := cmd.OutOrStdout()
			success(w, "Certificate ready in %s", cfg.CertPath())
			info(w, "Hosts:   %s", strings.Join(devcert.Hosts(leaf), ", "))
			info(w, "Expires: %s", leaf.NotAfter.Format("2006-01-02 15:04 MST"))
			if !cfg.Server.HTTPS {
				warn(w, "server.https is off; run 'urlkit serve --https' to use it")
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&hosts, "host", nil, "Hosts and IPs to include (default localhost, 127.0.0.1, ::1 and server.host)")

	return cmd
}
