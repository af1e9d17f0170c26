// Package devcert issues self-signed TLS certificates for the development
// server and caches them on disk.
package devcert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"net/netip"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/vango-dev/urlkit/internal/errors"
	"github.com/vango-dev/urlkit/pkg/urlcodec"
)

const (
	// CertFile and KeyFile are the cached PEM files inside the cache dir.
	CertFile = "cert.pem"
	KeyFile  = "key.pem"

	// Validity is the lifetime of a generated certificate.
	Validity = 30 * 24 * time.Hour

	// renewBefore regenerates certificates this close to expiry.
	renewBefore = 24 * time.Hour
)

// DefaultHosts is used when Ensure is called without hosts.
var DefaultHosts = []string{"localhost", "127.0.0.1", "::1"}

// now is replaced in tests.
var now = time.Now

// Ensure returns a certificate valid for hosts, reusing the one cached in dir
// when it has not expired and covers exactly the same hosts. Otherwise a new
// ECDSA P-256 certificate is generated and written to dir.
func Ensure(fs afero.Fs, dir string, hosts []string) (tls.Certificate, error) {
	hosts = normalizeHosts(hosts)

	if cert, ok := load(fs, dir, hosts); ok {
		return cert, nil
	}

	certPEM, keyPEM, err := Generate(hosts)
	if err != nil {
		return tls.Certificate{}, err
	}
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return tls.Certificate{}, errors.New("U043").Wrap(err)
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, CertFile), certPEM, 0o644); err != nil {
		return tls.Certificate{}, errors.New("U043").Wrap(err)
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, KeyFile), keyPEM, 0o600); err != nil {
		return tls.Certificate{}, errors.New("U043").Wrap(err)
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, errors.New("U043").Wrap(err)
	}
	return cert, nil
}

// Generate creates a self-signed certificate for hosts and returns it and
// its private key PEM encoded. IP literals become IP SANs, everything else
// DNS SANs.
func Generate(hosts []string) (certPEM, keyPEM []byte, err error) {
	hosts = normalizeHosts(hosts)
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, errors.New("U043").Wrap(err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, errors.New("U043").Wrap(err)
	}

	start := now()
	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"urlkit development"},
			CommonName:   hosts[0],
		},
		NotBefore:             start.Add(-time.Hour),
		NotAfter:              start.Add(Validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range hosts {
		if ip := parseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, nil, errors.New("U043").Wrap(err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, nil, errors.New("U043").Wrap(err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM = pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM, nil
}

// load returns the cached certificate if it is usable for hosts.
func load(fs afero.Fs, dir string, hosts []string) (tls.Certificate, bool) {
	certPEM, err := afero.ReadFile(fs, filepath.Join(dir, CertFile))
	if err != nil {
		return tls.Certificate{}, false
	}
	keyPEM, err := afero.ReadFile(fs, filepath.Join(dir, KeyFile))
	if err != nil {
		return tls.Certificate{}, false
	}
	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return tls.Certificate{}, false
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return tls.Certificate{}, false
	}

	t := now()
	if t.Before(leaf.NotBefore) || t.Add(renewBefore).After(leaf.NotAfter) {
		return tls.Certificate{}, false
	}
	if !slices.Equal(Hosts(leaf), hosts) {
		return tls.Certificate{}, false
	}
	cert.Leaf = leaf
	return cert, true
}

// Hosts returns the sorted SANs of cert.
func Hosts(cert *x509.Certificate) []string {
	var hosts []string
	hosts = append(hosts, cert.DNSNames...)
	for _, ip := range cert.IPAddresses {
		hosts = append(hosts, ip.String())
	}
	return normalizeHosts(hosts)
}

// parseIP returns the address of an IP literal host, nil otherwise.
func parseIP(host string) net.IP {
	if urlcodec.IsIPAddress(host) {
		return net.ParseIP(host)
	}
	if addr, err := netip.ParseAddr(strings.Trim(host, "[]")); err == nil {
		return net.IP(addr.AsSlice())
	}
	return nil
}

func normalizeHosts(hosts []string) []string {
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h == "" {
			continue
		}
		if ip := parseIP(h); ip != nil {
			h = ip.String()
		}
		out = append(out, h)
	}
	if len(out) == 0 {
		return normalizeHosts(DefaultHosts)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
