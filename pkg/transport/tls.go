package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/scobi84/chardev-go/pkg/version"
)

// DefaultPort is the default device gateway port.
const DefaultPort = 9444

// TLSConfig holds configuration for TLS-wrapped device sessions.
// TLS is optional: a nil TLSConfig on the server or client means plain TCP.
type TLSConfig struct {
	// Certificate is the TLS certificate for this endpoint.
	Certificate tls.Certificate

	// RootCAs is the pool of trusted CA certificates for verifying the
	// peer on client connections.
	RootCAs *x509.CertPool

	// ClientCAs is the pool of CA certificates for client authentication.
	// Only used by servers when RequireClientCert is set.
	ClientCAs *x509.CertPool

	// ServerName is the expected server name for client connections.
	ServerName string

	// InsecureSkipVerify disables certificate verification.
	// Only for testing.
	InsecureSkipVerify bool
}

// NewServerTLSConfig creates a TLS configuration for a device gateway (server).
func NewServerTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("TLSConfig is required")
	}
	if len(cfg.Certificate.Certificate) == 0 {
		return nil, fmt.Errorf("server certificate is required")
	}

	tlsConfig := &tls.Config{
		// TLS 1.3 only, no fallback
		MinVersion: tls.VersionTLS13,
		MaxVersion: tls.VersionTLS13,

		Certificates: []tls.Certificate{cfg.Certificate},
		ClientCAs:    cfg.ClientCAs,
		ClientAuth:   tls.NoClientCert,

		NextProtos: version.SupportedALPNProtocols(),

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},

		SessionTicketsDisabled: true,
	}

	if cfg.ClientCAs != nil {
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return tlsConfig, nil
}

// NewClientTLSConfig creates a TLS configuration for a session client.
func NewClientTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("TLSConfig is required")
	}

	tlsConfig := &tls.Config{
		// TLS 1.3 only, no fallback
		MinVersion: tls.VersionTLS13,
		MaxVersion: tls.VersionTLS13,

		RootCAs:    cfg.RootCAs,
		ServerName: cfg.ServerName,

		NextProtos: version.SupportedALPNProtocols(),

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},

		SessionTicketsDisabled: true,

		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if len(cfg.Certificate.Certificate) > 0 {
		tlsConfig.Certificates = []tls.Certificate{cfg.Certificate}
	}

	return tlsConfig, nil
}

// VerifyTLS13 checks that a TLS connection is using TLS 1.3.
func VerifyTLS13(state tls.ConnectionState) error {
	if state.Version != tls.VersionTLS13 {
		return fmt.Errorf("TLS version %x is not TLS 1.3 (0x0304)", state.Version)
	}
	return nil
}

// VerifyALPN checks that the negotiated ALPN protocol is supported and
// compatible with the current protocol major version.
func VerifyALPN(state tls.ConnectionState) error {
	major, err := version.MajorFromALPN(state.NegotiatedProtocol)
	if err != nil {
		return fmt.Errorf("ALPN verification failed: %w", err)
	}

	current, _ := version.Parse(version.Current)
	if major != current.Major {
		return fmt.Errorf("ALPN protocol %q is not compatible with version %s",
			state.NegotiatedProtocol, version.Current)
	}
	return nil
}

// VerifyConnection performs standard connection verification for TLS sessions.
func VerifyConnection(state tls.ConnectionState) error {
	if err := VerifyTLS13(state); err != nil {
		return err
	}
	if err := VerifyALPN(state); err != nil {
		return err
	}
	return nil
}
