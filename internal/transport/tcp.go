package transport

import (
	"context"
	"crypto/tls"
	"net"
	"time"
)

// TCPDialer establishes plain TCP connections, wrapped in TLS when TLS
// is non-nil.
type TCPDialer struct {
	Timeout   time.Duration
	KeepAlive time.Duration // 0 uses the net package default
	TLS       *tls.Config
}

// Dial connects to address over TCP (and TLS if configured).
func (d *TCPDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	nd := &net.Dialer{Timeout: d.Timeout, KeepAlive: d.KeepAlive}
	if d.TLS == nil {
		return nd.DialContext(ctx, network, address)
	}
	td := &tls.Dialer{NetDialer: nd, Config: clientConfig(d.TLS, address)}
	return td.DialContext(ctx, network, address)
}

// Close is a no-op for stateless TCP dialers.
func (d *TCPDialer) Close() error { return nil }

// TLSDialer runs a TLS client handshake over connections made by
// another Dialer, such as the SSH jump host.
type TLSDialer struct {
	Dialer Dialer
	Config *tls.Config
}

// Dial connects through the inner dialer and completes the handshake
// before returning.
func (d *TLSDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	conn, err := d.Dialer.Dial(ctx, network, address)
	if err != nil {
		return nil, err
	}
	tc := tls.Client(conn, clientConfig(d.Config, address))
	if err := tc.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tc, nil
}

// Close closes the inner dialer.
func (d *TLSDialer) Close() error { return d.Dialer.Close() }

// clientConfig clones cfg and fills ServerName from address.
func clientConfig(cfg *tls.Config, address string) *tls.Config {
	if cfg == nil {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	cfg = cfg.Clone()
	if cfg.ServerName == "" {
		if host, _, err := net.SplitHostPort(address); err == nil {
			cfg.ServerName = host
		}
	}
	return cfg
}
