package transport

import (
	"context"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	tmerr "tmichat/internal/errors"
	"tmichat/util"
)

// SSHConfig holds everything needed to reach an SSH jump host.
type SSHConfig struct {
	User          string
	Host          string
	Port          int
	KeyPath       string
	PromptPass    bool
	UseAgent      bool
	StrictHostKey bool
	KnownHosts    string
	ConnTimeout   time.Duration
}

// SSHDialer reaches the chat server through an SSH jump host.  The SSH
// session is opened on the first Dial and re-opened on a later Dial
// once it has dropped, so a session reconnect also heals the tunnel.
type SSHDialer struct {
	config *SSHConfig
	logger *util.Logger

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSHDialer creates a dialer that forwards connections through an
// SSH jump host.  Nothing is dialed until the first Dial.
func NewSSHDialer(cfg *SSHConfig, logger *util.Logger) *SSHDialer {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.ConnTimeout == 0 {
		cfg.ConnTimeout = 30 * time.Second
	}
	return &SSHDialer{config: cfg, logger: logger}
}

// Dial opens a forwarded connection to address.  The returned conn
// supports deadlines even though SSH channels do not.
func (d *SSHDialer) Dial(ctx context.Context, network, address string) (net.Conn, error) {
	client, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("ssh: forwarding %s %s", network, address)
	ch, err := client.Dial(network, address)
	if err != nil {
		// The session may be dead without Wait having noticed yet.
		d.drop(client)
		return nil, tmerr.WrapSSH("channel", d.config.Host, d.config.Port, err)
	}
	return bridge(ch), nil
}

// Close shuts down the SSH session, if any.
func (d *SSHDialer) Close() error {
	d.mu.Lock()
	client := d.client
	d.client = nil
	d.mu.Unlock()

	if client != nil {
		return client.Close()
	}
	return nil
}

func (d *SSHDialer) connect(ctx context.Context) (*ssh.Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		return d.client, nil
	}

	cfg := d.config
	auth, err := authMethods(cfg)
	if err != nil {
		return nil, tmerr.WrapSSH("auth", cfg.Host, cfg.Port, err)
	}
	hkCallback, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, tmerr.WrapSSH("hostkey", cfg.Host, cfg.Port, err)
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	d.logger.Verbose("ssh: connecting to %s as %s", addr, cfg.User)

	nd := net.Dialer{Timeout: cfg.ConnTimeout}
	tcpConn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, tmerr.Wrap("dial", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(tcpConn, addr, &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hkCallback,
		Timeout:         cfg.ConnTimeout,
	})
	if err != nil {
		tcpConn.Close()
		return nil, tmerr.WrapSSH("handshake", cfg.Host, cfg.Port, err)
	}

	client := ssh.NewClient(sshConn, chans, reqs)
	d.client = client
	go d.monitor(client)

	d.logger.Verbose("ssh: jump host %s ready", addr)
	return client, nil
}

// monitor blocks until the SSH session ends and forgets it so the next
// Dial reconnects.
func (d *SSHDialer) monitor(client *ssh.Client) {
	err := client.Wait()
	d.drop(client)
	if err != nil {
		d.logger.Debug("ssh: session closed: %v", err)
	} else {
		d.logger.Debug("ssh: session closed")
	}
}

func (d *SSHDialer) drop(client *ssh.Client) {
	d.mu.Lock()
	if d.client == client {
		d.client = nil
	}
	d.mu.Unlock()
	client.Close()
}

// bridge wraps an SSH channel, which rejects SetDeadline, in a net.Conn
// that honours deadlines by relaying through an in-memory pipe.
func bridge(ch net.Conn) net.Conn {
	local, remote := net.Pipe()
	go func() {
		io.Copy(remote, ch) //nolint:errcheck
		remote.Close()
	}()
	go func() {
		io.Copy(ch, remote) //nolint:errcheck
		ch.Close()
	}()
	return &bridgedConn{Conn: local, ch: ch}
}

type bridgedConn struct {
	net.Conn
	ch net.Conn
}

func (c *bridgedConn) LocalAddr() net.Addr  { return c.ch.LocalAddr() }
func (c *bridgedConn) RemoteAddr() net.Addr { return c.ch.RemoteAddr() }

func (c *bridgedConn) Close() error {
	err := c.Conn.Close()
	c.ch.Close()
	return err
}

var (
	_ Dialer = (*TCPDialer)(nil)
	_ Dialer = (*TLSDialer)(nil)
	_ Dialer = (*SSHDialer)(nil)
)
