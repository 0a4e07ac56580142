// Package config defines the runtime configuration for tmichat and
// provides helpers for parsing server and tunnel specifications.
package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tmerr "tmichat/internal/errors"
	"tmichat/util"
)

// Config holds every tuneable for a single tmichat session.
type Config struct {
	// ── Chat ─────────────────────────────────────────────────────────
	Username         string
	Token            string
	Server           string // host[:port]; port defaults per TLS
	TLS              bool
	PollInterval     time.Duration
	SendInterval     time.Duration
	HandshakeTimeout time.Duration
	MaxReconnects    int // consecutive failed reconnects before giving up; 0 = unlimited

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec     string // raw [user@]host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Observability ────────────────────────────────────────────────
	MetricsAddr string // host:port for the Prometheus endpoint; empty = off

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Server:           DefaultHost,
		PollInterval:     DefaultPollInterval,
		SendInterval:     DefaultSendInterval,
		HandshakeTimeout: DefaultHandshakeTimeout,
		MaxReconnects:    DefaultMaxReconnectAttempts,
		Verbose:          1,
	}
}

// ── Derived values ───────────────────────────────────────────────────

// ServerAddr returns the chat server as host:port, filling in the
// plain or TLS port when Server has none.
func (c *Config) ServerAddr() (string, error) {
	port := DefaultPort
	if c.TLS {
		port = DefaultTLSPort
	}
	server := c.Server
	if server == "" {
		server = DefaultHost
	}
	host, port, err := util.SplitAddr(server, port)
	if err != nil {
		return "", err
	}
	return util.FormatAddr(host, port), nil
}

// OAuthToken returns Token with the "oauth:" prefix TMI expects.
func (c *Config) OAuthToken() string {
	if c.Token == "" || strings.HasPrefix(c.Token, TokenPrefix) {
		return c.Token
	}
	return TokenPrefix + c.Token
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(spec)
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q – expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	if host == "" {
		return "", "", 0, fmt.Errorf("tunnel host is required")
	}
	return user, host, port, nil
}

// ApplyTunnelSpec parses TunnelSpec into the Tunnel* fields.  An empty
// spec disables the tunnel.
func (c *Config) ApplyTunnelSpec() error {
	if c.TunnelSpec == "" {
		c.TunnelEnabled = false
		return nil
	}
	user, host, port, err := ParseTunnelSpec(c.TunnelSpec)
	if err != nil {
		return &tmerr.ConfigError{
			Field:   "tunnel",
			Value:   c.TunnelSpec,
			Message: err.Error(),
			Hint:    "use -T user@bastion.example.com[:port]",
		}
	}
	c.TunnelEnabled = true
	c.TunnelUser = user
	c.TunnelHost = host
	c.TunnelPort = port
	return nil
}

// ── Validation ───────────────────────────────────────────────────────

// loginRe is the character set TMI accepts in a login name; it is also
// what the chat grammar accepts as a channel.
var loginRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Username == "" {
		return &tmerr.ConfigError{
			Field:   "user",
			Message: "login name is required",
			Hint:    "pass -u <login> or set TMICHAT_USER",
		}
	}
	if !loginRe.MatchString(c.Username) {
		return &tmerr.ConfigError{
			Field:   "user",
			Value:   c.Username,
			Message: "login names contain only letters, digits and underscores",
		}
	}

	if c.Token == "" {
		return &tmerr.ConfigError{
			Field:   "token",
			Message: "an OAuth token is required",
			Hint:    "set TMICHAT_TOKEN, or run on a terminal to be prompted",
		}
	}
	if strings.ContainsAny(c.Token, " \r\n") {
		return &tmerr.ConfigError{
			Field:   "token",
			Message: "token must be a single word",
		}
	}

	if _, err := c.ServerAddr(); err != nil {
		return &tmerr.ConfigError{Field: "server", Value: c.Server, Message: err.Error()}
	}

	if c.PollInterval <= 0 {
		return &tmerr.ConfigError{
			Field:   "interval",
			Value:   c.PollInterval,
			Message: "must be positive",
			Hint:    "e.g. --interval 250ms",
		}
	}
	if c.SendInterval < 0 {
		return &tmerr.ConfigError{Field: "send-interval", Value: c.SendInterval, Message: "must not be negative"}
	}
	if c.HandshakeTimeout <= 0 {
		return &tmerr.ConfigError{Field: "handshake-timeout", Value: c.HandshakeTimeout, Message: "must be positive"}
	}
	if c.MaxReconnects < 0 {
		return &tmerr.ConfigError{
			Field:   "max-reconnects",
			Value:   c.MaxReconnects,
			Message: "must not be negative",
			Hint:    "use 0 to retry forever",
		}
	}

	if c.TunnelEnabled && c.TunnelHost == "" {
		return &tmerr.ConfigError{Field: "tunnel", Message: "tunnel host is required"}
	}
	if !c.TunnelEnabled && (c.SSHKeyPath != "" || c.SSHPassword || c.UseSSHAgent) {
		return &tmerr.ConfigError{
			Field:   "tunnel",
			Message: "SSH options given without a tunnel",
			Hint:    "add -T [user@]host[:port]",
		}
	}

	if c.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(c.MetricsAddr); err != nil {
			return &tmerr.ConfigError{
				Field:   "metrics-addr",
				Value:   c.MetricsAddr,
				Message: err.Error(),
				Hint:    "e.g. --metrics-addr 127.0.0.1:9090",
			}
		}
	}

	return nil
}
