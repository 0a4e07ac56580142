package chat

import (
	"context"
	"fmt"
	"net"
	"time"

	"tmichat/internal/metrics"
	"tmichat/internal/retry"
	"tmichat/internal/transport"
	"tmichat/irc"
	"tmichat/util"
)

// ── Connection state ─────────────────────────────────────────────────

// State is the lifecycle position of a Session.
type State int

const (
	Disconnected State = iota
	Connecting
	Authenticating
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Authenticating:
		return "authenticating"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ── Session ──────────────────────────────────────────────────────────

// Session is one authenticated presence in the user's own channel.
// It owns at most one connection at a time; a reconnect closes the old
// connection before the new one takes its place.
type Session struct {
	username string
	token    string

	// options
	server           string
	dialer           transport.Dialer
	autoConnect      bool
	sendInterval     time.Duration
	handshakeTimeout time.Duration
	pollTimeout      time.Duration
	writeTimeout     time.Duration
	maxLineLength    int
	backoff          *retry.Backoff
	breakerConfig    *retry.CircuitBreakerConfig
	logger           *util.Logger
	metrics          *metrics.Collector
	now              func() time.Time

	state     State
	conn      net.Conn
	lines     *irc.LineBuffer
	limiter   *RateLimiter
	reconnect *reconnector
}

// New creates a session for username authenticating with token
// ("oauth:..." for TMI).  With [WithAutoConnect] it also connects and
// returns the connect error, an [*errors.AuthError] included.
func New(ctx context.Context, username, token string, opts ...Option) (*Session, error) {
	if username == "" {
		return nil, fmt.Errorf("chat: username is required")
	}

	s := &Session{
		username:         username,
		token:            token,
		server:           DefaultServer,
		sendInterval:     DefaultSendInterval,
		handshakeTimeout: DefaultHandshakeTimeout,
		pollTimeout:      DefaultPollTimeout,
		writeTimeout:     DefaultWriteTimeout,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.dialer == nil {
		s.dialer = &transport.TCPDialer{Timeout: s.handshakeTimeout}
	}
	if s.backoff == nil {
		s.backoff = retry.DefaultBackoff()
	}
	bc := retry.DefaultCircuitBreakerConfig()
	if s.breakerConfig != nil {
		c := *s.breakerConfig
		bc = &c
	}
	if bc.Now == nil {
		bc.Now = s.now
	}

	s.lines = irc.NewLineBuffer(s.maxLineLength)
	// The limiter's clock starts now: a send within the first interval
	// after construction is dropped.
	s.limiter = NewRateLimiter(s.sendInterval, s.now())
	s.reconnect = &reconnector{
		backoff: s.backoff,
		breaker: retry.NewCircuitBreaker(bc),
	}

	if s.autoConnect {
		if err := s.Connect(ctx); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// State returns the current connection state.
func (s *Session) State() State { return s.state }

// Username returns the login name.
func (s *Session) Username() string { return s.username }

// Channel returns the joined channel, "#" + username.
func (s *Session) Channel() string { return irc.Channel(s.username) }

// Server returns the configured server address.
func (s *Session) Server() string { return s.server }

// Close releases the connection.  A closed session does not reconnect
// until Connect is called again.  Close is idempotent.
func (s *Session) Close() error {
	s.reconnect.cancel()
	err := s.closeConn()
	s.state = Disconnected
	return err
}

func (s *Session) closeConn() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.metrics.ConnectionClosed()
	return err
}
