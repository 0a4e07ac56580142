package chat

import (
	"time"

	"tmichat/internal/metrics"
	"tmichat/internal/retry"
	"tmichat/internal/transport"
	"tmichat/util"
)

// ── Defaults ─────────────────────────────────────────────────────────

const (
	// DefaultServer is the plain-text TMI endpoint.
	DefaultServer = "irc.chat.twitch.tv:6667"
	// DefaultTLSServer is the TLS TMI endpoint.
	DefaultTLSServer = "irc.chat.twitch.tv:6697"

	// DefaultSendInterval is the minimum gap between two sends.  TMI
	// drops the connection of clients that flood a channel.
	DefaultSendInterval = 5 * time.Second

	DefaultHandshakeTimeout = 10 * time.Second
	DefaultPollTimeout      = time.Millisecond
	DefaultWriteTimeout     = time.Second
)

// Option configures a [Session].
type Option func(*Session)

// WithAutoConnect makes [New] connect before returning.
func WithAutoConnect(on bool) Option {
	return func(s *Session) { s.autoConnect = on }
}

// WithServer sets the chat server address (host:port).
func WithServer(addr string) Option {
	return func(s *Session) { s.server = addr }
}

// WithDialer sets how connections are made.  The default is a plain
// TCP dialer bounded by the handshake timeout.
func WithDialer(d transport.Dialer) Option {
	return func(s *Session) { s.dialer = d }
}

// WithSendInterval overrides the flood-control interval.
func WithSendInterval(d time.Duration) Option {
	return func(s *Session) { s.sendInterval = d }
}

// WithHandshakeTimeout bounds Connect's dial, PASS/NICK and first read.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(s *Session) { s.handshakeTimeout = d }
}

// WithPollTimeout sets the read deadline Poll uses to detect that the
// socket is drained.
func WithPollTimeout(d time.Duration) Option {
	return func(s *Session) { s.pollTimeout = d }
}

// WithWriteTimeout bounds a single outgoing frame.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Session) { s.writeTimeout = d }
}

// WithMaxLineLength bounds a partial line held between polls.
func WithMaxLineLength(n int) Option {
	return func(s *Session) { s.maxLineLength = n }
}

// WithBackoff sets the reconnect schedule.  MaxAttempts caps the number
// of consecutive failed reconnects.
func WithBackoff(b *retry.Backoff) Option {
	return func(s *Session) { s.backoff = b }
}

// WithCircuitBreaker configures the breaker guarding reconnects.
func WithCircuitBreaker(cfg *retry.CircuitBreakerConfig) Option {
	return func(s *Session) { s.breakerConfig = cfg }
}

// WithLogger sets the logger.  nil (the default) logs nothing.
func WithLogger(l *util.Logger) Option {
	return func(s *Session) { s.logger = l.Named("chat") }
}

// WithMetrics records session activity into c.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Session) { s.metrics = c }
}

// WithClock replaces time.Now for the rate limiter and reconnect
// schedule.  Socket deadlines always use the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}
