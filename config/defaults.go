package config

import (
	"time"

	"tmichat/chat"
)

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, .env files and environment variable loading.

const (
	// DefaultHost is the TMI chat host.
	DefaultHost = "irc.chat.twitch.tv"

	// DefaultPort is the plain-text IRC port.
	DefaultPort = 6667

	// DefaultTLSPort is used when --tls is set and no port is given.
	DefaultTLSPort = 6697

	// DefaultPollInterval is how often the CLI drains the socket.
	DefaultPollInterval = 250 * time.Millisecond

	// DefaultSendInterval is the flood-control gap between sends.
	DefaultSendInterval = chat.DefaultSendInterval

	// DefaultHandshakeTimeout bounds dial, PASS/NICK and the first
	// server response.
	DefaultHandshakeTimeout = chat.DefaultHandshakeTimeout

	// DefaultMaxReconnectAttempts is how many consecutive reconnects may
	// fail before the session gives up.
	DefaultMaxReconnectAttempts = 10

	// DefaultMaxReconnectBackoff caps the exponential backoff between
	// reconnection attempts.
	DefaultMaxReconnectBackoff = 60 * time.Second

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultConnTimeout is the SSH jump-host connection timeout.
	DefaultConnTimeout = 30 * time.Second

	// DefaultEnvFile is loaded when present and --env-file is not given.
	DefaultEnvFile = ".env"

	// TokenPrefix is the scheme TMI expects in front of an OAuth token.
	TokenPrefix = "oauth:"
)
