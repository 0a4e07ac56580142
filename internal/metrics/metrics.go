// Package metrics provides lightweight, lock-free counters and gauges
// for tracking runtime statistics of a chat session.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks runtime metrics for a chat session.
// A nil Collector is safe to use: all methods become no-ops.
type Collector struct {
	connectionsActive atomic.Int64
	connectionsTotal  atomic.Int64
	bytesIn           atomic.Int64
	bytesOut          atomic.Int64
	messagesIn        atomic.Int64
	messagesOut       atomic.Int64
	messagesDropped   atomic.Int64
	pings             atomic.Int64
	pongs             atomic.Int64
	decodeErrors      atomic.Int64
	reconnects        atomic.Int64
	authFailures      atomic.Int64
	errorsTotal       atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastMessage  time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connection metrics ───────────────────────────────────────────────

// ConnectionOpened increments both the active and total counters.
func (c *Collector) ConnectionOpened() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(1)
	c.connectionsTotal.Add(1)
}

// ConnectionClosed decrements the active connection counter.
func (c *Collector) ConnectionClosed() {
	if c == nil {
		return
	}
	c.connectionsActive.Add(-1)
}

// ActiveConnections returns the current number of open connections.
func (c *Collector) ActiveConnections() int64 {
	if c == nil {
		return 0
	}
	return c.connectionsActive.Load()
}

// Reconnect records a reconnect attempt after a transport fault.
func (c *Collector) Reconnect() {
	if c == nil {
		return
	}
	c.reconnects.Add(1)
}

// Reconnects returns the number of reconnect attempts.
func (c *Collector) Reconnects() int64 {
	if c == nil {
		return 0
	}
	return c.reconnects.Load()
}

// AuthFailure records a rejected login.
func (c *Collector) AuthFailure() {
	if c == nil {
		return
	}
	c.authFailures.Add(1)
}

// ── I/O metrics ──────────────────────────────────────────────────────

// BytesReceived records n bytes read from the network.
func (c *Collector) BytesReceived(n int64) {
	if c == nil {
		return
	}
	c.bytesIn.Add(n)
}

// BytesSent records n bytes written to the network.
func (c *Collector) BytesSent(n int64) {
	if c == nil {
		return
	}
	c.bytesOut.Add(n)
}

// ── Chat metrics ─────────────────────────────────────────────────────

// MessageReceived records one parsed chat message.
func (c *Collector) MessageReceived() {
	if c == nil {
		return
	}
	c.messagesIn.Add(1)
	c.mu.Lock()
	c.lastMessage = time.Now()
	c.mu.Unlock()
}

// MessageSent records one chat message written to the server.
func (c *Collector) MessageSent() {
	if c == nil {
		return
	}
	c.messagesOut.Add(1)
}

// MessageDropped records an outbound frame discarded by the rate limiter.
func (c *Collector) MessageDropped() {
	if c == nil {
		return
	}
	c.messagesDropped.Add(1)
}

// PingReceived records a server keepalive request.
func (c *Collector) PingReceived() {
	if c == nil {
		return
	}
	c.pings.Add(1)
}

// PongSent records a keepalive reply that reached the socket.
func (c *Collector) PongSent() {
	if c == nil {
		return
	}
	c.pongs.Add(1)
}

// DecodeError records a chat line rejected for invalid UTF-8.
func (c *Collector) DecodeError() {
	if c == nil {
		return
	}
	c.decodeErrors.Add(1)
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime            string `json:"uptime"`
	ConnectionsActive int64  `json:"connections_active"`
	ConnectionsTotal  int64  `json:"connections_total"`
	BytesIn           int64  `json:"bytes_in"`
	BytesOut          int64  `json:"bytes_out"`
	MessagesIn        int64  `json:"messages_in"`
	MessagesOut       int64  `json:"messages_out"`
	MessagesDropped   int64  `json:"messages_dropped"`
	Pings             int64  `json:"pings"`
	Pongs             int64  `json:"pongs"`
	DecodeErrors      int64  `json:"decode_errors"`
	Reconnects        int64  `json:"reconnects"`
	AuthFailures      int64  `json:"auth_failures"`
	ErrorsTotal       int64  `json:"errors_total"`
	LastMessage       string `json:"last_message,omitempty"`
	LastError         string `json:"last_error,omitempty"`
	LastErrorMessage  string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:            time.Since(c.startTime).Truncate(time.Second).String(),
		ConnectionsActive: c.connectionsActive.Load(),
		ConnectionsTotal:  c.connectionsTotal.Load(),
		BytesIn:           c.bytesIn.Load(),
		BytesOut:          c.bytesOut.Load(),
		MessagesIn:        c.messagesIn.Load(),
		MessagesOut:       c.messagesOut.Load(),
		MessagesDropped:   c.messagesDropped.Load(),
		Pings:             c.pings.Load(),
		Pongs:             c.pongs.Load(),
		DecodeErrors:      c.decodeErrors.Load(),
		Reconnects:        c.reconnects.Load(),
		AuthFailures:      c.authFailures.Load(),
		ErrorsTotal:       c.errorsTotal.Load(),
	}
	if !c.lastMessage.IsZero() {
		s.LastMessage = c.lastMessage.Format(time.RFC3339)
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
