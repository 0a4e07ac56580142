// Package errors provides domain-specific error types for tmichat.
//
// These types carry structured context (operation, address, the
// offending protocol line) so callers can tell a rejected login from a
// dropped socket from a malformed chat payload without string matching.
package errors

import (
	"errors"
	"fmt"
	"net"
	"os"
	"unicode/utf8"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrNotConnected       = errors.New("not connected")
	ErrCircuitOpen        = errors.New("circuit breaker is open")
	ErrTimeout            = errors.New("operation timed out")
	ErrAuthFailed         = errors.New("authentication failed")
	ErrReconnectExhausted = errors.New("reconnect attempts exhausted")
	ErrInvalidText        = errors.New("text must not contain line breaks")
	ErrLineTooLong        = errors.New("protocol line exceeds maximum length")
)

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op        string // operation: "dial", "write", "read", "handshake"
	Addr      string // network address involved
	Err       error  // underlying error
	Retryable bool   // whether the caller should retry
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError is returned when the chat server answers PASS/NICK with a
// login failure notice.  It always matches [ErrAuthFailed].
type AuthError struct {
	Server string // address that rejected the login
	Notice string // the server's notice line, verbatim
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login to %s rejected: %s", e.Server, e.Notice)
}

func (e *AuthError) Unwrap() error { return ErrAuthFailed }

// DecodeError reports a chat payload that is not valid UTF-8.  Only the
// offending line is affected; the rest of a poll is still delivered.
type DecodeError struct {
	Line   string // raw protocol line
	Offset int    // byte offset of the first invalid sequence in Line
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid UTF-8 at byte %d of %q", e.Offset, e.Line)
}

// SSHError represents an SSH-specific failure with host context.
type SSHError struct {
	Op   string // "handshake", "auth", "hostkey", "channel"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, automatically detecting retryability
// from the underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// NewDecodeError builds a DecodeError for line, locating the first
// invalid UTF-8 sequence inside payload.  base is the offset of payload
// within line.
func NewDecodeError(line, payload string, base int) *DecodeError {
	off := 0
	for off < len(payload) {
		r, size := utf8.DecodeRuneInString(payload[off:])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		off += size
	}
	return &DecodeError{Line: line, Offset: base + off}
}

// ── Classification helpers ───────────────────────────────────────────

// IsWouldBlock reports whether err only means "no data available right
// now": a read deadline expired before anything arrived.  It is the
// normal drained state of a poll, not a failure.
func IsWouldBlock(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrAuthFailed) {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// classifyRetryable inspects standard library error types.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	// net.OpError with Temporary() hint
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	// DNS errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() //nolint:staticcheck
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use tmichat/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
