package chat

import (
	"context"
	"fmt"
	"time"

	tmerr "tmichat/internal/errors"
	"tmichat/internal/retry"
)

// reconnector decides when a lost session may dial again.  It never
// sleeps: Poll asks it on every call and it attempts at most one
// Connect once the backoff delay has passed.  The first attempt after
// a fault is immediate.
type reconnector struct {
	backoff *retry.Backoff
	breaker *retry.CircuitBreaker

	pending  bool      // a fault is waiting to be repaired
	failures int       // consecutive failed attempts
	next     time.Time // earliest next attempt
	fatal    error     // sticky: exhausted or rejected login
}

// schedule arms the reconnector after a fault at now.
func (r *reconnector) schedule(now time.Time) {
	if r.pending {
		return
	}
	r.pending = true
	r.failures = 0
	r.next = now
	r.fatal = nil
}

// cancel forgets any pending reconnect, after a successful Connect or
// an explicit Close.
func (r *reconnector) cancel() {
	r.pending = false
	r.failures = 0
	r.fatal = nil
}

// step runs one reconnect attempt if one is due.  It returns nil while
// the session is merely waiting, and a terminal error once it gives up.
func (r *reconnector) step(ctx context.Context, s *Session) error {
	if r.fatal != nil {
		return r.fatal
	}
	if !r.pending {
		return tmerr.ErrNotConnected
	}

	now := s.now()
	if now.Before(r.next) {
		return nil
	}

	failed := r.failures
	attempted := false
	err := r.breaker.Execute(func() error {
		attempted = true
		return s.Connect(ctx)
	})
	if !attempted {
		s.logger.Debug("reconnect held back: %v", err)
		return nil
	}
	s.metrics.Reconnect()

	if err == nil {
		s.logger.Info("reconnected after %d failed attempt(s)", failed)
		r.breaker.Reset()
		return nil
	}

	if tmerr.Is(err, tmerr.ErrAuthFailed) {
		r.pending = false
		r.fatal = err
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	r.failures++
	if r.backoff.Exhausted(r.failures) {
		r.pending = false
		r.fatal = fmt.Errorf("%w after %d attempts: %v", tmerr.ErrReconnectExhausted, r.failures, err)
		s.logger.Error("%v", r.fatal)
		return r.fatal
	}

	delay := r.backoff.Delay(r.failures)
	r.next = now.Add(delay)
	s.logger.Warn("reconnect attempt %d failed: %v (next in %v)", r.failures, err, delay)
	return nil
}
