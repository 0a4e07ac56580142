package chat

import "time"

// RateLimiter enforces a minimum interval between sends.  It never
// queues: a caller that is refused simply drops what it wanted to send.
type RateLimiter struct {
	interval time.Duration
	last     time.Time
}

// NewRateLimiter returns a limiter whose last send is at start, so
// nothing is allowed until interval has passed since start.
func NewRateLimiter(interval time.Duration, start time.Time) *RateLimiter {
	return &RateLimiter{interval: interval, last: start}
}

// Allow reports whether more than the interval has elapsed since the
// last send.  A non-positive interval allows everything.
func (r *RateLimiter) Allow(now time.Time) bool {
	if r.interval <= 0 {
		return true
	}
	return now.Sub(r.last) > r.interval
}

// Mark records a send at now.
func (r *RateLimiter) Mark(now time.Time) { r.last = now }

// Last returns the time of the last recorded send.
func (r *RateLimiter) Last() time.Time { return r.last }

// Interval returns the configured minimum gap.
func (r *RateLimiter) Interval() time.Duration { return r.interval }
