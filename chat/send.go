package chat

import (
	"strings"
	"time"

	tmerr "tmichat/internal/errors"
	"tmichat/irc"
)

// Send posts text to the user's channel.  It reports whether the
// message went out: a send within the flood-control interval of the
// previous one is dropped and returns false with a nil error.  Empty
// text is a no-op.  Text containing CR or LF is rejected with
// [errors.ErrInvalidText].
func (s *Session) Send(text string) (bool, error) {
	if s.state != Connected {
		return false, tmerr.ErrNotConnected
	}
	if text == "" {
		return false, nil
	}
	frame, err := irc.Privmsg(s.username, text)
	if err != nil {
		return false, err
	}

	sent, err := s.send(frame)
	if sent {
		s.metrics.MessageSent()
		s.logger.Verbose(">> %s %s", s.Channel(), text)
	}
	return sent, err
}

// send writes frame through the rate limiter.  The limiter clock is
// reset whenever a write is attempted, successful or not.
func (s *Session) send(frame string) (bool, error) {
	if s.conn == nil {
		return false, tmerr.ErrNotConnected
	}

	now := s.now()
	if !s.limiter.Allow(now) {
		s.metrics.MessageDropped()
		s.logger.Verbose("rate limited, dropped %q", strings.TrimRight(frame, "\r\n"))
		return false, nil
	}
	if frame == "" {
		return false, nil
	}
	s.limiter.Mark(now)

	if s.writeTimeout > 0 {
		s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)) //nolint:errcheck
	}
	if err := s.write(s.conn, frame); err != nil {
		nerr := tmerr.Wrap("write", s.server, err)
		s.metrics.RecordError(nerr.Error())
		return false, nerr
	}
	return true, nil
}
