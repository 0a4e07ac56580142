package chat

import (
	"context"
	"time"

	tmerr "tmichat/internal/errors"
	"tmichat/irc"
	"tmichat/util"
)

// Poll drains everything the server has already sent and returns the
// chat messages in it.  It does not wait for new data.
//
// Keepalive requests are answered as a side effect.  Lines that are not
// chat messages are skipped.  A chat line whose text is not valid UTF-8
// is skipped too and reported as an [*errors.DecodeError], joined into
// the returned error next to the messages that did parse.
//
// A broken connection is closed and re-established according to the
// reconnect policy, possibly within this call; messages read before the
// fault are still returned and the fault itself is not.  Poll reports
// [errors.ErrReconnectExhausted] or an [*errors.AuthError] once
// reconnecting has given up, and [errors.ErrNotConnected] on a session
// that was never connected or has been closed.
func (s *Session) Poll(ctx context.Context) ([]irc.Message, error) {
	if s.state != Connected {
		if err := s.reconnect.step(ctx, s); err != nil {
			return nil, err
		}
		if s.state != Connected {
			return nil, nil
		}
	}

	msgs, errs := s.drain(nil, nil)

	bufp := util.GetBuf()
	defer util.PutBuf(bufp)
	buf := *bufp

	for s.conn != nil {
		s.conn.SetReadDeadline(time.Now().Add(s.pollTimeout)) //nolint:errcheck
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.metrics.BytesReceived(int64(n))
			if ferr := s.lines.Feed(buf[:n]); ferr != nil {
				s.logger.Warn("discarding partial line: %v", ferr)
			}
			msgs, errs = s.drain(msgs, errs)
		}
		if err == nil {
			continue
		}
		if tmerr.IsWouldBlock(err) {
			break
		}

		s.lost(err)
		if rerr := s.reconnect.step(ctx, s); rerr != nil {
			errs = append(errs, rerr)
		}
		break
	}
	return msgs, tmerr.Join(errs...)
}

// drain consumes the complete lines held in the line buffer.
func (s *Session) drain(msgs []irc.Message, errs []error) ([]irc.Message, []error) {
	for {
		line, ok := s.lines.Next()
		if !ok {
			return msgs, errs
		}
		if line == "" {
			continue
		}

		if irc.IsPing(line) {
			s.metrics.PingReceived()
			sent, err := s.send(irc.Pong())
			switch {
			case err != nil:
				s.logger.Warn("pong: %v", err)
			case sent:
				s.metrics.PongSent()
				s.logger.Debug("answered keepalive")
			default:
				s.logger.Debug("keepalive reply rate limited")
			}
			continue
		}

		msg, ok, err := irc.Parse(line)
		if err != nil {
			s.metrics.DecodeError()
			s.logger.Warn("%v", err)
			errs = append(errs, err)
			continue
		}
		if ok {
			s.metrics.MessageReceived()
			msgs = append(msgs, msg)
		} else {
			s.logger.Debug("<< %s", line)
		}
	}
}

// lost tears down a connection that failed mid-poll and schedules a
// reconnect.
func (s *Session) lost(err error) {
	nerr := tmerr.Wrap("read", s.server, err)
	s.logger.Warn("connection lost: %v", nerr)
	s.metrics.RecordError(nerr.Error())
	s.closeConn()
	s.state = Disconnected
	s.reconnect.schedule(s.now())
}
