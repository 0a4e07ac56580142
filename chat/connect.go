package chat

import (
	"bytes"
	"context"
	"io"
	"net"
	"time"

	tmerr "tmichat/internal/errors"
	"tmichat/irc"
)

// handshakeRead bounds the first server response inspected for a login
// failure.
const handshakeRead = 1024

// Connect dials the server, authenticates and joins the user's channel.
// It blocks for at most the handshake timeout.  On success any previous
// connection is closed and replaced; on failure the session is left
// Disconnected holding no connection.
//
// A rejected login returns an [*errors.AuthError]; retrying it with the
// same credentials will not help.
func (s *Session) Connect(ctx context.Context) error {
	s.state = Connecting
	s.logger.Verbose("connecting to %s as %s", s.server, s.username)

	conn, err := s.dialer.Dial(ctx, "tcp", s.server)
	if err != nil {
		s.fail()
		return tmerr.Wrap("dial", s.server, err)
	}

	rest, err := s.handshake(ctx, conn)
	if err == nil {
		s.logger.Debug("joining %s", s.Channel())
		if werr := s.write(conn, irc.Join(s.username)); werr != nil {
			err = tmerr.Wrap("write", s.server, werr)
		}
	}
	if err != nil {
		conn.Close()
		s.fail()
		return err
	}

	s.closeConn()
	s.conn = conn
	s.lines.Reset()
	if ferr := s.lines.Feed(rest); ferr != nil {
		s.logger.Warn("discarding partial line: %v", ferr)
	}
	s.state = Connected
	s.reconnect.cancel()
	s.metrics.ConnectionOpened()
	s.logger.Info("connected to %s, joined %s", s.server, s.Channel())
	return nil
}

// handshake sends PASS/NICK and checks the first response for a login
// failure.  It returns the response bytes so lines that arrived with it
// are not lost.
func (s *Session) handshake(ctx context.Context, conn net.Conn) ([]byte, error) {
	deadline := time.Now().Add(s.handshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline) //nolint:errcheck

	// Unblock the read below if ctx is cancelled first.  If the callback
	// has already started, wait for it so the reset below comes last.
	cancelled := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Unix(1, 0)) //nolint:errcheck
		close(cancelled)
	})
	defer func() {
		if !stop() {
			<-cancelled
		}
		conn.SetDeadline(time.Time{}) //nolint:errcheck
	}()

	if err := s.write(conn, irc.Pass(s.token)+irc.Nick(s.username)); err != nil {
		return nil, tmerr.Wrap("write", s.server, err)
	}
	s.state = Authenticating

	buf := make([]byte, handshakeRead)
	n, err := conn.Read(buf)
	if n == 0 {
		if err == nil {
			err = io.ErrNoProgress
		}
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return nil, tmerr.Wrap("handshake", s.server, err)
	}
	s.metrics.BytesReceived(int64(n))
	resp := buf[:n]

	for _, line := range bytes.Split(resp, []byte("\r\n")) {
		if irc.IsLoginFailure(string(line)) {
			s.metrics.AuthFailure()
			s.logger.Error("login rejected by %s: %s", s.server, line)
			return nil, &tmerr.AuthError{Server: s.server, Notice: string(line)}
		}
	}
	return resp, nil
}

// fail drops any connection after a failed Connect.
func (s *Session) fail() {
	s.closeConn()
	s.state = Disconnected
}

// write puts one or more complete frames on conn.
func (s *Session) write(conn net.Conn, frames string) error {
	n, err := io.WriteString(conn, frames)
	s.metrics.BytesSent(int64(n))
	return err
}
