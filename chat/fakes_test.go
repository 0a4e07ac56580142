package chat

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"sync"
	"time"
)

const welcome = ":tmi.twitch.tv 001 bot :Welcome, GLHF!\r\n"

// read is one scripted Read result.
type read struct {
	data string
	err  error
}

// fakeConn replays scripted reads.  Once the script is exhausted every
// Read reports a deadline timeout, i.e. the socket is drained.
type fakeConn struct {
	mu       sync.Mutex
	reads    []read
	written  bytes.Buffer
	writeErr error
	closed   bool
	deadline time.Time

	// onRead, if set, runs at the start of every Read.
	onRead func()
}

func newFakeConn(reads ...read) *fakeConn {
	return &fakeConn{reads: reads}
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if c.onRead != nil {
		c.onRead()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, net.ErrClosed
	}
	if len(c.reads) == 0 {
		return 0, os.ErrDeadlineExceeded
	}
	r := c.reads[0]
	n := copy(p, r.data)
	if n < len(r.data) {
		c.reads[0].data = r.data[n:]
		return n, nil
	}
	c.reads = c.reads[1:]
	return n, r.err
}

func (c *fakeConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	return c.written.Write(p)
}

func (c *fakeConn) push(reads ...read) {
	c.mu.Lock()
	c.reads = append(c.reads, reads...)
	c.mu.Unlock()
}

func (c *fakeConn) failWrites(err error) {
	c.mu.Lock()
	c.writeErr = err
	c.mu.Unlock()
}

func (c *fakeConn) output() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.written.String()
}

func (c *fakeConn) count(frame string) int {
	return strings.Count(c.output(), frame)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) SetDeadline(t time.Time) error {
	c.mu.Lock()
	c.deadline = t
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) lastDeadline() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deadline
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) LocalAddr() net.Addr              { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1)} }
func (c *fakeConn) RemoteAddr() net.Addr             { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 6667} }
func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

// fakeDialer hands out queued conns, then refuses.
type fakeDialer struct {
	conns []*fakeConn
	dials int
}

var errRefused = errors.New("connection refused")

func (d *fakeDialer) Dial(_ context.Context, _, _ string) (net.Conn, error) {
	d.dials++
	if len(d.conns) == 0 {
		return nil, errRefused
	}
	c := d.conns[0]
	d.conns = d.conns[1:]
	return c, nil
}

func (d *fakeDialer) Close() error { return nil }

// fakeClock is a manually advanced clock.
type fakeClock struct{ t time.Time }

func newClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
