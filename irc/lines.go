package irc

import (
	"bytes"

	tmerr "tmichat/internal/errors"
)

// DefaultMaxLineLength bounds a line that has not seen its CRLF yet.
// TMI lines with full tags stay well below this.
const DefaultMaxLineLength = 8 * 1024

var crlf = []byte("\r\n")

// LineBuffer splits a byte stream into CRLF-delimited lines.  Bytes
// after the last CRLF are kept until a later Feed completes them, so a
// line split across two socket reads is delivered once and intact.
type LineBuffer struct {
	buf []byte
	max int

	// skipping is set once an oversized line has been cut; the rest of
	// that line, up to its CRLF, is discarded as it arrives.
	skipping bool
	skipCR   bool // last discarded byte was '\r'
}

// NewLineBuffer returns a buffer that discards an unterminated line once
// it grows past max bytes (DefaultMaxLineLength when max <= 0).
func NewLineBuffer(max int) *LineBuffer {
	if max <= 0 {
		max = DefaultMaxLineLength
	}
	return &LineBuffer{max: max}
}

// Feed appends p to the buffer.  If the unterminated tail exceeds the
// limit it is dropped and [tmerr.ErrLineTooLong] returned; complete
// lines already buffered are kept.  Everything up to the CRLF that ends
// the dropped line is discarded by later calls, so its remainder is
// never mistaken for a line of its own.
func (b *LineBuffer) Feed(p []byte) error {
	if b.skipping {
		p = b.skip(p)
		if b.skipping {
			return nil
		}
	}
	b.buf = append(b.buf, p...)

	tail := 0
	if i := bytes.LastIndex(b.buf, crlf); i >= 0 {
		tail = i + len(crlf)
	}
	if len(b.buf)-tail > b.max {
		b.skipping = true
		b.skipCR = b.buf[len(b.buf)-1] == '\r'
		b.buf = b.buf[:tail]
		return tmerr.ErrLineTooLong
	}
	return nil
}

// skip discards p up to and including the CRLF that ends the line being
// dropped and returns what follows it.
func (b *LineBuffer) skip(p []byte) []byte {
	if len(p) == 0 {
		return nil
	}
	if b.skipCR && p[0] == '\n' {
		b.skipping, b.skipCR = false, false
		return p[1:]
	}
	if i := bytes.Index(p, crlf); i >= 0 {
		b.skipping, b.skipCR = false, false
		return p[i+len(crlf):]
	}
	b.skipCR = p[len(p)-1] == '\r'
	return nil
}

// Next pops the oldest complete line, without its CRLF.  ok is false
// when no complete line is buffered.  Empty lines are returned as "".
func (b *LineBuffer) Next() (line string, ok bool) {
	i := bytes.Index(b.buf, crlf)
	if i < 0 {
		return "", false
	}
	line = string(b.buf[:i])
	n := copy(b.buf, b.buf[i+len(crlf):])
	b.buf = b.buf[:n]
	return line, true
}

// Pending returns the number of buffered bytes not yet returned.
func (b *LineBuffer) Pending() int { return len(b.buf) }

// Reset discards everything, including a partial line.
func (b *LineBuffer) Reset() {
	b.buf = b.buf[:0]
	b.skipping, b.skipCR = false, false
}
