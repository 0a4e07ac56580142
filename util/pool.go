package util

import "sync"

// ReadChunk is the upper bound of a single socket read on the poll
// path.  Chat frames are short; 4 KiB holds dozens of them.
const ReadChunk = 4096

// BufPool provides reusable read buffers so a poll loop ticking many
// times a second does not allocate a fresh chunk on every call.
var BufPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, ReadChunk)
		return &buf
	},
}

// GetBuf retrieves a buffer from the pool.  Callers must return it
// with [PutBuf] when finished.
func GetBuf() *[]byte {
	return BufPool.Get().(*[]byte)
}

// PutBuf returns a buffer to the pool for reuse.
func PutBuf(buf *[]byte) {
	if buf == nil {
		return
	}
	BufPool.Put(buf)
}
