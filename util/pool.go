package util

import "sync"

// BufPool provides reusable byte buffers for outgoing lines, so the
// per-line "payload + newline" write does not allocate on the hot path.
var BufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 0, DefaultBufSize)
		return &buf
	},
}

// GetBuf retrieves an empty buffer from the pool.  Callers must return
// it with [PutBuf] when finished.
func GetBuf() *[]byte {
	buf := BufPool.Get().(*[]byte)
	*buf = (*buf)[:0]
	return buf
}

// PutBuf returns a buffer to the pool for reuse.  Buffers that grew
// far past the default size are dropped instead of pinned.
func PutBuf(buf *[]byte) {
	if buf == nil || cap(*buf) > maxPooledBufSize {
		return
	}
	BufPool.Put(buf)
}
