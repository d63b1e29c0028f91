package util

import (
	"io"
)

// DefaultBufSize is the initial capacity of pooled line buffers (4 KiB).
const DefaultBufSize = 4 * 1024

const maxPooledBufSize = 64 * 1024

// WriteLine writes line followed by a single '\n' to w in one Write
// call and returns the number of bytes written.
func WriteLine(w io.Writer, line string) (int, error) {
	buf := GetBuf()
	defer PutBuf(buf)

	*buf = append(*buf, line...)
	*buf = append(*buf, '\n')
	return w.Write(*buf)
}
