// Package linestream turns a byte stream into a single-pass sequence of
// newline-delimited text lines.
//
// A Reader is pulled synchronously with Next.  Stream runs a Reader on
// its own goroutine and publishes the lines on a channel, which lets a
// caller select over several sources at once.
package linestream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned in strict mode for a line that does not
// decode as UTF-8.
var ErrInvalidUTF8 = errors.New("line is not valid UTF-8")

// Option configures a Reader.
type Option func(*Reader)

// WithStrictUTF8 makes Next fail with [ErrInvalidUTF8] instead of
// passing undecodable bytes through.
func WithStrictUTF8() Option {
	return func(r *Reader) { r.strict = true }
}

// Reader yields lines from an underlying reader.  The newline (and a
// carriage return directly before it) is stripped.  A final line that
// lacks a newline is still returned as a line; the following call
// reports io.EOF.
//
// Once Next has returned an error every later call returns io.EOF.
type Reader struct {
	br     *bufio.Reader
	strict bool
	done   bool
}

// NewReader wraps r.
func NewReader(r io.Reader, opts ...Option) *Reader {
	lr := &Reader{br: bufio.NewReader(r)}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// Next returns the next line, io.EOF at end of stream, or the
// underlying read error.
func (r *Reader) Next() (string, error) {
	if r.done {
		return "", io.EOF
	}

	raw, err := r.br.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(raw) > 0 {
			// Partial final line.  Report it now and EOF on the next call.
			r.done = true
			return r.decode(raw)
		}
		r.done = true
		return "", err
	}
	return r.decode(raw)
}

func (r *Reader) decode(raw []byte) (string, error) {
	raw = bytes.TrimSuffix(raw, []byte{'\n'})
	raw = bytes.TrimSuffix(raw, []byte{'\r'})
	if r.strict && !utf8.Valid(raw) {
		r.done = true
		return "", ErrInvalidUTF8
	}
	return string(raw), nil
}

// Item is one element delivered by [Stream]: either a line or a
// terminal error.
type Item struct {
	Line string
	Err  error
}

// Stream reads lines from r on a new goroutine and sends them on the
// returned channel.  The channel is unbuffered, so at most one line is
// read ahead of the consumer.
//
// The channel is closed after end of stream, after a single Item
// carrying a read error, or once ctx is done.  A receive on the closed
// channel never blocks, so an exhausted source stays exhausted.
func Stream(ctx context.Context, r io.Reader, opts ...Option) <-chan Item {
	lr := NewReader(r, opts...)
	ch := make(chan Item)

	go func() {
		defer close(ch)
		for {
			line, err := lr.Next()
			if errors.Is(err, io.EOF) {
				return
			}

			it := Item{Line: line, Err: err}
			select {
			case ch <- it:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	return ch
}
