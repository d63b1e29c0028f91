// Package session represents a single connection lifecycle, binding a
// network connection with its terminal endpoints, logger, and metrics.
//
// Capabilities never touch os.Stdin or os.Stdout directly; they use the
// session's Stdin/Stdout, which keeps the echo and interactive loops
// testable with pipes and buffers.
package session

import (
	"io"
	"net"

	"github.com/google/uuid"

	"lineecho/internal/metrics"
	"lineecho/util"
)

// Session encapsulates the runtime context for a single connection.
// A server-side session has no terminal: Stdin and Stdout are nil.
type Session struct {
	ID      string
	Conn    net.Conn
	Stdin   io.Reader
	Stdout  io.Writer
	Logger  *util.Logger
	Metrics *metrics.Collector
}

// New creates a Session bound to the given connection and I/O pair.
// The session's logger tags every line with a short session ID.
func New(conn net.Conn, stdin io.Reader, stdout io.Writer, logger *util.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		ID:     id,
		Conn:   conn,
		Stdin:  stdin,
		Stdout: stdout,
		Logger: logger.With("conn=" + id[:8]),
	}
}

// WithMetrics attaches a collector and returns the session.
func (s *Session) WithMetrics(m *metrics.Collector) *Session {
	s.Metrics = m
	return s
}

// Peer returns the remote address of the connection.
func (s *Session) Peer() string {
	if s.Conn == nil {
		return "-"
	}
	return s.Conn.RemoteAddr().String()
}
