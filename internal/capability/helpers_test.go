package capability

import (
	"bytes"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"lineecho/internal/metrics"
	"lineecho/internal/session"
	"lineecho/util"
)

// tcpPair returns both ends of a loopback TCP connection.
func tcpPair(t *testing.T) (client, server net.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- c
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	server = <-accepted
	require.NotNil(t, server)

	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

// faultConn reads from r and fails every write with werr.  The
// embedded pipe end supplies addresses and Close.
type faultConn struct {
	net.Conn
	r    io.Reader
	werr error
}

func newFaultConn(t *testing.T, r io.Reader, werr error) *faultConn {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return &faultConn{Conn: a, r: r, werr: werr}
}

func (f *faultConn) Read(p []byte) (int, error) { return f.r.Read(p) }

func (f *faultConn) Write(p []byte) (int, error) {
	if f.werr != nil {
		return 0, f.werr
	}
	return len(p), nil
}

// errReader fails every read.
type errReader struct{ err error }

func (e errReader) Read([]byte) (int, error) { return 0, e.err }

// syncBuffer is a bytes.Buffer safe for one writer goroutine and a
// polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// newSession builds a session with a log buffer and fresh metrics.
func newSession(conn net.Conn, stdin io.Reader, stdout io.Writer) (*session.Session, *syncBuffer) {
	logs := &syncBuffer{}
	logger := util.NewLogger(2)
	logger.SetOutput(logs)
	return session.New(conn, stdin, stdout, logger).WithMetrics(metrics.New()), logs
}
