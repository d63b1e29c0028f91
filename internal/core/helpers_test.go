package core

import (
	"bufio"
	"bytes"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lineecho/util"
)

// syncBuffer is a bytes.Buffer safe for concurrent writers and a
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

func testLogger() (*util.Logger, *syncBuffer) {
	logs := &syncBuffer{}
	l := util.NewLogger(2)
	l.SetOutput(logs)
	return l, logs
}

// dialWhenUp retries until a server at addr accepts.
func dialWhenUp(t *testing.T, addr string) net.Conn {
	t.Helper()
	var conn net.Conn
	require.Eventually(t, func() bool {
		c, err := net.DialTimeout("tcp", addr, time.Second)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 3*time.Second, 20*time.Millisecond)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// lineClient sends one line and reads one reply.
type lineClient struct {
	conn net.Conn
	r    *bufio.Reader
}

func newLineClient(conn net.Conn) *lineClient {
	return &lineClient{conn: conn, r: bufio.NewReader(conn)}
}

func (c *lineClient) roundTrip(line string) (string, error) {
	if _, err := util.WriteLine(c.conn, line); err != nil {
		return "", err
	}
	c.conn.SetReadDeadline(time.Now().Add(3 * time.Second)) //nolint:errcheck
	return c.r.ReadString('\n')
}

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for return")
		return nil
	}
}
