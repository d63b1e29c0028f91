package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"lineecho/internal/capability"
	ncerr "lineecho/internal/errors"
	"lineecho/internal/metrics"
)

// startListen serves a ListenMode on a loopback port and returns its
// address and the Serve result.
func startListen(t *testing.T, ctx context.Context, m *ListenMode) (string, <-chan error) {
	t.Helper()
	m.Address = "127.0.0.1:0"
	ln, err := m.Listen()
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- m.Serve(ctx, ln) }()
	return ln.Addr().String(), done
}

func newEchoListen(strict bool) (*ListenMode, *syncBuffer) {
	logger, logs := testLogger()
	return &ListenMode{
		Capability: &capability.Echo{StrictUTF8: strict},
		Logger:     logger,
		Metrics:    metrics.New(),
	}, logs
}

func TestListenMode_ConcurrentClientsNoCrossTalk(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, _ := newEchoListen(false)
	addr, _ := startListen(t, ctx, m)

	const clients, lines = 10, 50
	var g errgroup.Group
	for i := 0; i < clients; i++ {
		i := i
		g.Go(func() error {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				return err
			}
			defer conn.Close()

			c := newLineClient(conn)
			for j := 0; j < lines; j++ {
				want := fmt.Sprintf("client %d line %d", i, j)
				got, err := c.roundTrip(want)
				if err != nil {
					return err
				}
				if got != want+"\n" {
					return fmt.Errorf("client %d: got %q, want %q", i, got, want)
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int64(clients), m.Metrics.TotalConnections())
	assert.Equal(t, int64(clients*lines), m.Metrics.LinesIn())
}

func TestListenMode_HandlerFailureIsIsolated(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, logs := newEchoListen(true)
	addr, _ := startListen(t, ctx, m)

	healthy := newLineClient(dialWhenUp(t, addr))
	got, err := healthy.roundTrip("before")
	require.NoError(t, err)
	assert.Equal(t, "before\n", got)

	// Invalid UTF-8 fails only this client's handler.
	bad := dialWhenUp(t, addr)
	_, err = bad.Write([]byte{0xff, 0xfe, '\n'})
	require.NoError(t, err)
	bad.SetReadDeadline(time.Now().Add(3 * time.Second)) //nolint:errcheck
	_, err = io.ReadAll(bad)
	require.NoError(t, err, "failed handler closes its connection")

	require.Eventually(t, func() bool { return m.Metrics.ErrorCount() == 1 },
		3*time.Second, 10*time.Millisecond)
	assert.Contains(t, logs.String(), "[WRN]")

	got, err = healthy.roundTrip("after")
	require.NoError(t, err)
	assert.Equal(t, "after\n", got)

	fresh := newLineClient(dialWhenUp(t, addr))
	got, err = fresh.roundTrip("new")
	require.NoError(t, err)
	assert.Equal(t, "new\n", got)
}

func TestListenMode_LogsLifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, logs := newEchoListen(false)
	addr, _ := startListen(t, ctx, m)

	conn := dialWhenUp(t, addr)
	c := newLineClient(conn)
	_, err := c.roundTrip("hello")
	require.NoError(t, err)
	peer := conn.LocalAddr().String()
	conn.Close()

	require.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "["+peer+" offline]")
	}, 3*time.Second, 10*time.Millisecond)

	out := logs.String()
	assert.Contains(t, out, "listening: "+addr)
	assert.Contains(t, out, "["+peer+" online]")
	assert.Contains(t, out, "["+peer+"]: hello")
}

func TestListenMode_CancelStopsLoopAndDropsConnections(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m, _ := newEchoListen(false)
	addr, done := startListen(t, ctx, m)

	conn := dialWhenUp(t, addr)
	c := newLineClient(conn)
	_, err := c.roundTrip("in flight")
	require.NoError(t, err)

	cancel()
	require.NoError(t, waitErr(t, done))

	// The in-flight connection is closed, not drained.
	conn.SetReadDeadline(time.Now().Add(3 * time.Second)) //nolint:errcheck
	_, err = c.r.ReadString('\n')
	require.Error(t, err)
	var ne net.Error
	if errors.As(err, &ne) {
		assert.False(t, ne.Timeout(), "connection should be closed, not idle")
	}

	_, err = net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err, "listener should be closed")
}

func TestListenMode_MaxConns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, _ := newEchoListen(false)
	m.MaxConns = 1
	addr, _ := startListen(t, ctx, m)

	first := dialWhenUp(t, addr)
	fc := newLineClient(first)
	_, err := fc.roundTrip("one")
	require.NoError(t, err)

	// The second client completes the TCP handshake in the backlog but
	// is not served while the first holds the only slot.
	second := dialWhenUp(t, addr)
	_, err = second.Write([]byte("two\n"))
	require.NoError(t, err)
	second.SetReadDeadline(time.Now().Add(200 * time.Millisecond)) //nolint:errcheck
	_, err = second.Read(make([]byte, 8))
	var ne net.Error
	require.ErrorAs(t, err, &ne)
	require.True(t, ne.Timeout())

	first.Close()

	second.SetReadDeadline(time.Now().Add(3 * time.Second)) //nolint:errcheck
	got, err := newLineClient(second).r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "two\n", got)
}

func TestListenMode_BindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	m, _ := newEchoListen(false)
	m.Address = ln.Addr().String()

	err = m.Run(context.Background())
	var ne *ncerr.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "listen", ne.Op)
}

// brokenListener fails every Accept.
type brokenListener struct {
	net.Listener
	err error
}

func (b *brokenListener) Accept() (net.Conn, error) { return nil, b.err }

func TestListenMode_AcceptErrorAbortsLoop(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	emfile := errors.New("too many open files")
	m, _ := newEchoListen(false)

	err = m.Serve(context.Background(), &brokenListener{Listener: ln, err: emfile})
	require.ErrorIs(t, err, emfile)

	var ne *ncerr.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "accept", ne.Op)
}
