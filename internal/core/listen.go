package core

import (
	"context"
	"net"

	"golang.org/x/sync/semaphore"

	"lineecho/internal/capability"
	ncerr "lineecho/internal/errors"
	"lineecho/internal/metrics"
	"lineecho/internal/session"
	"lineecho/util"
)

// ListenMode accepts inbound connections and runs a capability on
// each one in its own goroutine.  Handlers are never awaited.
type ListenMode struct {
	Address    string // "host:port"
	MaxConns   int    // 0 = unbounded
	Capability capability.Capability
	Logger     *util.Logger
	Metrics    *metrics.Collector

	listen func(network, address string) (net.Listener, error) // nil = net.Listen
}

// Listen binds the configured address.
func (m *ListenMode) Listen() (net.Listener, error) {
	listen := m.listen
	if listen == nil {
		listen = net.Listen
	}
	ln, err := listen("tcp", m.Address)
	if err != nil {
		return nil, ncerr.Wrap("listen", m.Address, err)
	}
	return ln, nil
}

// Run binds and serves until ctx is done or Accept fails.
func (m *ListenMode) Run(ctx context.Context) error {
	ln, err := m.Listen()
	if err != nil {
		return err
	}
	return m.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done (nil) or Accept
// fails (a NetworkError).  ln is closed on return.  Connections still
// being served are closed by their handlers once ctx is done.
func (m *ListenMode) Serve(ctx context.Context, ln net.Listener) error {
	addr := ln.Addr().String()
	m.Logger.Info("listening: %s", addr)

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()
	defer ln.Close()

	var slots *semaphore.Weighted
	if m.MaxConns > 0 {
		slots = semaphore.NewWeighted(int64(m.MaxConns))
	}

	for {
		if slots != nil {
			if err := slots.Acquire(ctx, 1); err != nil {
				return nil
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			if slots != nil {
				slots.Release(1)
			}
			if ctx.Err() != nil {
				return nil
			}
			return ncerr.Wrap("accept", addr, err)
		}

		go func() {
			if slots != nil {
				defer slots.Release(1)
			}
			m.serveConn(ctx, conn)
		}()
	}
}

func (m *ListenMode) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	m.Metrics.ConnectionOpened()
	defer m.Metrics.ConnectionClosed()

	sess := session.New(conn, nil, nil, m.Logger).WithMetrics(m.Metrics)
	if err := m.Capability.Handle(ctx, sess); err != nil {
		sess.Logger.Warn("%v", err)
		m.Metrics.RecordError(err.Error())
	}
}
