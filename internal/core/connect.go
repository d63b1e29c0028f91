package core

import (
	"context"
	"io"
	"os"

	"lineecho/internal/capability"
	ncerr "lineecho/internal/errors"
	"lineecho/internal/metrics"
	"lineecho/internal/session"
	"lineecho/internal/transport"
	"lineecho/util"
)

// ConnectMode dials the echo server and runs a capability on the
// resulting connection.  This is the interactive client.
type ConnectMode struct {
	Dialer     transport.Dialer
	Capability capability.Capability
	Network    string
	Address    string
	Logger     *util.Logger
	Metrics    *metrics.Collector

	// Stdin/Stdout default to os.Stdin/os.Stdout when nil.
	// Override in tests for deterministic I/O.
	Stdin  io.Reader
	Stdout io.Writer
}

func (m *ConnectMode) stdin() io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}

func (m *ConnectMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Run dials the remote address, creates a session, and hands it to
// the capability.  The transport is closed when Run returns.
func (m *ConnectMode) Run(ctx context.Context) error {
	defer m.Dialer.Close()

	m.Logger.Verbose("dialing %s (%s)", m.Address, m.Network)

	conn, err := m.Dialer.Dial(ctx, m.Network, m.Address)
	if err != nil {
		return ncerr.Wrap("dial", m.Address, err)
	}
	defer conn.Close()

	m.Logger.Info("connecting: %s", conn.RemoteAddr())

	sess := session.New(conn, m.stdin(), m.stdout(), m.Logger).WithMetrics(m.Metrics)
	return m.Capability.Handle(ctx, sess)
}
