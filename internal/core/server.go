package core

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"lineecho/internal/metrics"
	"lineecho/util"
)

// ServerMode runs the echo server: the accept loop in the background
// and the shutdown trigger in the foreground.  Returning from Run
// drops every open connection without draining it.
type ServerMode struct {
	Listen      *ListenMode
	ExitCommand string
	Detach      bool // no shutdown trigger; run until ctx is done
	Stats       bool // print a metrics snapshot on return
	Logger      *util.Logger
	Metrics     *metrics.Collector

	// Stdin defaults to os.Stdin, Stderr to os.Stderr.
	Stdin  io.Reader
	Stderr io.Writer
}

func (m *ServerMode) stdin() io.Reader {
	if m.Stdin != nil {
		return m.Stdin
	}
	return os.Stdin
}

func (m *ServerMode) stderr() io.Writer {
	if m.Stderr != nil {
		return m.Stderr
	}
	return os.Stderr
}

// Run binds (a bind failure is returned immediately), then serves
// until the exit command is typed, the terminal closes, or ctx is done.
// An accept failure ends only the accept loop: it is logged, and
// connections already being served keep running until shutdown.
func (m *ServerMode) Run(ctx context.Context) error {
	ln, err := m.Listen.Listen()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() { serveErr <- m.Listen.Serve(ctx, ln) }()

	if m.Stats {
		defer func() { fmt.Fprintln(m.stderr(), m.Metrics.JSON()) }()
	}

	if m.Detach {
		for {
			select {
			case err := <-serveErr:
				m.acceptFailed(err)
			case <-ctx.Done():
				return nil
			}
		}
	}

	if f, ok := m.stdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		m.Logger.Info("type '%s' to stop", m.ExitCommand)
	}

	trigger := &ShutdownTrigger{Input: m.stdin(), Command: m.ExitCommand, Logger: m.Logger}
	triggered := make(chan struct{})
	go func() {
		trigger.Run(ctx) //nolint:errcheck // always nil
		close(triggered)
	}()

	for {
		select {
		case err := <-serveErr:
			m.acceptFailed(err)
		case <-triggered:
			m.Logger.Verbose("shutting down")
			return nil
		}
	}
}

// acceptFailed reports the end of the accept loop.  Serve returns nil
// only after ctx is done, which Run handles on its own.
func (m *ServerMode) acceptFailed(err error) {
	if err == nil {
		return
	}
	m.Logger.Error("%v; no new connections will be accepted", err)
	m.Metrics.RecordError(err.Error())
}
