package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("input/output error") }

func runTrigger(ctx context.Context, input io.Reader, cmd string) <-chan error {
	logger, _ := testLogger()
	done := make(chan error, 1)
	go func() { done <- (&ShutdownTrigger{Input: input, Command: cmd, Logger: logger}).Run(ctx) }()
	return done
}

func TestShutdownTrigger_Sentinel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	done := runTrigger(context.Background(), pr, "exit")

	_, err := pw.Write([]byte("hello\nexit now\n EXIT\n"))
	require.NoError(t, err)

	select {
	case <-done:
		t.Fatal("only an exact match may trigger")
	case <-time.After(100 * time.Millisecond):
	}

	_, err = pw.Write([]byte("exit\n"))
	require.NoError(t, err)
	assert.NoError(t, waitErr(t, done))
}

func TestShutdownTrigger_CRLF(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	done := runTrigger(context.Background(), pr, "exit")

	_, err := pw.Write([]byte("exit\r\n"))
	require.NoError(t, err)
	assert.NoError(t, waitErr(t, done))
}

func TestShutdownTrigger_CustomCommand(t *testing.T) {
	done := runTrigger(context.Background(), strings.NewReader("exit\nquit\n"), "quit")
	assert.NoError(t, waitErr(t, done))
}

func TestShutdownTrigger_InputEnds(t *testing.T) {
	done := runTrigger(context.Background(), strings.NewReader("just chatter\n"), "exit")
	assert.NoError(t, waitErr(t, done))
}

func TestShutdownTrigger_InputFails(t *testing.T) {
	done := runTrigger(context.Background(), failingReader{}, "exit")
	assert.NoError(t, waitErr(t, done))
}

func TestShutdownTrigger_Cancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := runTrigger(ctx, pr, "exit")
	cancel()
	assert.NoError(t, waitErr(t, done))
}
