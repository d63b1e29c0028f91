package core

import (
	"context"
	"io"

	"lineecho/internal/linestream"
	"lineecho/util"
)

// ShutdownTrigger watches a line source for a sentinel command.
type ShutdownTrigger struct {
	Input   io.Reader
	Command string
	Logger  *util.Logger
}

// Run returns nil once a line equal to Command is read.  It also
// returns nil when the input ends or fails, and when ctx is done.
// Other lines are ignored.
func (t *ShutdownTrigger) Run(ctx context.Context) error {
	lines := linestream.Stream(ctx, t.Input)
	for {
		select {
		case it, ok := <-lines:
			if !ok {
				t.Logger.Verbose("terminal input closed")
				return nil
			}
			if it.Err != nil {
				t.Logger.Verbose("terminal input: %v", it.Err)
				return nil
			}
			if it.Line == t.Command {
				return nil
			}
			t.Logger.Debug("ignoring terminal line %q", it.Line)
		case <-ctx.Done():
			return nil
		}
	}
}
