package capability

import (
	"context"
	"fmt"

	ncerr "lineecho/internal/errors"
	"lineecho/internal/linestream"
	"lineecho/internal/session"
	"lineecho/util"
)

// ClosedByServer is printed when the server ends the session.
const ClosedByServer = "Connection was closed by server"

// Interactive multiplexes two line sources into one loop: lines from
// the server are printed, lines typed on the terminal are sent.  The
// session ends when either source runs dry.
type Interactive struct {
	StrictUTF8 bool
}

// Handle runs the client loop.  Each iteration handles exactly one
// event; when both sources are ready, select picks one at random.
func (c *Interactive) Handle(ctx context.Context, sess *session.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel() // releases whichever producer is still parked

	peer := sess.Peer()
	remote := linestream.Stream(ctx, sess.Conn, lineOpts(c.StrictUTF8)...)
	local := linestream.Stream(ctx, sess.Stdin)

	for {
		select {
		case it, ok := <-remote:
			if !ok {
				fmt.Fprintln(sess.Stdout, ClosedByServer)
				return nil
			}
			if it.Err != nil {
				return ncerr.Wrap("read", peer, it.Err)
			}
			sess.Metrics.LineReceived(len(it.Line))
			fmt.Fprintf(sess.Stdout, "server: %s\n", it.Line)

		case it, ok := <-local:
			if !ok {
				sess.Logger.Verbose("input closed, leaving")
				return nil
			}
			if it.Err != nil {
				return fmt.Errorf("reading input: %w", it.Err)
			}
			n, err := util.WriteLine(sess.Conn, it.Line)
			if err != nil {
				return ncerr.Wrap("write", peer, err)
			}
			sess.Metrics.LineSent(n)
			fmt.Fprintf(sess.Stdout, "input: %s\n", it.Line)

		case <-ctx.Done():
			return nil
		}
	}
}
