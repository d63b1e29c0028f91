package capability

import (
	"context"
	"errors"
	"io"

	ncerr "lineecho/internal/errors"
	"lineecho/internal/linestream"
	"lineecho/internal/session"
	"lineecho/util"
)

// Echo writes every line it reads from the connection back to it,
// newline-terminated.  Line N is fully written before line N+1 is
// read.
type Echo struct {
	StrictUTF8 bool
}

// Handle services one accepted connection until the peer finishes
// sending.  A read or write failure ends the connection with that
// error; nothing is retried.  Cancelling ctx closes the connection
// under the loop, which then returns.
func (e *Echo) Handle(ctx context.Context, sess *session.Session) error {
	peer := sess.Peer()
	sess.Logger.Info("[%s online]", peer)

	stop := context.AfterFunc(ctx, func() { sess.Conn.Close() })
	defer stop()

	lines := linestream.NewReader(sess.Conn, lineOpts(e.StrictUTF8)...)
	for {
		line, err := lines.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if ctx.Err() != nil && ncerr.IsClosed(err) {
				sess.Logger.Verbose("[%s dropped on shutdown]", peer)
				return nil
			}
			return ncerr.Wrap("read", peer, err)
		}

		sess.Metrics.LineReceived(len(line))
		sess.Logger.Info("[%s]: %s", peer, line)

		n, err := util.WriteLine(sess.Conn, line)
		if err != nil {
			return ncerr.Wrap("write", peer, err)
		}
		sess.Metrics.LineSent(n)
	}

	sess.Logger.Info("[%s offline]", peer)
	return nil
}
