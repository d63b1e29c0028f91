// Package capability defines what happens over an established
// connection.  Each Capability encapsulates a single behaviour (echo
// lines back, or multiplex a terminal with the server) and operates on
// a Session rather than a raw net.Conn, which keeps capabilities
// testable and decoupled from how the connection was made.
package capability

import (
	"context"

	"lineecho/internal/linestream"
	"lineecho/internal/session"
)

// Capability handles a single connection according to a specific
// behaviour.
type Capability interface {
	// Handle runs the capability against the given session.  It
	// blocks until the connection is done or the context is cancelled.
	Handle(ctx context.Context, sess *session.Session) error
}

func lineOpts(strict bool) []linestream.Option {
	if strict {
		return []linestream.Option{linestream.WithStrictUTF8()}
	}
	return nil
}
