// Package transport provides abstractions for outbound connection
// establishment.  Transports handle how the client reaches the echo
// server (directly, or through an SSH bastion), independent of what
// happens over the connection.
package transport

import (
	"context"
	"net"
)

// Dialer opens outbound network connections.
type Dialer interface {
	// Dial establishes a connection to the given network address.
	Dial(ctx context.Context, network, address string) (net.Conn, error)

	// Close releases any long-lived resources held by the dialer
	// (e.g. an SSH session).  Stateless dialers return nil.
	Close() error
}
