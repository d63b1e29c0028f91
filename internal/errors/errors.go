// Package errors provides domain-specific error types for lineecho.
//
// Every failure in the echo core is terminal to its own scope (one
// connection, the accept loop, or a client session), so these types
// carry context for diagnostics only; there is no retry classification.
package errors

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

// ErrAuthFailed reports that no SSH authentication method could be
// assembled or accepted.
var ErrAuthFailed = errors.New("authentication failed")

// ── Structured error types ───────────────────────────────────────────

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op   string // "listen", "accept", "dial", "read", "write"
	Addr string // local address for listen/accept, peer otherwise
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// SSHError represents a failure while reaching the server through an
// SSH bastion.
type SSHError struct {
	Op   string // "auth", "hostkey", "handshake", "channel"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string // flag name without dashes
	Value   any    // the invalid value (nil if missing)
	Message string
	Hint    string // optional
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError.  A nil err yields nil so call sites can
// wrap unconditionally.
func Wrap(op, addr string, err error) error {
	if err == nil {
		return nil
	}
	return &NetworkError{Op: op, Addr: addr, Err: err}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// ── Classification ───────────────────────────────────────────────────

// IsClosed reports whether err is the expected result of a peer
// hanging up or of closing a connection we own.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return errors.Is(opErr.Err, net.ErrClosed)
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target any) bool { return errors.As(err, target) }
