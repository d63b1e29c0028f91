package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags and environment variable loading.

const (
	// DefaultHost is the address both the server binds and the client
	// dials.
	DefaultHost = "127.0.0.1"

	// DefaultPort is the echo service port.
	DefaultPort = 9102

	// DefaultExitCommand is the terminal line that stops the server.
	DefaultExitCommand = "exit"

	// DefaultVerbosity shows status lines (bind address, connects,
	// received lines) but not verbose diagnostics.
	DefaultVerbosity = 1

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultSSHConnTimeout bounds the SSH handshake with a bastion.
	DefaultSSHConnTimeout = 30 * time.Second
)
