// Package core is the orchestration layer.  It composes transports
// and capabilities into complete operational modes and provides a
// builder that selects the right mode from a Config.
//
// Architecture layers (bottom → top):
//
//	linestream  →  capability  →  session  →  core  →  cmd (CLI)
//
// The server side is ServerMode: a ListenMode accept loop running
// detached while a ShutdownTrigger watches the terminal.  The client
// side is ConnectMode.
package core

import "context"

// Mode represents a complete operational mode of lineecho (server or
// client).  Each mode owns its full lifecycle from connection
// establishment to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
