// Package config defines the runtime configuration for lineecho and
// provides helpers for parsing tunnel specifications.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ncerr "lineecho/internal/errors"
	"lineecho/util"
)

// Config holds every tuneable for a server or client run.
type Config struct {
	// ── Endpoint ─────────────────────────────────────────────────────
	Host string
	Port int

	// ── Server ───────────────────────────────────────────────────────
	MaxConns    int    // 0 = unbounded
	ExitCommand string // terminal line that stops the server
	Detach      bool   // ignore the terminal, run until signalled
	StrictUTF8  bool
	Stats       bool // print a metrics snapshot on shutdown

	// ── Client ───────────────────────────────────────────────────────
	DialTimeout time.Duration // 0 = no timeout

	// ── SSH tunnel (client only) ─────────────────────────────────────
	TunnelSpec     string // raw user@host[:port] from -T
	TunnelEnabled  bool
	TunnelUser     string
	TunnelHost     string
	TunnelPort     int
	SSHKeyPath     string
	SSHPassword    bool // true → prompt interactively
	UseSSHAgent    bool
	StrictHostKey  bool
	KnownHostsPath string

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	Quiet   bool
}

// Default returns a Config populated from defaults.go.
func Default() *Config {
	return &Config{
		Host:        DefaultHost,
		Port:        DefaultPort,
		ExitCommand: DefaultExitCommand,
	}
}

// Address returns the host:port the server binds or the client dials.
func (c *Config) Address() string {
	return util.FormatAddr(c.Host, c.Port)
}

// LogLevel folds Verbose and Quiet into a util.Logger verbosity.
func (c *Config) LogLevel() int {
	if c.Quiet {
		return 0
	}
	return DefaultVerbosity + c.Verbose
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// tunnelRe matches [user@]host[:port].
var tunnelRe = regexp.MustCompile(`^(?:([^@]+)@)?([^:@]+)(?::(\d+))?$`)

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	m := tunnelRe.FindStringSubmatch(strings.TrimSpace(spec))
	if m == nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q, expected [user@]host[:port]", spec)
	}
	user = m[1]
	host = m[2]
	port = DefaultSSHPort
	if m[3] != "" {
		port, err = strconv.Atoi(m[3])
		if err != nil || port < 1 || port > 65535 {
			return "", "", 0, fmt.Errorf("invalid tunnel port %q", m[3])
		}
	}
	return user, host, port, nil
}

// ApplyTunnelSpec parses TunnelSpec (if set) into the Tunnel* fields.
func (c *Config) ApplyTunnelSpec() error {
	if c.TunnelSpec == "" {
		return nil
	}
	user, host, port, err := ParseTunnelSpec(c.TunnelSpec)
	if err != nil {
		return &ncerr.ConfigError{Field: "tunnel", Value: c.TunnelSpec, Message: err.Error()}
	}
	c.TunnelEnabled = true
	c.TunnelUser = user
	c.TunnelHost = host
	c.TunnelPort = port
	return nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
// server selects the server-only rules.
func (c *Config) Validate(server bool) error {
	if c.Host == "" {
		return &ncerr.ConfigError{
			Field:   "host",
			Message: "an address is required",
			Hint:    "use 127.0.0.1 for a local-only echo service",
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return &ncerr.ConfigError{
			Field:   "port",
			Value:   c.Port,
			Message: "out of range 1-65535",
			Hint:    fmt.Sprintf("the default echo port is %d", DefaultPort),
		}
	}

	if server {
		if c.MaxConns < 0 {
			return &ncerr.ConfigError{
				Field:   "max-conns",
				Value:   c.MaxConns,
				Message: "must not be negative",
				Hint:    "use 0 for no limit",
			}
		}
		if !c.Detach && c.ExitCommand == "" {
			return &ncerr.ConfigError{
				Field:   "exit-command",
				Message: "must not be empty",
				Hint:    "pass --detach to run without a terminal",
			}
		}
		if c.TunnelEnabled {
			return &ncerr.ConfigError{
				Field:   "tunnel",
				Value:   c.TunnelSpec,
				Message: "only the client can dial through an SSH tunnel",
			}
		}
		return nil
	}

	if c.DialTimeout < 0 {
		return &ncerr.ConfigError{Field: "timeout", Value: c.DialTimeout, Message: "must not be negative"}
	}
	if c.TunnelEnabled && c.TunnelHost == "" {
		return &ncerr.ConfigError{Field: "tunnel", Message: "tunnel host is required"}
	}
	return nil
}
