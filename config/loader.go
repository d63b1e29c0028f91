package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the LINEECHO_ prefix.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  Call it BEFORE flag parsing
// so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("LINEECHO_HOST"); v != "" {
		cfg.Host = v
	}
	if v := envInt("LINEECHO_PORT"); v > 0 {
		cfg.Port = v
	}

	// Server
	if v := envInt("LINEECHO_MAX_CONNS"); v > 0 {
		cfg.MaxConns = v
	}
	if v := os.Getenv("LINEECHO_EXIT_COMMAND"); v != "" {
		cfg.ExitCommand = v
	}
	if envBool("LINEECHO_DETACH") {
		cfg.Detach = true
	}
	if envBool("LINEECHO_STRICT_UTF8") {
		cfg.StrictUTF8 = true
	}

	// Client
	if v := envInt("LINEECHO_TIMEOUT"); v > 0 {
		cfg.DialTimeout = time.Duration(v) * time.Second
	}
	if v := os.Getenv("LINEECHO_TUNNEL"); v != "" {
		cfg.TunnelSpec = v
	}
	if v := os.Getenv("LINEECHO_SSH_KEY"); v != "" {
		cfg.SSHKeyPath = v
	}
	if envBool("LINEECHO_SSH_AGENT") {
		cfg.UseSSHAgent = true
	}
	if v := os.Getenv("LINEECHO_KNOWN_HOSTS"); v != "" {
		cfg.KnownHostsPath = v
	}

	// Output
	if v := envInt("LINEECHO_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}
