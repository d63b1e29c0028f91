package core

import (
	"lineecho/config"
	"lineecho/internal/capability"
	"lineecho/internal/metrics"
	"lineecho/internal/transport"
	"lineecho/util"
)

// Build constructs the server or client Mode for cfg.  cfg is
// expected to have passed Validate.
func Build(cfg *config.Config, logger *util.Logger, server bool) Mode {
	if server {
		return buildServer(cfg, logger)
	}
	return buildConnect(cfg, logger)
}

func buildServer(cfg *config.Config, logger *util.Logger) *ServerMode {
	m := metrics.New()
	return &ServerMode{
		Listen: &ListenMode{
			Address:    cfg.Address(),
			MaxConns:   cfg.MaxConns,
			Capability: &capability.Echo{StrictUTF8: cfg.StrictUTF8},
			Logger:     logger,
			Metrics:    m,
		},
		ExitCommand: cfg.ExitCommand,
		Detach:      cfg.Detach,
		Stats:       cfg.Stats,
		Logger:      logger,
		Metrics:     m,
	}
}

func buildConnect(cfg *config.Config, logger *util.Logger) *ConnectMode {
	return &ConnectMode{
		Dialer:     buildDialer(cfg, logger),
		Capability: &capability.Interactive{StrictUTF8: cfg.StrictUTF8},
		Network:    "tcp",
		Address:    cfg.Address(),
		Logger:     logger,
	}
}

// buildDialer creates the right transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger) transport.Dialer {
	if cfg.TunnelEnabled {
		return transport.NewSSHDialer(&transport.SSHConfig{
			User:          cfg.TunnelUser,
			Host:          cfg.TunnelHost,
			Port:          cfg.TunnelPort,
			KeyPath:       cfg.SSHKeyPath,
			PromptPass:    cfg.SSHPassword,
			UseAgent:      cfg.UseSSHAgent,
			StrictHostKey: cfg.StrictHostKey,
			KnownHosts:    cfg.KnownHostsPath,
			ConnTimeout:   config.DefaultSSHConnTimeout,
		}, logger)
	}
	return &transport.TCPDialer{Timeout: cfg.DialTimeout}
}
