// Package cmd wires up the CLI and dispatches to the core modes.
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"lineecho/config"
	"lineecho/internal/core"
	"lineecho/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X lineecho/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the selected subcommand.
func Execute(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// runOpts holds flag values that do not map one-to-one onto Config.
type runOpts struct {
	timeoutSec int
	dryRun     bool
}

func newRootCmd() *cobra.Command {
	// Environment first, so flags parsed later take precedence.
	cfg := config.Default()
	config.LoadFromEnv(cfg)
	opts := &runOpts{timeoutSec: int(cfg.DialTimeout / time.Second)}

	root := &cobra.Command{
		Use:   "lineecho",
		Short: "A line-oriented TCP echo server and interactive client",
		Long: `lineecho runs a TCP server that echoes every newline-terminated line
back to its sender, or an interactive client that prints server lines
and sends the lines typed on the terminal.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("lineecho {{.Version}}\n")
	root.PersistentFlags().AddFlagSet(sharedFlags(cfg, opts))

	server := &cobra.Command{
		Use:   "server",
		Short: "Echo lines back to every client until 'exit' is typed",
		Example: `  lineecho server
  lineecho server -H 0.0.0.0 -p 7000 --max-conns 100
  lineecho server --detach --stats`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return run(c, cfg, opts, true)
		},
	}
	sf := server.Flags()
	sf.IntVar(&cfg.MaxConns, "max-conns", cfg.MaxConns, "Maximum concurrent connections (0 = unlimited)")
	sf.StringVar(&cfg.ExitCommand, "exit-command", cfg.ExitCommand, "Terminal line that stops the server")
	sf.BoolVar(&cfg.Detach, "detach", cfg.Detach, "Ignore the terminal; run until interrupted")
	sf.BoolVar(&cfg.Stats, "stats", cfg.Stats, "Print connection statistics on shutdown")

	client := &cobra.Command{
		Use:   "client",
		Short: "Send terminal lines to the server and print its replies",
		Example: `  lineecho client
  lineecho client -H 10.0.0.7 -p 7000
  lineecho client -T admin@bastion -H echo-internal`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if opts.timeoutSec > 0 {
				cfg.DialTimeout = time.Duration(opts.timeoutSec) * time.Second
			}
			return run(c, cfg, opts, false)
		},
	}
	cf := client.Flags()
	cf.IntVarP(&opts.timeoutSec, "timeout", "w", opts.timeoutSec, "Connect timeout in seconds")
	cf.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "Dial through an SSH bastion at [user@]host[:port]")
	cf.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	cf.BoolVar(&cfg.SSHPassword, "ssh-password", false, "Prompt for SSH password")
	cf.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	cf.BoolVar(&cfg.StrictHostKey, "strict-hostkey", false, "Verify SSH host keys")
	cf.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	root.AddCommand(server, client)
	return root
}

// sharedFlags registers the flags common to both subcommands.
func sharedFlags(cfg *config.Config, opts *runOpts) *flag.FlagSet {
	fs := flag.NewFlagSet("shared", flag.ContinueOnError)
	fs.StringVarP(&cfg.Host, "host", "H", cfg.Host, "Address to bind (server) or dial (client)")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "TCP port")
	fs.BoolVar(&cfg.StrictUTF8, "strict-utf8", cfg.StrictUTF8, "Reject lines that are not valid UTF-8")
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Only print errors")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Validate configuration and exit")
	return fs
}

func run(c *cobra.Command, cfg *config.Config, opts *runOpts, server bool) error {
	if err := cfg.ApplyTunnelSpec(); err != nil {
		return err
	}
	if err := cfg.Validate(server); err != nil {
		return err
	}

	if opts.dryRun {
		printDryRun(c, cfg, server)
		return nil
	}

	logger := util.NewLogger(cfg.LogLevel())
	return core.Build(cfg, logger, server).Run(c.Context())
}

func printDryRun(c *cobra.Command, cfg *config.Config, server bool) {
	out := c.OutOrStdout()
	if server {
		fmt.Fprintf(out, "server: listen=%s max-conns=%d exit-command=%q detach=%t\n",
			cfg.Address(), cfg.MaxConns, cfg.ExitCommand, cfg.Detach)
		return
	}
	via := "direct"
	if cfg.TunnelEnabled {
		via = util.FormatAddr(cfg.TunnelHost, cfg.TunnelPort)
	}
	fmt.Fprintf(out, "client: dial=%s via=%s timeout=%s\n", cfg.Address(), via, cfg.DialTimeout)
}
