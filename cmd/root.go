// Package cmd wires up the CLI flags and runs a chat session.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"tmichat/config"
	"tmichat/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X tmichat/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the chat client until ctx is cancelled.
func Execute(ctx context.Context, args []string) error {
	// ── environment ──────────────────────────────────────────────
	// The .env file has to be loaded before flag defaults are taken
	// from the environment, so --env-file is picked out first.
	if err := config.LoadEnvFile(envFileArg(args)); err != nil {
		return err
	}
	cfg := config.Default()
	config.LoadFromEnv(cfg)

	fs := flag.NewFlagSet("tmichat", flag.ContinueOnError)

	// ── chat ─────────────────────────────────────────────────────
	fs.StringVarP(&cfg.Username, "user", "u", cfg.Username, "Login name; its channel is joined")
	var token string
	fs.StringVar(&token, "token", "", "OAuth token (prompted for when omitted on a terminal)")
	fs.StringVarP(&cfg.Server, "server", "s", cfg.Server, "Chat server host[:port]")
	fs.BoolVar(&cfg.TLS, "tls", cfg.TLS, "Connect with TLS (default port 6697)")
	fs.DurationVarP(&cfg.PollInterval, "interval", "i", cfg.PollInterval, "How often to read from the server")
	fs.DurationVar(&cfg.SendInterval, "send-interval", cfg.SendInterval, "Minimum gap between sent messages")
	fs.DurationVar(&cfg.HandshakeTimeout, "handshake-timeout", cfg.HandshakeTimeout, "Connect and login timeout")
	fs.IntVar(&cfg.MaxReconnects, "max-reconnects", cfg.MaxReconnects, "Consecutive failed reconnects before giving up (0 = forever)")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "Reach the server via SSH jump host [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── observability ────────────────────────────────────────────
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Serve Prometheus metrics on host:port")

	// ── output ───────────────────────────────────────────────────
	var verbose int
	fs.CountVarP(&verbose, "verbose", "v", "Increase verbosity (repeatable)")

	var envFile string
	var showVersion, showHelp, dryRun bool
	fs.StringVar(&envFile, "env-file", "", "Load settings from this file (default .env if present)")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate the configuration and exit")

	fs.Usage = func() { printUsage(fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp || (len(args) == 0 && cfg.Username == "") {
		printUsage(fs)
		return nil
	}
	if showVersion {
		fmt.Printf("tmichat %s\n", version)
		return nil
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if fs.Changed("token") {
		cfg.Token = token
	}
	if verbose > 0 {
		cfg.Verbose = 1 + verbose
	}

	// ── tunnel spec ──────────────────────────────────────────────
	if err := cfg.ApplyTunnelSpec(); err != nil {
		return err
	}

	// ── token prompt ─────────────────────────────────────────────
	if cfg.Token == "" && cfg.Username != "" && !dryRun && util.IsTerminal() {
		secret, err := util.ReadSecret(fmt.Sprintf("OAuth token for %s: ", cfg.Username))
		if err != nil {
			return err
		}
		cfg.Token = strings.TrimSpace(string(secret))
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	if dryRun {
		printConfig(os.Stdout, cfg)
		return nil
	}

	logger := util.NewLogger(cfg.Verbose)
	return run(ctx, cfg, logger, os.Stdin, os.Stdout)
}

// ── helpers ──────────────────────────────────────────────────────────

// envFileArg returns the --env-file value in args, or "".
func envFileArg(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		if v, ok := strings.CutPrefix(a, "--env-file="); ok {
			return v
		}
		if a == "--env-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func printConfig(w io.Writer, cfg *config.Config) {
	addr, _ := cfg.ServerAddr()
	fmt.Fprintf(w, "user:              %s\n", cfg.Username)
	fmt.Fprintf(w, "channel:           #%s\n", cfg.Username)
	fmt.Fprintf(w, "server:            %s (tls=%v)\n", addr, cfg.TLS)
	fmt.Fprintf(w, "poll interval:     %v\n", cfg.PollInterval)
	fmt.Fprintf(w, "send interval:     %v\n", cfg.SendInterval)
	fmt.Fprintf(w, "handshake timeout: %v\n", cfg.HandshakeTimeout)
	fmt.Fprintf(w, "max reconnects:    %d\n", cfg.MaxReconnects)
	if cfg.TunnelEnabled {
		fmt.Fprintf(w, "tunnel:            %s@%s:%d\n", cfg.TunnelUser, cfg.TunnelHost, cfg.TunnelPort)
	}
	if cfg.MetricsAddr != "" {
		fmt.Fprintf(w, "metrics:           http://%s/metrics\n", cfg.MetricsAddr)
	}
}

func printUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, `tmichat – Twitch chat client v%s

Joins your own channel, prints its chat to stdout and sends each line
typed on stdin as a message (at most one every --send-interval).

Usage:
  tmichat -u <login> [options]

Options:
`, version)
	fs.PrintDefaults()
	fmt.Fprintf(os.Stderr, `
Environment:
  Every option can also be set as TMICHAT_<NAME>, e.g. TMICHAT_USER,
  TMICHAT_TOKEN, TMICHAT_POLL_INTERVAL.  A .env file in the working
  directory is read too; flags win over the environment, which wins
  over the file.

Examples:
  tmichat -u mybot                            Prompt for the token, then chat
  TMICHAT_TOKEN=oauth:... tmichat -u mybot    Token from the environment
  tmichat -u mybot --tls -v                   TLS, verbose
  tmichat -u mybot -T ops@bastion             Through an SSH jump host
  tmichat -u mybot --metrics-addr :9090       Expose Prometheus metrics
`)
}
