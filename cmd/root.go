// Package cmd wires up the CLI flags and dispatches to the core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/named-data/ndnd/std/types/optional"
	flag "github.com/spf13/pflag"

	"ndnpoke/config"
	"ndnpoke/internal/core"
	ncerr "ndnpoke/internal/errors"
	"ndnpoke/internal/security"
	"ndnpoke/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X ndnpoke/cmd.version=1.1.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Process exit codes.
const (
	ExitOK                 = 0
	ExitFailure            = 1
	ExitUsage              = 2
	ExitTimeout            = 3
	ExitRegistrationFailed = 5
)

// UsageError is a malformed command line.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

func usageErrorf(format string, args ...interface{}) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by Execute to the process exit status.
func ExitCode(err error) int {
	var ue *UsageError
	switch {
	case err == nil:
		return ExitOK
	case ncerr.As(err, &ue), ncerr.IsConfig(err):
		return ExitUsage
	case ncerr.Is(err, ncerr.ErrTimedOut):
		return ExitTimeout
	case ncerr.Is(err, ncerr.ErrRegistrationFailed):
		return ExitRegistrationFailed
	default:
		return ExitFailure
	}
}

// Reported reports whether the responder has already told the operator
// about err.
func Reported(err error) bool {
	return ncerr.Is(err, ncerr.ErrTimedOut) || ncerr.Is(err, ncerr.ErrRegistrationFailed)
}

// Execute parses args and publishes the Data packet.
func Execute(ctx context.Context, args []string) error {
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := config.New()
	config.Load(cfg)

	fs := flag.NewFlagSet("ndnpoke", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── Data packet ──────────────────────────────────────────────
	fs.BoolVarP(&cfg.ForceSend, "force", "u", cfg.ForceSend, "Send the Data without waiting for an Interest")
	fs.BoolVarP(&cfg.FinalBlock, "final", "F", cfg.FinalBlock, "Set FinalBlockId to the last component of the name")
	var freshnessMs, timeoutMs uint64
	fs.Uint64VarP(&freshnessMs, "freshness", "f", 0, "FreshnessPeriod in milliseconds")
	fs.Uint64VarP(&timeoutMs, "timeout", "w", 0, "Quit after this many milliseconds without an Interest")

	// ── signing ──────────────────────────────────────────────────
	fs.StringVarP(&cfg.SigningInfo, "signing-info", "S", cfg.SigningInfo, "Signing parameters (id:/name, key:/name/KEY/id, cert:...)")
	fs.BoolVarP(&cfg.Digest, "digest", "D", cfg.Digest, "Sign with DigestSha256 (same as -S id:"+security.DigestSha256Identity+")")
	fs.StringVarP(&cfg.KeyPath, "key", "k", cfg.KeyPath, "Private key file (OpenSSH or PEM)")
	fs.StringVar(&cfg.Identity, "identity", cfg.Identity, "Identity the key belongs to")

	// ── forwarder ────────────────────────────────────────────────
	fs.StringVar(&cfg.Forwarder, "forwarder", cfg.Forwarder, "Forwarder face URI (unix://path or tcp://host[:port])")
	fs.StringVar(&cfg.CommandPrefix, "command-prefix", cfg.CommandPrefix, "Management prefix for prefix registration")
	fs.DurationVar(&cfg.CommandTimeout, "command-timeout", cfg.CommandTimeout, "Give up on an unanswered registration after this long")
	fs.IntVar(&cfg.ConnectAttempts, "connect-attempts", cfg.ConnectAttempts, "Connection attempts before giving up")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "Reach the forwarder through SSH gateway [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")

	// ── output ───────────────────────────────────────────────────
	var verbosity int
	fs.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (repeatable)")

	var showVersion, showHelp, dryRun bool
	fs.BoolVarP(&showVersion, "version", "V", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")
	fs.BoolVar(&dryRun, "dry-run", false, "Validate the configuration and print it without connecting")

	fs.Usage = func() { printUsage(stderr, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return &UsageError{Err: err}
	}

	if showHelp {
		printUsage(stdout, fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "ndnpoke %s\n", version)
		return nil
	}

	switch rest := fs.Args(); len(rest) {
	case 0:
		printUsage(stderr, fs)
		return usageErrorf("an NDN name is required")
	case 1:
		cfg.Name = rest[0]
	default:
		return usageErrorf("expected one name, got %d arguments", len(rest))
	}

	if fs.Changed("freshness") {
		cfg.Freshness = optional.Some(config.Millis(freshnessMs))
	}
	if fs.Changed("timeout") {
		cfg.Timeout = optional.Some(config.Millis(timeoutMs))
	}
	if fs.Changed("verbose") {
		cfg.Verbose = 1 + verbosity
	}

	// ── tunnel spec ──────────────────────────────────────────────
	if cfg.TunnelSpec != "" {
		user, host, port, err := config.ParseTunnelSpec(cfg.TunnelSpec)
		if err != nil {
			return &ncerr.ConfigError{Field: "tunnel", Value: cfg.TunnelSpec, Message: err.Error()}
		}
		cfg.TunnelEnabled = true
		cfg.TunnelUser = user
		cfg.TunnelHost = host
		cfg.TunnelPort = port
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := util.NewLogger(cfg.Verbose)
	logger.SetOutput(stderr)

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	if dryRun {
		printPlan(stdout, cfg)
		return nil
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

func printPlan(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "name:       %s\n", cfg.Name)
	fmt.Fprintf(w, "forwarder:  %s\n", cfg.Forwarder)
	if cfg.TunnelEnabled {
		fmt.Fprintf(w, "tunnel:     %s@%s\n", cfg.TunnelUser, util.FormatAddr(cfg.TunnelHost, cfg.TunnelPort))
	}
	mode := "wait for Interest"
	if cfg.ForceSend {
		mode = "force"
	}
	fmt.Fprintf(w, "mode:       %s\n", mode)
	if f, ok := cfg.Freshness.Get(); ok {
		fmt.Fprintf(w, "freshness:  %s\n", f)
	}
	if t, ok := cfg.Timeout.Get(); ok {
		fmt.Fprintf(w, "timeout:    %s\n", t)
	}
	info, _ := cfg.ResolvedSigningInfo()
	signing := info.String()
	if signing == "" {
		signing = "default"
	}
	fmt.Fprintf(w, "signing:    %s\n", signing)
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `ndnpoke %s - publish a single Data packet

Reads the payload from stdin, registers the name with the forwarder and
answers the first Interest for it.

Usage:
  ndnpoke [options] /name < payload

Options:
`, version)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Examples:
  echo hello | ndnpoke /example/greeting             Answer one Interest
  ndnpoke -u -f 10000 /example/status < status.json  Send unsolicited
  ndnpoke -w 5000 -D /example/once < blob            Give up after 5s
  ndnpoke -T ndn@router /example/remote < file       Through SSH

Exit status: 0 sent, 1 error, 2 usage, 3 timeout, 5 registration failed.
`)
}
